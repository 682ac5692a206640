package timezone

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

var airportZones = map[string]string{
	// Oceania
	"SYD": "Australia/Sydney",
	"MEL": "Australia/Melbourne",
	"AVV": "Australia/Melbourne",
	"BNE": "Australia/Brisbane",
	"OOL": "Australia/Brisbane",
	"PER": "Australia/Perth",
	"ADL": "Australia/Adelaide",
	"AKL": "Pacific/Auckland",

	// South-east Asia
	"KUL": "Asia/Kuala_Lumpur",
	"SIN": "Asia/Singapore",
	"BKK": "Asia/Bangkok",
	"DMK": "Asia/Bangkok",
	"HKT": "Asia/Bangkok",
	"SGN": "Asia/Ho_Chi_Minh",
	"MNL": "Asia/Manila",
	"CGK": "Asia/Jakarta",
	"SUB": "Asia/Jakarta",
	"KNO": "Asia/Jakarta",
	"DPS": "Asia/Makassar",
	"UPG": "Asia/Makassar",
	"DJJ": "Asia/Jayapura",

	// East Asia
	"HKG": "Asia/Hong_Kong",
	"PVG": "Asia/Shanghai",
	"CAN": "Asia/Shanghai",
	"TPE": "Asia/Taipei",
	"ICN": "Asia/Seoul",
	"NRT": "Asia/Tokyo",
	"HND": "Asia/Tokyo",
	"KIX": "Asia/Tokyo",

	// South Asia
	"DEL": "Asia/Kolkata",
	"BOM": "Asia/Kolkata",
	"CMB": "Asia/Colombo",

	// Middle East
	"DXB": "Asia/Dubai",
	"DWC": "Asia/Dubai",
	"AUH": "Asia/Dubai",
	"SHJ": "Asia/Dubai",
	"DOH": "Asia/Qatar",
	"IST": "Europe/Istanbul",
	"SAW": "Europe/Istanbul",
	"JED": "Asia/Riyadh",
	"MCT": "Asia/Muscat",

	// Europe
	"LHR": "Europe/London",
	"LGW": "Europe/London",
	"STN": "Europe/London",
	"LTN": "Europe/London",
	"DUB": "Europe/Dublin",
	"KEF": "Atlantic/Reykjavik",
	"CDG": "Europe/Paris",
	"BVA": "Europe/Paris",
	"AMS": "Europe/Amsterdam",
	"FRA": "Europe/Berlin",
	"HHN": "Europe/Berlin",
	"MUC": "Europe/Berlin",
	"CRL": "Europe/Brussels",
	"MAD": "Europe/Madrid",
	"BCN": "Europe/Madrid",
	"FCO": "Europe/Rome",
	"BGY": "Europe/Rome",
	"LIS": "Europe/Lisbon",
	"ATH": "Europe/Athens",
	"BUD": "Europe/Budapest",
	"WAW": "Europe/Warsaw",
	"WMI": "Europe/Warsaw",
	"KUT": "Asia/Tbilisi",

	// Americas
	"JFK": "America/New_York",
	"SWF": "America/New_York",
	"MIA": "America/New_York",
	"FLL": "America/New_York",
	"ORD": "America/Chicago",
	"LAX": "America/Los_Angeles",
	"SFO": "America/Los_Angeles",
	"YYZ": "America/Toronto",
	"YVR": "America/Vancouver",
	"HNL": "Pacific/Honolulu",
	"GRU": "America/Sao_Paulo",
	"BOG": "America/Bogota",

	// Africa
	"CAI": "Africa/Cairo",
	"ADD": "Africa/Addis_Ababa",
	"JNB": "Africa/Johannesburg",
}

var (
	locMu     sync.RWMutex
	locations = make(map[string]*time.Location)
)

// ZoneName returns the IANA zone for an airport, or "UTC" when unknown.
func ZoneName(code string) string {
	if zone, ok := airportZones[strings.ToUpper(code)]; ok {
		return zone
	}
	return "UTC"
}

func Known(code string) bool {
	_, ok := airportZones[strings.ToUpper(code)]
	return ok
}

func GetLocationByAirport(code string) *time.Location {
	name := ZoneName(code)

	locMu.RLock()
	loc, ok := locations[name]
	locMu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}

	locMu.Lock()
	locations[name] = loc
	locMu.Unlock()
	return loc
}

// ParseTimeWithOffset parses an upstream timestamp. Strings carrying an offset
// keep it; naive local strings are read in the given airport's zone.
func ParseTimeWithOffset(timeStr string, airportCode string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)

	offsetFormats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700", // Without colon
		"2006-01-02T15:04-07:00",
	}
	for _, format := range offsetFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	loc := GetLocationByAirport(airportCode)
	localFormats := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, format := range localFormats {
		if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

func ConvertToTimezone(t time.Time, airportCode string) time.Time {
	return t.In(GetLocationByAirport(airportCode))
}
