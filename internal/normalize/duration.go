package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDurationRe  = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	textDurationRe = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
)

// ParseISODuration converts "PT#H#M" style durations to whole minutes.
// Hours and minutes are both optional. "1h 45m" is accepted as well.
// Anything else yields 0.
func ParseISODuration(s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if m := isoDurationRe.FindStringSubmatch(s); m != nil && s != "P" && s != "PT" {
		days := atoi(m[1])
		hours := atoi(m[2])
		mins := atoi(m[3])
		return days*24*60 + hours*60 + mins
	}

	if m := textDurationRe.FindStringSubmatch(strings.ToLower(s)); m != nil && (m[1] != "" || m[2] != "") {
		return atoi(m[1])*60 + atoi(m[2])
	}

	return 0
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
