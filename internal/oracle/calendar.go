package oracle

import "time"

// Calendar holds the seasonal month sets used by the seasonality signal.
type Calendar struct {
	Peak []time.Month
	Low  []time.Month
}

// DefaultCalendar is the northern-summer and year-end holiday calendar.
func DefaultCalendar() Calendar {
	return Calendar{
		Peak: []time.Month{time.June, time.July, time.August, time.December, time.January},
		Low:  []time.Month{time.February, time.March, time.October, time.November},
	}
}

func LegacyCalendar() Calendar {
	return Calendar{
		Peak: []time.Month{time.June, time.July, time.August, time.December},
		Low:  []time.Month{time.February, time.March, time.November},
	}
}

func (c Calendar) IsPeak(m time.Month) bool {
	return hasMonth(c.Peak, m)
}

func (c Calendar) IsLow(m time.Month) bool {
	return hasMonth(c.Low, m)
}

func hasMonth(months []time.Month, m time.Month) bool {
	for _, x := range months {
		if x == m {
			return true
		}
	}
	return false
}

func isWeekend(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday || d == time.Sunday
}

func isMidweek(d time.Weekday) bool {
	return d == time.Tuesday || d == time.Wednesday
}
