package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// minutesOfDay parses an "HH:MM" (or bare "HH") time-of-day into minutes
// since midnight. The end-of-day sentinel "24:00" maps to exactly 1440.0
// so interval comparisons never miss it by a floating-point epsilon.
func minutesOfDay(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	hhmm := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(strings.TrimSpace(hhmm[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	m := 0
	if len(hhmm) == 2 {
		m, err = strconv.Atoi(strings.TrimSpace(hhmm[1]))
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return float64(h*60 + m), nil
}

// clockMinutes is the timestamp's position within its day, sub-minute
// precision included.
func clockMinutes(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// parseMonth accepts a month number ("7") or a full month name, case
// insensitive ("July", "JULY").
func parseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return n, nil
	}
	if m, ok := monthNames[strings.ToLower(s)]; ok {
		return int(m), nil
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

// parseMonthDay accepts "M/D" or "<MonthName> D".
func parseMonthDay(s string) (month, day int, err error) {
	s = strings.TrimSpace(s)
	var ms, ds string
	if i := strings.IndexByte(s, '/'); i >= 0 {
		ms, ds = s[:i], s[i+1:]
	} else {
		parts := strings.Fields(s)
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("invalid date %q", s)
		}
		ms, ds = parts[0], parts[1]
	}
	month, err = parseMonth(ms)
	if err != nil {
		return 0, 0, err
	}
	day, err = strconv.Atoi(strings.TrimSpace(ds))
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid day in %q", s)
	}
	return month, day, nil
}

// monthDayKey orders calendar dates within a year: February 3 -> 203.
func monthDayKey(month, day int) int { return month*100 + day }

// inDateRange reports whether the date falls inside [start, end],
// inclusive on both sides, correctly treating ranges that wrap the year
// boundary (November 1 .. February 28).
func inDateRange(date, start, end int) bool {
	if start <= end {
		return start <= date && date <= end
	}
	return date >= start || date <= end
}
