package schedule

import (
	"strings"
	"time"

	"github.com/buildsim/epdoc"
)

// Override selects an explicit day-type for evaluation, standing in for
// the calendar: a design-day sizing run, a declared holiday, or a custom
// day. With an override in force the calendar weekday does not apply.
type Override int

const (
	NoOverride Override = iota
	OverrideSummerDesignDay
	OverrideWinterDesignDay
	OverrideHoliday
	OverrideCustomDay1
	OverrideCustomDay2
)

// dayTag is a normalized day-type token as written in "For:" lists.
type dayTag string

const (
	tagSunday          dayTag = "sunday"
	tagMonday          dayTag = "monday"
	tagTuesday         dayTag = "tuesday"
	tagWednesday       dayTag = "wednesday"
	tagThursday        dayTag = "thursday"
	tagFriday          dayTag = "friday"
	tagSaturday        dayTag = "saturday"
	tagWeekdays        dayTag = "weekdays"
	tagWeekends        dayTag = "weekends"
	tagHoliday         dayTag = "holiday"
	tagSummerDesignDay dayTag = "summerdesignday"
	tagWinterDesignDay dayTag = "winterdesignday"
	tagCustomDay1      dayTag = "customday1"
	tagCustomDay2      dayTag = "customday2"
	tagAllDays         dayTag = "alldays"
	tagAllOtherDays    dayTag = "allotherdays"
)

// weekdayTags is Sunday-first on purpose: EnergyPlus week schedules
// order their day fields Sunday through Saturday, matching Go's
// time.Weekday numbering, but the remap stays explicit here.
var weekdayTags = [7]dayTag{
	tagSunday, tagMonday, tagTuesday, tagWednesday,
	tagThursday, tagFriday, tagSaturday,
}

// tagPriority is the global day-type selection order: design days beat
// custom days beat holidays beat individual weekdays beat the
// weekday/weekend groups, with the catch-alls last.
var tagPriority = []dayTag{
	tagSummerDesignDay, tagWinterDesignDay,
	tagCustomDay1, tagCustomDay2,
	tagHoliday,
	tagSunday, tagMonday, tagTuesday, tagWednesday, tagThursday, tagFriday, tagSaturday,
	tagWeekdays, tagWeekends,
	tagAllDays, tagAllOtherDays,
}

var overrideTags = map[Override]dayTag{
	OverrideSummerDesignDay: tagSummerDesignDay,
	OverrideWinterDesignDay: tagWinterDesignDay,
	OverrideHoliday:         tagHoliday,
	OverrideCustomDay1:      tagCustomDay1,
	OverrideCustomDay2:      tagCustomDay2,
}

type tagSet map[dayTag]bool

// applicableTags computes the day-type tags that apply to a date. An
// explicit override replaces the calendar entirely: its tag plus AllDays
// is the whole set. Otherwise custom-day and holiday membership come
// from the calendar and the weekday, its group, and the catch-alls are
// unioned in.
func applicableTags(date time.Time, ov Override, cal *Calendar) tagSet {
	if tag, ok := overrideTags[ov]; ok {
		return tagSet{tag: true, tagAllDays: true}
	}
	tags := tagSet{}
	if cal != nil {
		if cal.IsCustomDay2(date) {
			tags[tagCustomDay2] = true
		}
		if cal.IsCustomDay1(date) {
			tags[tagCustomDay1] = true
		}
		if cal.IsHoliday(date) {
			tags[tagHoliday] = true
		}
	}
	wd := date.Weekday() // Sunday == 0
	tags[weekdayTags[int(wd)]] = true
	if wd == time.Saturday || wd == time.Sunday {
		tags[tagWeekends] = true
	} else {
		tags[tagWeekdays] = true
	}
	tags[tagAllDays] = true
	tags[tagAllOtherDays] = true
	return tags
}

// parseDayTag normalizes a "For:" token. Unknown tokens come back ok ==
// false so callers can decide between skipping and failing.
func parseDayTag(tok string) (dayTag, bool) {
	t := dayTag(strings.ToLower(strings.TrimSpace(tok)))
	switch t {
	case tagSunday, tagMonday, tagTuesday, tagWednesday, tagThursday, tagFriday,
		tagSaturday, tagWeekdays, tagWeekends, tagHoliday, tagSummerDesignDay,
		tagWinterDesignDay, tagCustomDay1, tagCustomDay2, tagAllDays, tagAllOtherDays:
		return t, true
	case "holidays":
		return tagHoliday, true
	case "weekday":
		return tagWeekdays, true
	case "weekend":
		return tagWeekends, true
	}
	return "", false
}

// Calendar carries the special-day date sets a document declares,
// resolved to month/day keys.
type Calendar struct {
	holidays map[int]bool
	custom1  map[int]bool
	custom2  map[int]bool
}

func (c *Calendar) IsHoliday(t time.Time) bool {
	return c != nil && c.holidays[monthDayKey(int(t.Month()), t.Day())]
}

func (c *Calendar) IsCustomDay1(t time.Time) bool {
	return c != nil && c.custom1[monthDayKey(int(t.Month()), t.Day())]
}

func (c *Calendar) IsCustomDay2(t time.Time) bool {
	return c != nil && c.custom2[monthDayKey(int(t.Month()), t.Day())]
}

// AddHoliday marks a date, mostly useful for tests and callers without a
// document.
func (c *Calendar) AddHoliday(month, day int) {
	if c.holidays == nil {
		c.holidays = map[int]bool{}
	}
	c.holidays[monthDayKey(month, day)] = true
}

// CalendarFromDocument derives the holiday and custom-day sets from the
// document's RunPeriodControl:SpecialDays declarations. Entries whose
// start date does not parse are skipped; design-day special-day types
// are ignored because design days only apply through an explicit
// Override.
func CalendarFromDocument(doc *epdoc.Document) *Calendar {
	cal := &Calendar{
		holidays: map[int]bool{},
		custom1:  map[int]bool{},
		custom2:  map[int]bool{},
	}
	if doc == nil {
		return cal
	}
	for _, obj := range doc.Collection("RunPeriodControl:SpecialDays").Objects() {
		month, day, err := parseMonthDay(obj.GetString("start_date"))
		if err != nil {
			continue
		}
		duration := 1
		if n, ok := obj.GetNumber("duration"); ok && n >= 1 {
			duration = int(n)
		}
		var dst map[int]bool
		switch strings.ToLower(obj.GetString("special_day_type")) {
		case "", "holiday":
			dst = cal.holidays
		case "customday1":
			dst = cal.custom1
		case "customday2":
			dst = cal.custom2
		default:
			continue
		}
		// expand over a leap-year reference so Feb 29 stays reachable
		start := time.Date(2000, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		for i := 0; i < duration; i++ {
			d := start.AddDate(0, 0, i)
			dst[monthDayKey(int(d.Month()), d.Day())] = true
		}
	}
	return cal
}
