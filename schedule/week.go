package schedule

import (
	"strings"
	"time"

	"github.com/buildsim/epdoc"
)

// dayScheduleTypes are the collections searched when a week schedule
// names a day schedule.
var dayScheduleTypes = []string{
	"Schedule:Day:Hourly",
	"Schedule:Day:Interval",
	"Schedule:Day:List",
}

// resolveDaySchedule finds a day schedule by name, case-insensitively,
// across all day-schedule collections of the document.
func resolveDaySchedule(st *state, owner, name string) (dayEvaluator, error) {
	if st.doc == nil {
		return nil, ErrNoDocument
	}
	for _, typ := range dayScheduleTypes {
		if obj, ok := st.doc.Collection(typ).Get(name); ok {
			s, err := Compile(obj)
			if err != nil {
				return nil, err
			}
			return s.(dayEvaluator), nil
		}
	}
	return nil, malformed(owner, "day schedule "+name+" not found", nil)
}

// ---- Schedule:Week:Daily ----

// weekDayFields maps each day-type tag to its Week:Daily field, Sunday
// first to match the object's declared field order.
var weekDayFields = map[dayTag]string{
	tagSunday:          "sunday_schedule_day_name",
	tagMonday:          "monday_schedule_day_name",
	tagTuesday:         "tuesday_schedule_day_name",
	tagWednesday:       "wednesday_schedule_day_name",
	tagThursday:        "thursday_schedule_day_name",
	tagFriday:          "friday_schedule_day_name",
	tagSaturday:        "saturday_schedule_day_name",
	tagHoliday:         "holiday_schedule_day_name",
	tagSummerDesignDay: "summerdesignday_schedule_day_name",
	tagWinterDesignDay: "winterdesignday_schedule_day_name",
	tagCustomDay1:      "customday1_schedule_day_name",
	tagCustomDay2:      "customday2_schedule_day_name",
}

type weekDailySchedule struct {
	name  string
	names map[dayTag]string
}

func compileWeekDaily(obj *epdoc.Object) (Schedule, error) {
	s := &weekDailySchedule{name: obj.Name(), names: map[dayTag]string{}}
	for tag, field := range weekDayFields {
		if v := obj.GetString(field); v != "" {
			s.names[tag] = v
		}
	}
	return s, nil
}

func (s *weekDailySchedule) valueAt(st *state, at time.Time) (float64, error) {
	tags := applicableTags(at, st.override, st.cal)
	// special-day fields beat the calendar weekday, in global priority
	// order; the weekday tag itself is part of the scan.
	for _, ptag := range tagPriority {
		if !tags[ptag] {
			continue
		}
		name, ok := s.names[ptag]
		if !ok {
			continue
		}
		day, err := resolveDaySchedule(st, s.name, name)
		if err != nil {
			return 0, err
		}
		return day.dayValue(st, clockMinutes(at))
	}
	return 0, nil
}

// ---- Schedule:Week:Compact ----

type weekCompactSchedule struct {
	name  string
	names map[dayTag]string
}

func compileWeekCompact(obj *epdoc.Object) (Schedule, error) {
	s := &weekCompactSchedule{name: obj.Name(), names: map[dayTag]string{}}
	for rep := 1; rep <= 12; rep++ {
		list := obj.GetString(repField("daytype_list", rep))
		day := obj.GetString(repField("schedule_day_name", rep))
		if list == "" || day == "" {
			break
		}
		list = strings.TrimSpace(list)
		if low := strings.ToLower(list); strings.HasPrefix(low, "for:") {
			list = list[len("for:"):]
		}
		for _, word := range strings.Fields(list) {
			tag, ok := parseDayTag(word)
			if !ok {
				return nil, malformed(s.name, "unknown day type "+word, nil)
			}
			// first occurrence of a tag wins; later pairs never displace it
			if _, taken := s.names[tag]; !taken {
				s.names[tag] = day
			}
		}
	}
	return s, nil
}

func (s *weekCompactSchedule) valueAt(st *state, at time.Time) (float64, error) {
	tags := applicableTags(at, st.override, st.cal)
	for _, ptag := range tagPriority {
		if !tags[ptag] {
			continue
		}
		name, ok := s.names[ptag]
		if !ok {
			continue
		}
		day, err := resolveDaySchedule(st, s.name, name)
		if err != nil {
			return 0, err
		}
		return day.dayValue(st, clockMinutes(at))
	}
	return 0, nil
}
