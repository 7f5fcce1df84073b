package schedule

import (
	"time"

	"github.com/buildsim/epdoc"
)

var weekScheduleTypes = []string{
	"Schedule:Week:Daily",
	"Schedule:Week:Compact",
}

type yearGroup struct {
	weekName string
	startKey int
	endKey   int
}

type yearSchedule struct {
	name   string
	groups []yearGroup
}

// compileYear reads (week-name, start-month, start-day, end-month,
// end-day) groups, stopping at the first group with no week name. Month
// fields accept numbers or full month names.
func compileYear(obj *epdoc.Object) (Schedule, error) {
	s := &yearSchedule{name: obj.Name()}
	for rep := 1; ; rep++ {
		week := obj.GetString(repField("schedule_week_name", rep))
		if week == "" {
			break
		}
		sm, err := parseMonth(obj.GetString(repField("start_month", rep)))
		if err != nil {
			return nil, malformed(s.name, "bad start month", err)
		}
		em, err := parseMonth(obj.GetString(repField("end_month", rep)))
		if err != nil {
			return nil, malformed(s.name, "bad end month", err)
		}
		sd, ok, err := numField(obj, repField("start_day", rep))
		if err != nil || !ok {
			return nil, malformed(s.name, "bad start day", err)
		}
		ed, ok, err := numField(obj, repField("end_day", rep))
		if err != nil || !ok {
			return nil, malformed(s.name, "bad end day", err)
		}
		s.groups = append(s.groups, yearGroup{
			weekName: week,
			startKey: monthDayKey(sm, int(sd)),
			endKey:   monthDayKey(em, int(ed)),
		})
	}
	if len(s.groups) == 0 {
		return nil, malformed(s.name, "no week schedule periods", nil)
	}
	return s, nil
}

func (s *yearSchedule) valueAt(st *state, at time.Time) (float64, error) {
	if st.doc == nil {
		return 0, ErrNoDocument
	}
	key := monthDayKey(int(at.Month()), at.Day())
	for _, g := range s.groups {
		if !inDateRange(key, g.startKey, g.endKey) {
			continue
		}
		week, err := s.resolveWeek(st, g.weekName)
		if err != nil {
			return 0, err
		}
		return week.valueAt(st, at)
	}
	return 0, malformed(s.name, "no period covers the requested date", nil)
}

func (s *yearSchedule) resolveWeek(st *state, name string) (Schedule, error) {
	for _, typ := range weekScheduleTypes {
		if obj, ok := st.doc.Collection(typ).Get(name); ok {
			return Compile(obj)
		}
	}
	return nil, malformed(s.name, "week schedule "+name+" not found", nil)
}
