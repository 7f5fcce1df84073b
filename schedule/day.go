package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/buildsim/epdoc"
)

// TimeValue pairs an "Until" time-of-day (minutes since midnight) with
// the value that holds strictly before it: the interval is half-open,
// so at exactly Until evaluation has moved on to the next entry.
type TimeValue struct {
	Until float64
	Value float64
}

// evalTimeValues resolves a time-of-day against an ascending Until list.
// Past the final boundary (only possible when the list stops short of
// 24:00) the last value holds. Linear interpolation runs from the
// previous boundary's value; a zero-duration interval falls back to step
// behavior.
func evalTimeValues(times []TimeValue, minutes float64, interp Interp) float64 {
	if len(times) == 0 {
		return 0
	}
	for i, tv := range times {
		if minutes < tv.Until {
			if (interp == InterpLinear || interp == InterpAverage) && i > 0 {
				prev := times[i-1]
				dur := tv.Until - prev.Until
				if dur > 0 {
					frac := (minutes - prev.Until) / dur
					return prev.Value + (tv.Value-prev.Value)*frac
				}
			}
			return tv.Value
		}
	}
	return times[len(times)-1].Value
}

// dayEvaluator is implemented by the self-contained day-level kinds so
// week and year schedules can evaluate them at a resolved time-of-day.
type dayEvaluator interface {
	dayValue(st *state, minutes float64) (float64, error)
}

// ---- Schedule:Constant ----

type constantSchedule struct {
	value float64
}

func compileConstant(obj *epdoc.Object) (Schedule, error) {
	v, _, err := numField(obj, "hourly_value")
	if err != nil {
		return nil, err
	}
	return &constantSchedule{value: v}, nil
}

func (s *constantSchedule) valueAt(_ *state, _ time.Time) (float64, error) {
	return s.value, nil
}

func (s *constantSchedule) dayValue(_ *state, _ float64) (float64, error) {
	return s.value, nil
}

// ---- Schedule:Day:Hourly ----

type hourlySchedule struct {
	hours [24]float64
}

func compileHourly(obj *epdoc.Object) (Schedule, error) {
	s := &hourlySchedule{}
	for h := 0; h < 24; h++ {
		v, _, err := numField(obj, fmt.Sprintf("hour_%d", h+1))
		if err != nil {
			return nil, err
		}
		s.hours[h] = v
	}
	return s, nil
}

func (s *hourlySchedule) valueAt(st *state, at time.Time) (float64, error) {
	return s.dayValue(st, clockMinutes(at))
}

func (s *hourlySchedule) dayValue(_ *state, minutes float64) (float64, error) {
	h := int(minutes) / 60
	if h > 23 {
		h = 23
	}
	return s.hours[h], nil
}

// ---- Schedule:Day:Interval ----

type intervalSchedule struct {
	interp Interp
	times  []TimeValue
}

func compileInterval(obj *epdoc.Object) (Schedule, error) {
	s := &intervalSchedule{interp: parseInterp(obj.GetString("interpolate_to_timestep"))}
	for rep := 1; ; rep++ {
		raw := obj.GetString(repField("time", rep))
		if raw == "" {
			break
		}
		raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Until:"))
		until, err := minutesOfDay(raw)
		if err != nil {
			return nil, malformed(obj.Name(), "bad Until time", err)
		}
		v, present, err := numField(obj, repField("value_until_time", rep))
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, malformed(obj.Name(), "missing value for "+raw, nil)
		}
		if n := len(s.times); n > 0 && until <= s.times[n-1].Until {
			return nil, malformed(obj.Name(), "Until times must be ascending", nil)
		}
		s.times = append(s.times, TimeValue{Until: until, Value: v})
	}
	return s, nil
}

func (s *intervalSchedule) valueAt(st *state, at time.Time) (float64, error) {
	return s.dayValue(st, clockMinutes(at))
}

func (s *intervalSchedule) dayValue(st *state, minutes float64) (float64, error) {
	return evalTimeValues(s.times, minutes, st.effectiveInterp(s.interp)), nil
}

// ---- Schedule:Day:List ----

type listSchedule struct {
	interp         Interp
	minutesPerItem float64
	values         []float64
}

func compileList(obj *epdoc.Object) (Schedule, error) {
	s := &listSchedule{
		interp:         parseInterp(obj.GetString("interpolate_to_timestep")),
		minutesPerItem: 60,
	}
	if v, ok, err := numField(obj, "minutes_per_item"); err != nil {
		return nil, err
	} else if ok && v > 0 {
		s.minutesPerItem = v
	}
	for rep := 1; ; rep++ {
		v, present, err := numField(obj, repField("value", rep))
		if err != nil {
			return nil, err
		}
		if !present {
			break
		}
		s.values = append(s.values, v)
	}
	if len(s.values) == 0 {
		return nil, malformed(obj.Name(), "no values", nil)
	}
	return s, nil
}

func (s *listSchedule) valueAt(st *state, at time.Time) (float64, error) {
	return s.dayValue(st, clockMinutes(at))
}

func (s *listSchedule) dayValue(st *state, minutes float64) (float64, error) {
	idx := int(minutes / s.minutesPerItem)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	v := s.values[idx]
	if ip := st.effectiveInterp(s.interp); ip == InterpLinear || ip == InterpAverage {
		if next := idx + 1; next < len(s.values) {
			frac := (minutes - float64(idx)*s.minutesPerItem) / s.minutesPerItem
			v += (s.values[next] - v) * frac
		}
	}
	return v, nil
}

// parseInterp maps an Interpolate field token to a mode. "Yes" is the
// legacy spelling of Average.
func parseInterp(tok string) Interp {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "average", "yes":
		return InterpAverage
	case "linear":
		return InterpLinear
	case "no", "":
		return InterpNo
	}
	return InterpNo
}
