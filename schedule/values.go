package schedule

import (
	"fmt"
	"time"

	"github.com/buildsim/epdoc"
)

var validSteps = map[int]bool{1: true, 2: true, 4: true, 6: true, 12: true, 60: true}

// Values evaluates the schedule at a fixed sub-hourly cadence across a
// date range within one year, one value per step, sampled at the start
// of each step, both endpoint days included. The default range is the
// full year: at the hourly cadence that is 8784 values for a leap year
// and 8760 otherwise.
func Values(obj *epdoc.Object, year int, opt ...Options) ([]float64, error) {
	var o Options
	if len(opt) > 0 {
		o = opt[0]
	}
	steps := o.StepsPerHour
	if steps == 0 {
		steps = 1
	}
	if !validSteps[steps] {
		return nil, fmt.Errorf("schedule: steps per hour must be one of 1, 2, 4, 6, 12, 60; got %d", steps)
	}
	startMonth, startDay := o.StartMonth, o.StartDay
	if startMonth == 0 {
		startMonth, startDay = 1, 1
	}
	endMonth, endDay := o.EndMonth, o.EndDay
	if endMonth == 0 {
		endMonth, endDay = 12, 31
	}

	s, err := Compile(obj)
	if err != nil {
		return nil, err
	}
	st := newState(obj, opt)

	stepMinutes := 60 / steps
	start := time.Date(year, time.Month(startMonth), startDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(endMonth), endDay, 0, 0, 0, 0, time.UTC)

	var out []float64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for minute := 0; minute < 24*60; minute += stepMinutes {
			v, err := s.valueAt(st, day.Add(time.Duration(minute)*time.Minute))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}
