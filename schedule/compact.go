package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/buildsim/epdoc"
)

// compactDayRule is one "For:" block: the day types it covers and the
// ordered Until/value list that holds on those days.
type compactDayRule struct {
	tags   tagSet
	interp Interp
	times  []TimeValue
}

// compactPeriod is one "Through:" block: consecutive periods partition
// the year, each ending on its (month, day) inclusive.
type compactPeriod struct {
	endKey int
	rules  []*compactDayRule
}

type compactSchedule struct {
	periods []*compactPeriod
}

// compileCompact parses the Schedule:Compact token stream. The grammar
// is Through -> For -> (Interpolate?) -> (Until -> value)+, with every
// token in its own field.
func compileCompact(obj *epdoc.Object) (Schedule, error) {
	name := obj.Name()
	s := &compactSchedule{}

	var period *compactPeriod
	var rule *compactDayRule
	pendingUntil := -1.0

	closeRule := func() {
		if rule != nil && period != nil {
			period.rules = append(period.rules, rule)
		}
		rule = nil
	}
	closePeriod := func() {
		closeRule()
		if period != nil {
			s.periods = append(s.periods, period)
		}
		period = nil
	}

	for rep := 1; ; rep++ {
		raw, ok := obj.Get(repField("field", rep))
		if !ok {
			break
		}
		tok := strings.TrimSpace(epdoc.FormatValue(raw))
		if tok == "" {
			continue
		}
		low := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(low, "through:"):
			closePeriod()
			m, d, err := parseMonthDay(tok[len("through:"):])
			if err != nil {
				return nil, malformed(name, "bad Through date", err)
			}
			period = &compactPeriod{endKey: monthDayKey(m, d)}

		case strings.HasPrefix(low, "for:"):
			if period == nil {
				// a schedule may omit Through and cover the whole year
				period = &compactPeriod{endKey: monthDayKey(12, 31)}
			}
			closeRule()
			rule = &compactDayRule{tags: tagSet{}}
			for _, word := range strings.Fields(tok[len("for:"):]) {
				tag, ok := parseDayTag(word)
				if !ok {
					return nil, malformed(name, "unknown day type "+strconv.Quote(word), nil)
				}
				rule.tags[tag] = true
			}

		case strings.HasPrefix(low, "interpolate:"):
			if rule == nil {
				return nil, malformed(name, "Interpolate outside a For block", nil)
			}
			rule.interp = parseInterp(tok[len("interpolate:"):])

		case strings.HasPrefix(low, "until:"):
			if rule == nil {
				return nil, malformed(name, "Until outside a For block", nil)
			}
			if pendingUntil >= 0 {
				return nil, malformed(name, "Until without a value", nil)
			}
			until, err := minutesOfDay(tok[len("until:"):])
			if err != nil {
				return nil, malformed(name, "bad Until time", err)
			}
			pendingUntil = until

		default:
			if pendingUntil < 0 {
				return nil, malformed(name, "unexpected token "+strconv.Quote(tok), nil)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, malformed(name, "expected a number, got "+strconv.Quote(tok), err)
			}
			rule.times = append(rule.times, TimeValue{Until: pendingUntil, Value: v})
			pendingUntil = -1
		}
	}
	if pendingUntil >= 0 {
		return nil, malformed(name, "Until without a value", nil)
	}
	closePeriod()
	if len(s.periods) == 0 {
		return nil, malformed(name, "no Through periods", nil)
	}
	return s, nil
}

func (s *compactSchedule) valueAt(st *state, at time.Time) (float64, error) {
	period := s.period(at)
	tags := applicableTags(at, st.override, st.cal)
	minutes := clockMinutes(at)
	// first rule matching the highest-priority applicable tag wins
	for _, ptag := range tagPriority {
		if !tags[ptag] {
			continue
		}
		for _, rule := range period.rules {
			if rule.tags[ptag] {
				return evalTimeValues(rule.times, minutes, st.effectiveInterp(rule.interp)), nil
			}
		}
	}
	// no rule covers this day type; 0.0 by definition, not by error
	return 0, nil
}

// period selects the first period whose end date is on or after the
// target; dates past every period land in the last one, which makes the
// period list wrap around the year.
func (s *compactSchedule) period(at time.Time) *compactPeriod {
	key := monthDayKey(int(at.Month()), at.Day())
	for _, p := range s.periods {
		if key <= p.endKey {
			return p
		}
	}
	return s.periods[len(s.periods)-1]
}
