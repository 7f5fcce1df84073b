// Package schedule evaluates EnergyPlus schedule objects at a point in
// time or across a date range. A schedule object compiles once into a
// tagged union over the nine formats; evaluation never re-inspects type
// strings. The engine reads the owning document, never mutates it.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/fsio"
)

// Interp selects sub-interval interpolation behavior.
type Interp int

const (
	// InterpDefault defers to the schedule's own Interpolate flag.
	InterpDefault Interp = iota
	InterpNo
	InterpAverage
	InterpLinear
)

// Options configures evaluation. The zero value evaluates against the
// object's own document with no day-type override, the schedule's own
// interpolation flags, a calendar derived from the document, and the
// local disk for Schedule:File data.
type Options struct {
	// Document resolves Week/Year/day cross-references; defaults to the
	// schedule object's owning document.
	Document *epdoc.Document
	// Override forces a day type, replacing calendar day-type resolution.
	Override Override
	// Interpolate overrides every schedule-declared interpolation flag.
	Interpolate Interp
	// Calendar supplies holiday/custom-day sets; defaults to
	// CalendarFromDocument.
	Calendar *Calendar
	// BasePath anchors relative Schedule:File paths.
	BasePath string
	// FS reads Schedule:File data; defaults to fsio.Disk.
	FS fsio.FileSystem
	// Logger receives non-fatal diagnostics (skipped short rows).
	Logger *zerolog.Logger

	// StepsPerHour is the Values cadence: 1, 2, 4, 6, 12 or 60.
	// Defaults to 1.
	StepsPerHour int
	// Start/End bound the Values date range, inclusive of both endpoint
	// days. Zero values mean January 1 through December 31.
	StartMonth, StartDay int
	EndMonth, EndDay     int
}

// state is the per-call (or per-batch) evaluation context. The file
// cache lives here so repeated evaluations within one batch read each
// CSV once, and nothing outlives the call.
type state struct {
	doc      *epdoc.Document
	override Override
	interp   Interp
	cal      *Calendar
	basePath string
	fs       fsio.FileSystem
	log      zerolog.Logger
	files    map[string][]float64
}

func newState(obj *epdoc.Object, opts []Options) *state {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	st := &state{
		doc:      o.Document,
		override: o.Override,
		interp:   o.Interpolate,
		cal:      o.Calendar,
		basePath: o.BasePath,
		fs:       o.FS,
		log:      zerolog.Nop(),
		files:    map[string][]float64{},
	}
	if st.doc == nil && obj != nil {
		st.doc = obj.Document()
	}
	if st.cal == nil {
		st.cal = CalendarFromDocument(st.doc)
	}
	if st.fs == nil {
		st.fs = fsio.Disk{}
	}
	if o.Logger != nil {
		st.log = *o.Logger
	}
	return st
}

// effectiveInterp resolves a schedule-declared flag against the
// call-level override.
func (st *state) effectiveInterp(declared Interp) Interp {
	if st.interp != InterpDefault {
		return st.interp
	}
	if declared == InterpDefault {
		return InterpNo
	}
	return declared
}

// Schedule is the compiled form of a schedule object. It is a sealed
// union: one variant per schedule format, built once by Compile.
type Schedule interface {
	valueAt(st *state, at time.Time) (float64, error)
}

const memoKey = "schedule:compiled"

// Compile parses a schedule object into its compiled form. The result
// is memoized on the object itself and invalidated when the object is
// edited, so the cache can never keep a dead object alive nor serve a
// stale parse.
func Compile(obj *epdoc.Object) (Schedule, error) {
	if v, ok := obj.Memo(memoKey); ok {
		return v.(Schedule), nil
	}
	s, err := compile(obj)
	if err != nil {
		return nil, err
	}
	obj.SetMemo(memoKey, s)
	return s, nil
}

func compile(obj *epdoc.Object) (Schedule, error) {
	switch strings.ToLower(obj.Type()) {
	case "schedule:constant":
		return compileConstant(obj)
	case "schedule:day:hourly":
		return compileHourly(obj)
	case "schedule:day:interval":
		return compileInterval(obj)
	case "schedule:day:list":
		return compileList(obj)
	case "schedule:compact":
		return compileCompact(obj)
	case "schedule:week:daily":
		return compileWeekDaily(obj)
	case "schedule:week:compact":
		return compileWeekCompact(obj)
	case "schedule:year":
		return compileYear(obj)
	case "schedule:file":
		return compileFile(obj)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, obj.Type())
}

// Value evaluates one schedule object at one timestamp.
func Value(obj *epdoc.Object, at time.Time, opt ...Options) (float64, error) {
	s, err := Compile(obj)
	if err != nil {
		return 0, err
	}
	return s.valueAt(newState(obj, opt), at)
}

// repField returns the canonical key of the rep-th occurrence of an
// extensible base field: rep 1 is the bare name, rep 2 is base_2, ...
func repField(base string, rep int) string {
	if rep == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, rep)
}

// numField reads a numeric field. Missing and empty fields report
// present == false; a non-empty value that does not parse as a number
// is malformed, never defaulted.
func numField(obj *epdoc.Object, key string) (v float64, present bool, err error) {
	raw, ok := obj.Get(key)
	if !ok || raw == nil || raw == "" {
		return 0, false, nil
	}
	if n, ok := obj.GetNumber(key); ok {
		return n, true, nil
	}
	return 0, false, malformed(obj.Name(), fmt.Sprintf("field %s: expected a number, got %q", key, obj.GetString(key)), nil)
}
