package schedule

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buildsim/epdoc"
)

type fileSchedule struct {
	name           string
	fileName       string
	column         int // 1-based
	skipRows       int
	sep            string
	interp         Interp
	minutesPerItem float64
}

func compileFile(obj *epdoc.Object) (Schedule, error) {
	s := &fileSchedule{
		name:           obj.Name(),
		fileName:       obj.GetString("file_name"),
		interp:         parseInterp(obj.GetString("interpolate_to_timestep")),
		minutesPerItem: 60,
	}
	if s.fileName == "" {
		return nil, malformed(s.name, "missing file name", nil)
	}
	col, ok, err := numField(obj, "column_number")
	if err != nil {
		return nil, err
	}
	if !ok || col < 1 {
		return nil, malformed(s.name, "missing or invalid column number", nil)
	}
	s.column = int(col)
	if v, ok, err := numField(obj, "rows_to_skip_at_top"); err != nil {
		return nil, err
	} else if ok {
		s.skipRows = int(v)
	}
	if v, ok, err := numField(obj, "minutes_per_item"); err != nil {
		return nil, err
	} else if ok && v > 0 {
		s.minutesPerItem = v
	}
	switch strings.ToLower(obj.GetString("column_separator")) {
	case "", "comma":
		s.sep = ","
	case "tab":
		s.sep = "\t"
	case "space":
		s.sep = " "
	case "semicolon":
		s.sep = ";"
	default:
		return nil, malformed(s.name, "unknown column separator", nil)
	}
	return s, nil
}

func (s *fileSchedule) valueAt(st *state, at time.Time) (float64, error) {
	values, err := s.values(st)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, malformed(s.name, "file holds no usable rows", nil)
	}
	elapsed := float64(at.YearDay()-1)*1440 + clockMinutes(at)
	slot := elapsed / s.minutesPerItem
	idx := int(slot) % len(values)
	v := values[idx]
	if ip := st.effectiveInterp(s.interp); ip == InterpLinear || ip == InterpAverage {
		next := (idx + 1) % len(values)
		frac := slot - float64(int(slot))
		v += (values[next] - v) * frac
	}
	return v, nil
}

// values reads and parses the backing file, caching per resolved path
// for the lifetime of the evaluation state so a batch run reads each
// file once.
func (s *fileSchedule) values(st *state) ([]float64, error) {
	path := s.fileName
	if !filepath.IsAbs(path) && st.basePath != "" {
		path = filepath.Join(st.basePath, path)
	}
	if cached, ok := st.files[path]; ok {
		return cached, nil
	}
	text, err := st.fs.ReadText(path)
	if err != nil {
		return nil, malformed(s.name, "cannot read "+path, err)
	}
	values, err := s.parse(st, text)
	if err != nil {
		return nil, err
	}
	st.files[path] = values
	return values, nil
}

func (s *fileSchedule) parse(st *state, text string) ([]float64, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if s.skipRows < len(lines) {
		lines = lines[s.skipRows:]
	} else {
		lines = nil
	}
	var values []float64
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var cols []string
		if s.sep == " " {
			cols = strings.Fields(line)
		} else {
			cols = strings.Split(line, s.sep)
		}
		if len(cols) < s.column {
			// self-describing and recoverable: the row is just short
			st.log.Warn().Str("schedule", s.name).Int("row", s.skipRows+i+1).
				Int("columns", len(cols)).Int("wanted", s.column).
				Msg("row has too few columns; skipped")
			continue
		}
		cell := strings.TrimSpace(cols[s.column-1])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, malformed(s.name, "non-numeric cell "+strconv.Quote(cell), err)
		}
		values = append(values, v)
	}
	return values, nil
}
