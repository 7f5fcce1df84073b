package schedule_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/schedule"
)

// memFS is an in-memory read-only file system for Schedule:File tests.
type memFS struct {
	files map[string]string
	reads int
}

func (m *memFS) ReadText(path string) (string, error) {
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	m.reads++
	return text, nil
}

func (m *memFS) ReadBytes(path string) ([]byte, error) {
	s, err := m.ReadText(path)
	return []byte(s), err
}

func (m *memFS) Exists(path string) bool { _, ok := m.files[path]; return ok }

func (m *memFS) WriteBytes(string, []byte) error { return errors.New("read-only") }
func (m *memFS) WriteText(string, string) error  { return errors.New("read-only") }
func (m *memFS) MakeDirs(string) error           { return errors.New("read-only") }
func (m *memFS) Copy(string, string) error       { return errors.New("read-only") }
func (m *memFS) Remove(string) error             { return errors.New("read-only") }
func (m *memFS) Glob(string) ([]string, error)   { return nil, nil }

// hourlyCSV is 24 rows of "label,<hour>" behind one header row, with a
// short junk row in the middle that the parser must skip.
func hourlyCSV() string {
	var b strings.Builder
	b.WriteString("timestamp,value\n")
	for h := 0; h < 24; h++ {
		if h == 12 {
			b.WriteString("short\n")
		}
		fmt.Fprintf(&b, "h%d,%d\n", h, h)
	}
	return b.String()
}

func addFileSchedule(t *testing.T, doc *epdoc.Document, fields map[string]any) *epdoc.Object {
	t.Helper()
	base := map[string]any{
		"file_name":           "loads.csv",
		"column_number":       2,
		"rows_to_skip_at_top": 1,
	}
	for k, v := range fields {
		base[k] = v
	}
	return add(t, doc, "Schedule:File", "Load Profile", base)
}

func TestFile_HourlyLookup(t *testing.T) {
	doc := newDoc(t)
	obj := addFileSchedule(t, doc, nil)
	mem := &memFS{files: map[string]string{"/data/loads.csv": hourlyCSV()}}
	opts := schedule.Options{FS: mem, BasePath: "/data"}

	wantValue(t, obj, at(2024, 1, 1, 0, 0), 0.0, opts)
	wantValue(t, obj, at(2024, 1, 1, 5, 0), 5.0, opts)
	wantValue(t, obj, at(2024, 1, 1, 23, 30), 23.0, opts)
	// the 24-value file wraps: day two reads the same rows again
	wantValue(t, obj, at(2024, 1, 2, 5, 0), 5.0, opts)
}

func TestFile_Interpolation(t *testing.T) {
	doc := newDoc(t)
	obj := addFileSchedule(t, doc, map[string]any{"interpolate_to_timestep": "Linear"})
	mem := &memFS{files: map[string]string{"loads.csv": hourlyCSV()}}

	wantValue(t, obj, at(2024, 1, 1, 5, 30), 5.5, schedule.Options{FS: mem})
}

func TestFile_BatchReadsOnce(t *testing.T) {
	doc := newDoc(t)
	obj := addFileSchedule(t, doc, nil)
	mem := &memFS{files: map[string]string{"loads.csv": hourlyCSV()}}

	vals, err := schedule.Values(obj, 2024, schedule.Options{
		FS:         mem,
		StartMonth: 1, StartDay: 1, EndMonth: 1, EndDay: 7,
	})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if len(vals) != 7*24 {
		t.Fatalf("expected %d samples, got %d", 7*24, len(vals))
	}
	if mem.reads != 1 {
		t.Fatalf("file read %d times in one batch, want 1", mem.reads)
	}
}

func TestFile_MissingFile(t *testing.T) {
	doc := newDoc(t)
	obj := addFileSchedule(t, doc, nil)
	mem := &memFS{files: map[string]string{}}

	_, err := schedule.Value(obj, at(2024, 1, 1, 0, 0), schedule.Options{FS: mem})
	if !errors.Is(err, schedule.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for unreadable file, got %v", err)
	}
}

func TestFile_NonNumericCell(t *testing.T) {
	doc := newDoc(t)
	obj := addFileSchedule(t, doc, nil)
	mem := &memFS{files: map[string]string{"loads.csv": "h,v\na,1\nb,oops\n"}}

	_, err := schedule.Value(obj, at(2024, 1, 1, 0, 0), schedule.Options{FS: mem})
	if !errors.Is(err, schedule.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for non-numeric cell, got %v", err)
	}
}

func TestFile_ColumnRequired(t *testing.T) {
	doc := newDoc(t)
	obj := add(t, doc, "Schedule:File", "No Column", map[string]any{
		"file_name": "loads.csv",
	})
	if _, err := schedule.Compile(obj); !errors.Is(err, schedule.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for missing column, got %v", err)
	}
}
