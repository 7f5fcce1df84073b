package schema

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed schemas/*.json
var bundled embed.FS

// NotFoundError reports that no schema file exists for the requested
// version in any searched location. Version resolution is exact; picking
// a nearby version is a caller decision, never done here.
type NotFoundError struct {
	Version  Version
	Searched []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema: no schema for version %s (searched %s)",
		e.Version, strings.Join(e.Searched, ", "))
}

var (
	cacheMu sync.Mutex
	cache   = map[Version]*Schema{}
)

// DefaultLocations returns the on-disk search locations consulted after
// the bundled schemas: the user cache directory, then the working
// directory.
func DefaultLocations() []string {
	var locs []string
	if dir, err := os.UserCacheDir(); err == nil {
		locs = append(locs, filepath.Join(dir, "epdoc", "schemas"))
	}
	locs = append(locs, ".")
	return locs
}

// Get loads the schema for an exact version, searching the bundled
// distribution schemas first and then each location in order. Repeated
// calls for the same version return the identical cached instance; the
// cached schema is read-only after load. With no explicit locations,
// DefaultLocations is used.
func Get(v Version, locations ...string) (*Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[v]; ok {
		return s, nil
	}
	if len(locations) == 0 {
		locations = DefaultLocations()
	}
	searched := []string{"(bundled)"}
	if data, err := bundled.ReadFile("schemas/" + fileName(v, false)); err == nil {
		s, err := Parse(data)
		if err != nil {
			return nil, err
		}
		cache[v] = s
		return s, nil
	}
	for _, loc := range locations {
		for _, gz := range []bool{false, true} {
			path := filepath.Join(loc, fileName(v, gz))
			searched = append(searched, path)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			s, err := Parse(data)
			if err != nil {
				return nil, err
			}
			cache[v] = s
			return s, nil
		}
	}
	return nil, &NotFoundError{Version: v, Searched: searched}
}

// Register inserts an already parsed schema into the cache, keyed by its
// own version. Intended for tests and embedders that build schemas from
// in-memory data.
func Register(s *Schema) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache[s.Version] = s
}

func fileName(v Version, gz bool) string {
	n := "epdoc-" + v.String() + ".json"
	if gz {
		n += ".gz"
	}
	return n
}
