package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies a schema release as a (major, minor, patch) triple.
// Distinct versions resolve to distinct, independently cached Schema
// instances.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion accepts "24.1", "24.1.0" or a single major like "24".
// Missing components default to zero. Trailing build metadata after the
// patch component is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("schema: empty version string")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	var v Version
	dst := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Version{}, fmt.Errorf("schema: invalid version %q: %w", s, err)
		}
		*dst[i] = n
	}
	return v, nil
}

// String renders the full triple, e.g. "24.1.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether the version is the zero triple.
func (v Version) IsZero() bool {
	return v == Version{}
}
