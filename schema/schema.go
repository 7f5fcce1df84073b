package schema

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// FieldType classifies how a field's text value is coerced.
type FieldType string

const (
	FieldNumber  FieldType = "number"
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
	FieldChoice  FieldType = "choice"
)

// FieldDef describes one declared field of an object type. The synthetic
// name field is never part of a TypeDef's field list.
type FieldDef struct {
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Default    any       `json:"default,omitempty"`
	Required   bool      `json:"required,omitempty"`
	ObjectList []string  `json:"object_list,omitempty"`
	Keys       []string  `json:"keys,omitempty"`
}

// IsReference reports whether the field's value names another object.
func (f *FieldDef) IsReference() bool { return len(f.ObjectList) > 0 }

// TypeDef describes one object type: its ordered fields, whether instances
// carry a name, and the repeating-group size for extensible types.
type TypeDef struct {
	Name           string     `json:"-"`
	HasName        bool       `json:"has_name"`
	Fields         []FieldDef `json:"fields"`
	ExtensibleSize int        `json:"extensible_size,omitempty"`

	fieldIndex map[string]int
}

func (t *TypeDef) buildIndex() {
	t.fieldIndex = make(map[string]int, len(t.Fields))
	for i := range t.Fields {
		t.fieldIndex[strings.ToLower(t.Fields[i].Name)] = i
	}
}

// Field resolves a field name, case-insensitively, to its definition.
// For extensible types a suffixed repetition name ("vertex_x_coordinate_3")
// resolves to its base group field.
func (t *TypeDef) Field(name string) (*FieldDef, bool) {
	key := strings.ToLower(name)
	if i, ok := t.fieldIndex[key]; ok {
		return &t.Fields[i], true
	}
	if t.ExtensibleSize > 0 {
		if base, _, ok := splitRepetition(key); ok {
			if i, ok := t.fieldIndex[base]; ok && i >= len(t.Fields)-t.ExtensibleSize {
				return &t.Fields[i], true
			}
		}
	}
	return nil, false
}

// FieldNameAt returns the canonical field name for positional index i
// (0-based, name excluded). For extensible types, positions past the
// declared list repeat the trailing group with "_2", "_3", ... suffixes.
// ok is false when the position is out of range for a non-extensible type.
func (t *TypeDef) FieldNameAt(i int) (string, bool) {
	if i < len(t.Fields) {
		return t.Fields[i].Name, true
	}
	if t.ExtensibleSize <= 0 {
		return "", false
	}
	groupStart := len(t.Fields) - t.ExtensibleSize
	over := i - groupStart
	rep := over/t.ExtensibleSize + 1 // 1-based repetition count
	base := t.Fields[groupStart+over%t.ExtensibleSize].Name
	if rep == 1 {
		return base, true
	}
	return base + "_" + strconv.Itoa(rep), true
}

// FieldPosition maps a canonical field name (repetition suffixes
// included) to its 0-based positional index, the inverse of FieldNameAt.
func (t *TypeDef) FieldPosition(name string) (int, bool) {
	key := strings.ToLower(name)
	if i, ok := t.fieldIndex[key]; ok {
		return i, true
	}
	if t.ExtensibleSize > 0 {
		if base, rep, ok := splitRepetition(key); ok {
			if i, ok := t.fieldIndex[base]; ok && i >= len(t.Fields)-t.ExtensibleSize {
				return i + (rep-1)*t.ExtensibleSize, true
			}
		}
	}
	return 0, false
}

// splitRepetition splits "value_until_time_3" into ("value_until_time", 3).
// A bare name (no numeric suffix) is not a repetition.
func splitRepetition(name string) (base string, rep int, ok bool) {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 2 {
		return "", 0, false
	}
	return name[:i], n, true
}

// Schema is the immutable set of type definitions for one version. All
// query methods answer neutrally (zero value, nil, false) for unknown
// types and fields; only registry lookup of the schema itself can fail.
type Schema struct {
	Version Version
	types   map[string]*TypeDef
	order   []string
}

type schemaFile struct {
	Version     string              `json:"version"`
	ObjectTypes map[string]*TypeDef `json:"object_types"`
}

// Parse decodes schema data. Gzip-compressed payloads are detected by
// magic bytes and decompressed transparently.
func Parse(data []byte) (*Schema, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("schema: bad gzip payload: %w", err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("schema: bad gzip payload: %w", err)
		}
		data = raw
	}
	var sf schemaFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	v, err := ParseVersion(sf.Version)
	if err != nil {
		return nil, err
	}
	s := &Schema{Version: v, types: make(map[string]*TypeDef, len(sf.ObjectTypes))}
	for name, def := range sf.ObjectTypes {
		def.Name = name
		if def.ExtensibleSize > len(def.Fields) {
			return nil, fmt.Errorf("schema: type %q: extensible group larger than field list", name)
		}
		def.buildIndex()
		s.types[strings.ToLower(name)] = def
		s.order = append(s.order, name)
	}
	sort.Strings(s.order)
	return s, nil
}

// TypeNames lists every known object type in sorted order.
func (s *Schema) TypeNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Type resolves an object-type name case-insensitively; nil when unknown.
func (s *Schema) Type(name string) *TypeDef {
	return s.types[strings.ToLower(name)]
}

// HasName reports whether instances of the type carry a semantic name.
// Unknown types report false: a parser must never invent a name.
func (s *Schema) HasName(typ string) bool {
	t := s.Type(typ)
	return t != nil && t.HasName
}

// FieldNames returns the declared field names, excluding the name field.
func (s *Schema) FieldNames(typ string) []string {
	t := s.Type(typ)
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Fields))
	for i := range t.Fields {
		out[i] = t.Fields[i].Name
	}
	return out
}

// AllFieldNames is FieldNames with the synthetic "name" entry first when
// the type is named.
func (s *Schema) AllFieldNames(typ string) []string {
	t := s.Type(typ)
	if t == nil {
		return nil
	}
	names := s.FieldNames(typ)
	if !t.HasName {
		return names
	}
	return append([]string{"name"}, names...)
}

// IsReferenceField reports whether the field holds another object's name.
func (s *Schema) IsReferenceField(typ, field string) bool {
	t := s.Type(typ)
	if t == nil {
		return false
	}
	f, ok := t.Field(field)
	return ok && f.IsReference()
}

// FieldObjectList returns the object-list categories a reference field
// points into, or nil for unknown or non-reference fields.
func (s *Schema) FieldObjectList(typ, field string) []string {
	t := s.Type(typ)
	if t == nil {
		return nil
	}
	f, ok := t.Field(field)
	if !ok {
		return nil
	}
	return f.ObjectList
}

// IsExtensible reports whether the type ends in a repeating field group.
func (s *Schema) IsExtensible(typ string) bool {
	t := s.Type(typ)
	return t != nil && t.ExtensibleSize > 0
}

// ExtensibleGroupSize returns the repeating-group field count, 0 when the
// type is not extensible or unknown.
func (s *Schema) ExtensibleGroupSize(typ string) int {
	t := s.Type(typ)
	if t == nil {
		return 0
	}
	return t.ExtensibleSize
}
