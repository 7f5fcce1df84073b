// Package epjson reads and writes the EnergyPlus epJSON format: a JSON
// document whose top-level keys are object types and whose second-level
// keys are instance names (or a placeholder key for nameless types).
package epjson

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/schema"
)

// Option bundles parse options; see idf.Option for the same shape.
type Option struct {
	Schema          *schema.Schema
	SchemaLocations []string
	Logger          *zerolog.Logger
}

func (o Option) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Parse decodes epJSON into a document. Non-object values at the type or
// instance level are skipped with a warning, never fatal. A Version
// object with a version_identifier field is mandatory unless a schema is
// supplied directly.
func Parse(data []byte, opt ...Option) (*epdoc.Document, error) {
	var o Option
	if len(opt) > 0 {
		o = opt[0]
	}
	log := o.logger()

	var top map[string]any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("epjson: decode: %w", err)
	}

	s := o.Schema
	if s == nil {
		ver, ok := findVersion(top)
		if !ok {
			return nil, epdoc.ErrVersionNotFound
		}
		v, err := schema.ParseVersion(ver)
		if err != nil {
			return nil, err
		}
		s, err = schema.Get(v, o.SchemaLocations...)
		if err != nil {
			return nil, err
		}
	}

	doc := epdoc.NewDocument(s)
	for _, typ := range sortedKeys(top) {
		instances, ok := top[typ].(map[string]any)
		if !ok {
			log.Warn().Str("type", typ).Msg("type-level value is not an object; skipped")
			continue
		}
		def := s.Type(typ)
		for _, key := range sortedKeys(instances) {
			fields, ok := instances[key].(map[string]any)
			if !ok {
				log.Warn().Str("type", typ).Str("key", key).Msg("instance-level value is not an object; skipped")
				continue
			}
			buildObject(doc, def, typ, key, fields, log)
		}
	}
	return doc, nil
}

// buildObject inserts one instance. The instance key is the object name
// only for schema-named types; for nameless types it is a required but
// semantically empty dictionary key and is discarded, never stored as a
// name. Unknown types keep the key as the name for raw fidelity.
func buildObject(doc *epdoc.Document, def *schema.TypeDef, typ, key string, fields map[string]any, log zerolog.Logger) {
	name := key
	if def != nil {
		typ = def.Name
		if !def.HasName {
			name = ""
		}
	} else {
		log.Warn().Str("type", typ).Msg("object type not in schema; kept verbatim")
	}

	obj := epdoc.NewObject(typ, name, def)
	for _, field := range orderedFieldKeys(def, fields) {
		obj.Set(field, coerce(def, field, fields[field]))
	}
	doc.InsertRaw(obj)
}

// orderedFieldKeys restores schema-declared field order; JSON object key
// order is not preserved by decoding, so position comes from the schema,
// with unknown keys appended alphabetically.
func orderedFieldKeys(def *schema.TypeDef, fields map[string]any) []string {
	keys := sortedKeys(fields)
	if def == nil {
		return keys
	}
	const unknown = 1 << 30
	pos := func(k string) int {
		if p, ok := def.FieldPosition(k); ok {
			return p
		}
		return unknown
	}
	sort.SliceStable(keys, func(i, j int) bool { return pos(keys[i]) < pos(keys[j]) })
	return keys
}

// coerce narrows decoded JSON values to the document scalar set.
// Integer-typed fields holding integral numbers become ints so both
// parsers produce identical field values.
func coerce(def *schema.TypeDef, field string, v any) any {
	switch n := v.(type) {
	case bool:
		if n {
			return "Yes"
		}
		return "No"
	case float64:
		if def != nil {
			if f, ok := def.Field(field); ok && f.Type == schema.FieldInteger && n == float64(int(n)) {
				return int(n)
			}
		}
		return n
	case string, nil:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func findVersion(top map[string]any) (string, bool) {
	for typ, v := range top {
		if !strings.EqualFold(typ, "Version") {
			continue
		}
		instances, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for _, inst := range instances {
			fields, ok := inst.(map[string]any)
			if !ok {
				continue
			}
			for k, fv := range fields {
				if strings.EqualFold(k, "version_identifier") {
					if s, ok := fv.(string); ok {
						return s, true
					}
				}
			}
		}
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
