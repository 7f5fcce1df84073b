// Package idf reads and writes the EnergyPlus IDF text format: comma
// separated fields, semicolon terminated objects, bang comments, free
// line wrapping inside an object body.
package idf

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/schema"
)

// Option bundles parse options. The zero value resolves the schema from
// the source's Version object against the default search locations and
// discards log output.
type Option struct {
	// Schema overrides registry resolution entirely when non-nil.
	Schema *schema.Schema
	// SchemaLocations passes extra search locations to the registry.
	SchemaLocations []string
	// Logger receives non-fatal parse diagnostics; nil discards them.
	Logger *zerolog.Logger
}

func (o Option) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// ParseString parses IDF text into a document.
func ParseString(src string, opt ...Option) (*epdoc.Document, error) {
	return Parse([]byte(src), opt...)
}

// Parse parses IDF text into a document. The source must carry a
// Version object; without one parsing fails with
// epdoc.ErrVersionNotFound because no schema can be resolved.
func Parse(data []byte, opt ...Option) (*epdoc.Document, error) {
	var o Option
	if len(opt) > 0 {
		o = opt[0]
	}
	log := o.logger()

	raw := tokenize(string(data), log)

	s := o.Schema
	if s == nil {
		ver, ok := findVersion(raw)
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
	for _, obj := range raw {
		buildObject(doc, s, obj, log)
	}
	return doc, nil
}

// rawObject is one semicolon-terminated body: the type token followed by
// its field tokens, comments already stripped.
type rawObject []string

// tokenize splits the source into raw objects. Comments are stripped per
// physical line so commented-out text can never produce a phantom
// object; fields keep interior whitespace but are trimmed at the edges.
// A body still open at end of input, missing its terminating semicolon,
// is discarded with a warning.
func tokenize(src string, log zerolog.Logger) []rawObject {
	var objects []rawObject
	var cur []string
	var field strings.Builder

	flushField := func() {
		cur = append(cur, strings.TrimSpace(field.String()))
		field.Reset()
	}

	for _, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '!'); i >= 0 {
			line = line[:i]
		}
		for _, r := range line {
			switch r {
			case ',':
				flushField()
			case ';':
				flushField()
				if len(cur) > 0 && cur[0] != "" {
					objects = append(objects, rawObject(cur))
				}
				cur = nil
			default:
				field.WriteRune(r)
			}
		}
		// a line break inside a field is just whitespace
		field.WriteByte(' ')
	}
	if leftover := strings.TrimSpace(field.String()); len(cur) > 0 || leftover != "" {
		typ := leftover
		if len(cur) > 0 {
			typ = cur[0]
		}
		log.Warn().Str("object", typ).Msg("unterminated object at end of input; discarded")
	}
	return objects
}

func findVersion(objects []rawObject) (string, bool) {
	for _, obj := range objects {
		if strings.EqualFold(obj[0], "Version") && len(obj) > 1 {
			return obj[1], true
		}
	}
	return "", false
}

// buildObject turns one raw object into an epdoc.Object and inserts it
// through the bulk path. Token 0 after the type is the name only when
// the schema says the type is named; nameless types (Timestep,
// SimulationControl, ...) keep every token as field data.
func buildObject(doc *epdoc.Document, s *schema.Schema, raw rawObject, log zerolog.Logger) {
	typ, tokens := raw[0], raw[1:]
	def := s.Type(typ)

	name := ""
	if def != nil && def.HasName {
		if len(tokens) > 0 {
			name = tokens[0]
			tokens = tokens[1:]
		}
	}
	if def == nil {
		log.Warn().Str("type", typ).Msg("object type not in schema; kept verbatim with positional fields")
	}

	obj := epdoc.NewObject(displayType(def, typ), name, def)
	for i, tok := range tokens {
		fieldName := positionalName(def, i)
		obj.Set(fieldName, coerce(def, fieldName, tok))
	}
	doc.InsertRaw(obj)
}

func displayType(def *schema.TypeDef, typ string) string {
	if def != nil {
		return def.Name
	}
	return typ
}

// positionalName maps a 0-based value position to its canonical field
// name, falling back to a synthesized positional name for unknown types
// and for overflow past a non-extensible layout.
func positionalName(def *schema.TypeDef, i int) string {
	if def != nil {
		if name, ok := def.FieldNameAt(i); ok {
			return name
		}
	}
	return "field_" + strconv.Itoa(i+1)
}

// coerce converts field text per the schema field type. Values that do
// not parse as their declared numeric type stay strings with their exact
// casing preserved (Autosize, Autocalculate). Empty fields stay empty
// strings: dropping them would shift the meaning of every later field in
// an extensible group.
func coerce(def *schema.TypeDef, field, tok string) any {
	if tok == "" || def == nil {
		return tok
	}
	f, ok := def.Field(field)
	if !ok {
		return tok
	}
	switch f.Type {
	case schema.FieldInteger:
		if n, err := strconv.Atoi(tok); err == nil {
			return n
		}
		if x, err := strconv.ParseFloat(tok, 64); err == nil {
			return x
		}
	case schema.FieldNumber:
		if x, err := strconv.ParseFloat(tok, 64); err == nil {
			return x
		}
	}
	return tok
}
