package epdoc

import (
	"strconv"
	"strings"

	"github.com/buildsim/epdoc/schema"
)

// Object is one instance of an object type: a name (conceptually field
// index 0, held apart from the field map) plus an ordered set of scalar
// field values. Field keys are canonicalized to lower case on insert;
// lookups are case-insensitive.
//
// Field values are float64, int, string, or nil. Sentinel tokens such as
// "Autosize" stay strings with their original casing.
type Object struct {
	typ    string
	name   string
	fields map[string]any
	order  []string
	def    *schema.TypeDef
	doc    *Document
	memo   map[string]any
}

// NewObject builds a detached object. def may be nil when no schema
// covers the type; field order is then whatever insertion order produces.
func NewObject(typ, name string, def *schema.TypeDef) *Object {
	return &Object{
		typ:    typ,
		name:   name,
		fields: map[string]any{},
		def:    def,
	}
}

// Type returns the declared object-type name.
func (o *Object) Type() string { return o.typ }

// Name returns the object's name, empty for nameless objects.
func (o *Object) Name() string { return o.name }

// Document returns the owning document, nil while detached. The
// back-reference exists for convenience lookups only; the document owns
// the object.
func (o *Object) Document() *Document { return o.doc }

// Def returns the schema type definition attached at construction, or nil.
func (o *Object) Def() *schema.TypeDef { return o.def }

// Get looks a field up case-insensitively. ok is false when the field
// was never set.
func (o *Object) Get(field string) (any, bool) {
	v, ok := o.fields[strings.ToLower(field)]
	return v, ok
}

// GetString returns the field's value rendered as a string; missing and
// nil fields render empty.
func (o *Object) GetString(field string) string {
	v, ok := o.Get(field)
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

// GetNumber returns the field as a float64. Integer values widen;
// numeric strings parse; anything else (missing, empty, sentinel tokens)
// reports ok=false.
func (o *Object) GetNumber(field string) (float64, bool) {
	v, ok := o.Get(field)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Set stores a field value under its canonical key, appending to the
// field order on first insert. When the object belongs to a document and
// the field is a schema-flagged reference, the reference graph is updated
// atomically for that field. Any memoized derivations are invalidated.
func (o *Object) Set(field string, value any) {
	key := strings.ToLower(field)
	old, existed := o.fields[key]
	o.fields[key] = value
	if !existed {
		o.order = append(o.order, key)
	}
	o.memo = nil
	if o.doc != nil && o.isReferenceField(key) {
		oldT, _ := old.(string)
		newT, _ := value.(string)
		o.doc.refs.UpdateReference(o, key, oldT, newT)
	}
}

// FieldOrder returns the canonical field keys in positional order.
func (o *Object) FieldOrder() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Len reports the number of stored fields, name excluded.
func (o *Object) Len() int { return len(o.order) }

func (o *Object) isReferenceField(key string) bool {
	if o.def == nil {
		return false
	}
	f, ok := o.def.Field(key)
	return ok && f.IsReference()
}

// Memo returns a value previously stored with SetMemo. The table is
// cleared on every Set, so derived parses never outlive an edit, and it
// lives on the object itself so it can never extend the object's
// lifetime.
func (o *Object) Memo(key string) (any, bool) {
	v, ok := o.memo[key]
	return v, ok
}

// SetMemo associates a derived value with the object until its next edit.
func (o *Object) SetMemo(key string, v any) {
	if o.memo == nil {
		o.memo = map[string]any{}
	}
	o.memo[key] = v
}

// clone deep-copies the object's field data. The clone is detached.
func (o *Object) clone(name string) *Object {
	c := NewObject(o.typ, name, o.def)
	c.order = append([]string(nil), o.order...)
	for k, v := range o.fields {
		c.fields[k] = v
	}
	return c
}

// FormatValue renders a scalar field value in its canonical text form.
// Floats that hold integral values print without an exponent or a
// trailing ".0" so round-trips stay byte-stable.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return ""
	}
}
