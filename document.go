package epdoc

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/buildsim/epdoc/schema"
)

// Document owns the per-type collections, the reference graph, and the
// schema version the contents were parsed against. Collections are
// created lazily: asking for a type that has no instances yields an
// empty collection, never an error.
type Document struct {
	Version schema.Version
	Path    string

	schema      *schema.Schema
	collections map[string]*Collection
	typeOrder   []string
	refs        *ReferenceGraph
}

// NewDocument builds an empty document. s may be nil; objects then carry
// no schema metadata and no references are tracked on Add.
func NewDocument(s *schema.Schema) *Document {
	d := &Document{
		schema:      s,
		collections: map[string]*Collection{},
		refs:        NewReferenceGraph(),
	}
	if s != nil {
		d.Version = s.Version
	}
	return d
}

// Schema returns the schema the document was built against, or nil.
func (d *Document) Schema() *schema.Schema { return d.schema }

// Refs exposes the document's reference graph. Callers must treat it as
// read-only; mutation goes through the document APIs.
func (d *Document) Refs() *ReferenceGraph { return d.refs }

// Collection returns the collection for typ, creating it when absent.
// Type lookup is case-insensitive; the declared casing of the first
// access (or the schema's, when known) is kept for display.
func (d *Document) Collection(typ string) *Collection {
	key := strings.ToLower(typ)
	if c, ok := d.collections[key]; ok {
		return c
	}
	display := typ
	if d.schema != nil {
		if def := d.schema.Type(typ); def != nil {
			display = def.Name
		}
	}
	c := newCollection(display, d)
	d.collections[key] = c
	d.typeOrder = append(d.typeOrder, key)
	return c
}

// TypeNames lists the types holding at least one object, in first-insert
// order.
func (d *Document) TypeNames() []string {
	var out []string
	for _, key := range d.typeOrder {
		if c := d.collections[key]; c.Len() > 0 {
			out = append(out, c.typ)
		}
	}
	return out
}

// Add constructs an object from the given field values, fills schema
// defaults for declared fields that were not supplied, registers its
// reference fields, and inserts it. A non-empty name that is already
// taken fails with DuplicateObjectError.
func (d *Document) Add(typ, name string, fields map[string]any) (*Object, error) {
	obj := NewObject(typ, name, d.typeDef(typ))
	if obj.def != nil {
		for i := range obj.def.Fields {
			f := &obj.def.Fields[i]
			key := strings.ToLower(f.Name)
			obj.fields[key] = f.Default
			obj.order = append(obj.order, key)
		}
	}
	// undeclared keys append in sorted order so FieldOrder is stable
	keys := make([]string, 0, len(fields))
	vals := make(map[string]any, len(fields))
	for k, v := range fields {
		key := strings.ToLower(k)
		vals[key] = v
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, declared := obj.fields[key]; !declared {
			obj.order = append(obj.order, key)
		}
		obj.fields[key] = vals[key]
	}
	return obj, d.Insert(obj)
}

// Insert attaches a constructed object with full validation.
func (d *Document) Insert(obj *Object) error {
	if err := d.Collection(obj.typ).insert(obj, true); err != nil {
		return err
	}
	d.registerReferences(obj)
	return nil
}

// InsertRaw is the bulk-load path used by parsers: duplicate-name
// validation is skipped in favor of raw source fidelity, but reference
// fields are still registered.
func (d *Document) InsertRaw(obj *Object) {
	_ = d.Collection(obj.typ).insert(obj, false)
	d.registerReferences(obj)
}

// Remove detaches the object from its collection and unregisters all of
// its outgoing references.
func (d *Document) Remove(obj *Object) error {
	key := strings.ToLower(obj.typ)
	c, ok := d.collections[key]
	if !ok || !c.remove(obj) {
		return &NotFoundError{Type: obj.typ, Name: obj.name}
	}
	d.refs.Unregister(obj)
	return nil
}

// Rename gives the named object a new name and atomically propagates it:
// the collection's name index, every reference field pointing at the old
// name, and the reference graph's backward index all move together. No
// intermediate state is observable; validation happens before the first
// mutation.
func (d *Document) Rename(typ, oldName, newName string) error {
	c := d.Collection(typ)
	obj, ok := c.Get(oldName)
	if !ok {
		return &NotFoundError{Type: typ, Name: oldName}
	}
	if newName == "" {
		return fmt.Errorf("epdoc: rename %s %q: new name must not be empty", typ, oldName)
	}
	// a case-only rename resolves to the object itself, never a collision
	if cur, taken := c.Get(newName); taken && cur != obj {
		return &DuplicateObjectError{Type: typ, Name: newName}
	}
	for _, ref := range d.refs.Referencing(oldName) {
		for _, field := range d.refs.FieldsReferencing(ref, oldName) {
			ref.fields[field] = newName
			ref.memo = nil
		}
	}
	c.reindex(obj, oldName, newName)
	obj.name = newName
	obj.memo = nil
	d.refs.RenameTarget(oldName, newName)
	return nil
}

// Copy deep-copies an object's field data into a new object named
// newName and inserts it. When newName is empty and the source is named,
// the copy would collide with its source, so it fails with
// DuplicateObjectError up front.
func (d *Document) Copy(obj *Object, newName string) (*Object, error) {
	if newName == "" && obj.name != "" {
		return nil, &DuplicateObjectError{Type: obj.typ, Name: obj.name}
	}
	c := obj.clone(newName)
	if err := d.Insert(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Referencing returns every object holding a reference field that names
// target, case-insensitively.
func (d *Document) Referencing(target string) []*Object {
	return d.refs.Referencing(target)
}

// AllObjects iterates every object across every collection, type order
// then insertion order. The sequence is lazy and restartable.
func (d *Document) AllObjects() iter.Seq[*Object] {
	return func(yield func(*Object) bool) {
		for _, key := range d.typeOrder {
			for _, obj := range d.collections[key].objects {
				if !yield(obj) {
					return
				}
			}
		}
	}
}

// ValidNames collects the lower-cased non-empty names of every object,
// the valid-target set for dangling-reference queries.
func (d *Document) ValidNames() map[string]struct{} {
	out := map[string]struct{}{}
	for obj := range d.AllObjects() {
		if obj.name != "" {
			out[strings.ToLower(obj.name)] = struct{}{}
		}
	}
	return out
}

// DanglingReferences reports every reference whose target names no
// object in the document. Mutation never checks referential integrity
// eagerly; this explicit pass is the only place it surfaces.
func (d *Document) DanglingReferences() []Reference {
	return d.refs.Dangling(d.ValidNames())
}

// Check runs the explicit validation pass: dangling references plus
// missing required fields on schema-covered objects.
func (d *Document) Check() Issues {
	var iss Issues
	for _, ref := range d.DanglingReferences() {
		iss = append(iss, Issue{
			Path:    issuePath(ref.Object, ref.Field),
			Code:    CodeDanglingReference,
			Message: fmt.Sprintf("reference to %q has no target object", ref.Target),
		})
	}
	for obj := range d.AllObjects() {
		if obj.def == nil {
			continue
		}
		for i := range obj.def.Fields {
			f := &obj.def.Fields[i]
			if !f.Required {
				continue
			}
			if v, ok := obj.Get(f.Name); !ok || v == nil || v == "" {
				iss = append(iss, Issue{
					Path:    issuePath(obj, strings.ToLower(f.Name)),
					Code:    CodeMissingRequired,
					Message: fmt.Sprintf("required field %s is empty", f.Name),
				})
			}
		}
	}
	return iss
}

func (d *Document) typeDef(typ string) *schema.TypeDef {
	if d.schema == nil {
		return nil
	}
	return d.schema.Type(typ)
}

func (d *Document) registerReferences(obj *Object) {
	if obj.def == nil {
		return
	}
	for _, key := range obj.order {
		f, ok := obj.def.Field(key)
		if !ok || !f.IsReference() {
			continue
		}
		if target, _ := obj.fields[key].(string); target != "" {
			d.refs.Register(obj, key, target)
		}
	}
}

func issuePath(obj *Object, field string) string {
	return obj.Type() + "/" + obj.Name() + "/" + field
}
