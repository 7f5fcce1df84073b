package epdoc

import "strings"

// Collection is the ordered set of all objects of one type in a
// document, with a case-insensitive index over non-empty names. Any
// number of unnamed objects may coexist; a non-empty name has at most
// one occupant.
type Collection struct {
	typ     string
	doc     *Document
	objects []*Object
	byName  map[string]*Object
}

func newCollection(typ string, doc *Document) *Collection {
	return &Collection{typ: typ, doc: doc, byName: map[string]*Object{}}
}

// Type returns the object-type name the collection holds.
func (c *Collection) Type() string { return c.typ }

// Len reports the number of objects, unnamed ones included.
func (c *Collection) Len() int { return len(c.objects) }

// At returns the object at insertion-order position i.
func (c *Collection) At(i int) *Object { return c.objects[i] }

// Objects returns a copy of the insertion-ordered object slice.
func (c *Collection) Objects() []*Object {
	return append([]*Object(nil), c.objects...)
}

// Get resolves a non-empty name case-insensitively.
func (c *Collection) Get(name string) (*Object, bool) {
	if name == "" {
		return nil, false
	}
	o, ok := c.byName[strings.ToLower(name)]
	return o, ok
}

// Names lists the indexed (non-empty) names in insertion order.
func (c *Collection) Names() []string {
	var out []string
	for _, o := range c.objects {
		if o.name != "" {
			out = append(out, o.name)
		}
	}
	return out
}

// insert appends an object. With validate set, a non-empty name that is
// already occupied fails with DuplicateObjectError. Without it (bulk
// load), the object is always appended and the first occupant keeps the
// index slot, preserving raw source fidelity.
func (c *Collection) insert(o *Object, validate bool) error {
	if o.name != "" {
		key := strings.ToLower(o.name)
		if _, taken := c.byName[key]; taken {
			if validate {
				return &DuplicateObjectError{Type: c.typ, Name: o.name}
			}
		} else {
			c.byName[key] = o
		}
	}
	c.objects = append(c.objects, o)
	o.doc = c.doc
	return nil
}

// remove drops the object from the slice and, when it occupies its name
// index slot, from the index. A bulk-loaded duplicate of the same name,
// if any remains, takes over the freed slot.
func (c *Collection) remove(o *Object) bool {
	for i, cur := range c.objects {
		if cur == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			if o.name != "" {
				key := strings.ToLower(o.name)
				if c.byName[key] == o {
					delete(c.byName, key)
					for _, cand := range c.objects {
						if cand.name != "" && strings.ToLower(cand.name) == key {
							c.byName[key] = cand
							break
						}
					}
				}
			}
			o.doc = nil
			return true
		}
	}
	return false
}

// reindex moves an object's index entry from old to new. The caller has
// already checked the new slot is free.
func (c *Collection) reindex(o *Object, old, new string) {
	if old != "" {
		key := strings.ToLower(old)
		if c.byName[key] == o {
			delete(c.byName, key)
		}
	}
	if new != "" {
		c.byName[strings.ToLower(new)] = o
	}
}
