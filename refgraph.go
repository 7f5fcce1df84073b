package epdoc

import "strings"

// Reference is one registered (object, field, target-name) edge.
type Reference struct {
	Object *Object
	Field  string
	Target string
}

type fieldTarget struct {
	field  string // canonical lower-case field key
	target string // original casing, for reporting
}

// ReferenceGraph is a bidirectional index over name references: forward
// from an object to the (field, target) pairs it declares, backward from
// a case-insensitive target name to the set of referencing objects. The
// two directions are kept mutually consistent by every operation, and an
// empty target name is never registered in either.
type ReferenceGraph struct {
	forward  map[*Object]map[fieldTarget]struct{}
	backward map[string]map[*Object]struct{}
}

// NewReferenceGraph returns an empty graph.
func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{
		forward:  map[*Object]map[fieldTarget]struct{}{},
		backward: map[string]map[*Object]struct{}{},
	}
}

// Register records that obj's field points at target. Empty targets are
// ignored.
func (g *ReferenceGraph) Register(obj *Object, field, target string) {
	if target == "" || obj == nil {
		return
	}
	ft := fieldTarget{field: strings.ToLower(field), target: target}
	fw := g.forward[obj]
	if fw == nil {
		fw = map[fieldTarget]struct{}{}
		g.forward[obj] = fw
	}
	fw[ft] = struct{}{}
	key := strings.ToLower(target)
	bw := g.backward[key]
	if bw == nil {
		bw = map[*Object]struct{}{}
		g.backward[key] = bw
	}
	bw[obj] = struct{}{}
}

// Unregister removes every edge that starts at obj.
func (g *ReferenceGraph) Unregister(obj *Object) {
	fw, ok := g.forward[obj]
	if !ok {
		return
	}
	for ft := range fw {
		g.dropBackward(ft.target, obj)
	}
	delete(g.forward, obj)
}

// UpdateReference atomically replaces one field's edge: the old target
// is unregistered and the new one registered. Either side may be empty.
func (g *ReferenceGraph) UpdateReference(obj *Object, field, oldTarget, newTarget string) {
	key := strings.ToLower(field)
	if oldTarget != "" {
		ft := fieldTarget{field: key, target: oldTarget}
		if fw, ok := g.forward[obj]; ok {
			if _, ok := fw[ft]; ok {
				delete(fw, ft)
				if len(fw) == 0 {
					delete(g.forward, obj)
				}
				if !g.stillReferences(obj, oldTarget) {
					g.dropBackward(oldTarget, obj)
				}
			}
		}
	}
	g.Register(obj, field, newTarget)
}

// Referencing returns the objects holding at least one edge to target,
// case-insensitively. Order is unspecified.
func (g *ReferenceGraph) Referencing(target string) []*Object {
	bw := g.backward[strings.ToLower(target)]
	if len(bw) == 0 {
		return nil
	}
	out := make([]*Object, 0, len(bw))
	for o := range bw {
		out = append(out, o)
	}
	return out
}

// FieldsReferencing lists obj's field keys that point at target. Used by
// rename propagation to know exactly which values to rewrite.
func (g *ReferenceGraph) FieldsReferencing(obj *Object, target string) []string {
	key := strings.ToLower(target)
	var out []string
	for ft := range g.forward[obj] {
		if strings.ToLower(ft.target) == key {
			out = append(out, ft.field)
		}
	}
	return out
}

// RenameTarget rewrites every edge whose target is old (case-insensitive)
// to point at new instead, merging with any edges already held under new.
// A case-only change keeps the backward key but still recases the stored
// forward targets. A no-op when old has no edges or the names are
// identical.
func (g *ReferenceGraph) RenameTarget(old, new string) {
	oldKey, newKey := strings.ToLower(old), strings.ToLower(new)
	if old == new {
		return
	}
	if oldKey == newKey {
		for obj := range g.backward[oldKey] {
			fw := g.forward[obj]
			for ft := range fw {
				if strings.ToLower(ft.target) == oldKey && ft.target != new {
					delete(fw, ft)
					fw[fieldTarget{field: ft.field, target: new}] = struct{}{}
				}
			}
		}
		return
	}
	bw, ok := g.backward[oldKey]
	if !ok {
		return
	}
	delete(g.backward, oldKey)
	dst := g.backward[newKey]
	if dst == nil {
		dst = map[*Object]struct{}{}
		g.backward[newKey] = dst
	}
	for obj := range bw {
		dst[obj] = struct{}{}
		fw := g.forward[obj]
		for ft := range fw {
			if strings.ToLower(ft.target) == oldKey {
				delete(fw, ft)
				fw[fieldTarget{field: ft.field, target: new}] = struct{}{}
			}
		}
	}
}

// Dangling reports every registered edge whose target is absent from
// valid, a set of lower-cased currently valid names. Enumeration order
// is unspecified; completeness and case-insensitivity are the contract.
func (g *ReferenceGraph) Dangling(valid map[string]struct{}) []Reference {
	var out []Reference
	for obj, fw := range g.forward {
		for ft := range fw {
			if _, ok := valid[strings.ToLower(ft.target)]; !ok {
				out = append(out, Reference{Object: obj, Field: ft.field, Target: ft.target})
			}
		}
	}
	return out
}

func (g *ReferenceGraph) stillReferences(obj *Object, target string) bool {
	key := strings.ToLower(target)
	for ft := range g.forward[obj] {
		if strings.ToLower(ft.target) == key {
			return true
		}
	}
	return false
}

func (g *ReferenceGraph) dropBackward(target string, obj *Object) {
	key := strings.ToLower(target)
	if bw, ok := g.backward[key]; ok {
		delete(bw, obj)
		if len(bw) == 0 {
			delete(g.backward, key)
		}
	}
}
