package epdoc_test

import (
	"testing"

	"github.com/buildsim/epdoc"
)

func TestReferenceGraph_RegisterAndQuery(t *testing.T) {
	g := epdoc.NewReferenceGraph()
	a := epdoc.NewObject("Lights", "L1", nil)
	b := epdoc.NewObject("People", "P1", nil)

	g.Register(a, "schedule_name", "Office Sched")
	g.Register(b, "number_of_people_schedule_name", "office sched")
	g.Register(a, "zone_or_zonelist_name", "") // empty targets never register

	refs := g.Referencing("OFFICE SCHED")
	if len(refs) != 2 {
		t.Fatalf("expected 2 case-insensitive referencers, got %d", len(refs))
	}
	if got := g.Referencing(""); len(got) != 0 {
		t.Fatalf("empty target should have no entries: %v", got)
	}
}

func TestReferenceGraph_Unregister(t *testing.T) {
	g := epdoc.NewReferenceGraph()
	a := epdoc.NewObject("Lights", "L1", nil)
	g.Register(a, "schedule_name", "S")
	g.Register(a, "zone_or_zonelist_name", "Z")

	g.Unregister(a)
	if len(g.Referencing("S"))+len(g.Referencing("Z")) != 0 {
		t.Fatalf("edges survive unregister")
	}
	if got := g.Dangling(map[string]struct{}{}); len(got) != 0 {
		t.Fatalf("forward entries survive unregister: %v", got)
	}
}

func TestReferenceGraph_UpdateReference(t *testing.T) {
	g := epdoc.NewReferenceGraph()
	a := epdoc.NewObject("Lights", "L1", nil)
	g.Register(a, "schedule_name", "Old")

	g.UpdateReference(a, "schedule_name", "Old", "New")
	if len(g.Referencing("Old")) != 0 {
		t.Fatalf("old edge survives update")
	}
	if len(g.Referencing("New")) != 1 {
		t.Fatalf("new edge missing")
	}

	// either side may be empty
	g.UpdateReference(a, "schedule_name", "New", "")
	if len(g.Referencing("New")) != 0 {
		t.Fatalf("clearing a reference left an edge")
	}
	g.UpdateReference(a, "schedule_name", "", "Again")
	if len(g.Referencing("Again")) != 1 {
		t.Fatalf("setting from empty failed")
	}
}

func TestReferenceGraph_RenameTargetMerges(t *testing.T) {
	g := epdoc.NewReferenceGraph()
	a := epdoc.NewObject("Lights", "L1", nil)
	b := epdoc.NewObject("People", "P1", nil)
	g.Register(a, "schedule_name", "Old")
	g.Register(b, "number_of_people_schedule_name", "New")

	g.RenameTarget("Old", "New")
	if got := g.Referencing("New"); len(got) != 2 {
		t.Fatalf("expected merged backward entries, got %d", len(got))
	}
	if len(g.Referencing("Old")) != 0 {
		t.Fatalf("old entries survive rename")
	}

	// forward side must follow so dangling queries see the new name
	valid := map[string]struct{}{"new": {}}
	if got := g.Dangling(valid); len(got) != 0 {
		t.Fatalf("forward targets not rewritten: %v", got)
	}

	// no-ops
	g.RenameTarget("Absent", "Whatever")
	g.RenameTarget("New", "New")
	if got := g.Referencing("New"); len(got) != 2 {
		t.Fatalf("no-op renames disturbed the index: %d", len(got))
	}
}

func TestReferenceGraph_Dangling(t *testing.T) {
	g := epdoc.NewReferenceGraph()
	a := epdoc.NewObject("BuildingSurface:Detailed", "Wall", nil)
	g.Register(a, "zone_name", "Ghost")
	g.Register(a, "construction_name", "Real")

	got := g.Dangling(map[string]struct{}{"real": {}})
	if len(got) != 1 {
		t.Fatalf("expected one dangling edge, got %v", got)
	}
	if got[0].Target != "Ghost" || got[0].Field != "zone_name" {
		t.Fatalf("unexpected tuple: %+v", got[0])
	}
}
