package epjson_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/epjson"
	"github.com/buildsim/epdoc/idf"
	"github.com/buildsim/epdoc/schema"
)

const sampleJSON = `{
    "Version": {"Version 1": {"version_identifier": "24.1"}},
    "Timestep": {"Timestep 1": {"number_of_timesteps_per_hour": 6}},
    "Zone": {
        "Core Zone": {"x_origin": 1.5, "multiplier": 2}
    },
    "Lights": {
        "Core Lights": {
            "zone_or_zonelist_name": "Core Zone",
            "schedule_name": "Office Lighting",
            "design_level_calculation_method": "LightingLevel",
            "lighting_level": 1200,
            "return_air_fraction": true
        }
    },
    "Material": {
        "Insulation Board": {"roughness": "MediumRough", "thickness": "autosize"}
    }
}`

func TestParse_Sample(t *testing.T) {
	doc, err := epjson.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Version != (schema.Version{Major: 24, Minor: 1}) {
		t.Fatalf("version: %v", doc.Version)
	}
	zone, ok := doc.Collection("Zone").Get("core zone")
	if !ok {
		t.Fatalf("zone missing")
	}
	if v, ok := zone.GetNumber("x_origin"); !ok || v != 1.5 {
		t.Fatalf("x_origin = %v (ok=%v)", v, ok)
	}
	// integer-typed fields land as ints, matching the text parser
	if v, ok := zone.Get("multiplier"); !ok || v != 2 {
		t.Fatalf("multiplier = %v (%T)", v, v)
	}
}

func TestParse_PlaceholderKeysNeverBecomeNames(t *testing.T) {
	doc, err := epjson.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ts := doc.Collection("Timestep").At(0)
	if ts.Name() != "" {
		t.Fatalf("placeholder key stored as name: %q", ts.Name())
	}
	if v, ok := ts.GetNumber("number_of_timesteps_per_hour"); !ok || v != 6 {
		t.Fatalf("timestep value: %v (ok=%v)", v, ok)
	}
}

func TestParse_BooleanFields(t *testing.T) {
	doc, _ := epjson.Parse([]byte(sampleJSON))
	lights, _ := doc.Collection("Lights").Get("Core Lights")
	if got := lights.GetString("return_air_fraction"); got != "Yes" {
		t.Fatalf("bool not mapped: %q", got)
	}
}

func TestParse_RegistersReferences(t *testing.T) {
	doc, _ := epjson.Parse([]byte(sampleJSON))
	refs := doc.Referencing("Core Zone")
	if len(refs) != 1 || refs[0].Type() != "Lights" {
		t.Fatalf("zone reference not registered: %v", refs)
	}
	// schedule target does not exist, so it must show up as dangling
	var sawSchedule bool
	for _, d := range doc.DanglingReferences() {
		if d.Target == "Office Lighting" {
			sawSchedule = true
		}
	}
	if !sawSchedule {
		t.Fatalf("dangling schedule reference not reported")
	}
}

func TestParse_VersionRequired(t *testing.T) {
	_, err := epjson.Parse([]byte(`{"Zone": {"A": {}}}`))
	if !errors.Is(err, epdoc.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestWrite_CanonicalSentinels(t *testing.T) {
	doc, _ := epjson.Parse([]byte(sampleJSON))
	out, err := epjson.Write(doc)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	var top map[string]map[string]map[string]any
	if err := json.Unmarshal(out, &top); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := top["Material"]["Insulation Board"]["thickness"]; got != "Autosize" {
		t.Fatalf("sentinel not canonicalized: %v", got)
	}
	if got := top["Lights"]["Core Lights"]["return_air_fraction"]; got != "Yes" {
		t.Fatalf("boolean token wrong: %v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := epjson.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := epjson.Write(doc)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	doc2, err := epjson.Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}
	// the first write canonicalizes sentinel casing ("autosize" ->
	// "Autosize"); from then on the round trip must be a fixed point
	out2, err := epjson.Write(doc2)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	doc3, err := epjson.Parse(out2)
	if err != nil {
		t.Fatalf("second reparse: %v\n%s", err, out2)
	}
	assertEqualDocuments(t, doc2, doc3)

	// apart from that canonicalization, no field value drifts on pass one
	for _, typ := range doc.TypeNames() {
		ca, cb := doc.Collection(typ), doc2.Collection(typ)
		if ca.Len() != cb.Len() {
			t.Fatalf("%s: %d vs %d objects after round trip", typ, ca.Len(), cb.Len())
		}
		for i := 0; i < ca.Len(); i++ {
			oa, ob := ca.At(i), cb.At(i)
			if oa.Name() != ob.Name() || oa.Len() != ob.Len() {
				t.Fatalf("%s[%d]: shape changed on round trip", typ, i)
			}
		}
	}
	// the placeholder key for the nameless Timestep must be discarded again
	if got := doc2.Collection("Timestep").At(0).Name(); got != "" {
		t.Fatalf("round trip invented a name: %q", got)
	}
}

// assertEqualDocuments compares per-type object counts, names and every
// field value.
func assertEqualDocuments(t *testing.T, a, b *epdoc.Document) {
	t.Helper()
	types := a.TypeNames()
	if got := b.TypeNames(); len(got) != len(types) {
		t.Fatalf("type sets differ: %v vs %v", types, got)
	}
	for _, typ := range types {
		ca, cb := a.Collection(typ), b.Collection(typ)
		if ca.Len() != cb.Len() {
			t.Fatalf("%s: %d vs %d objects", typ, ca.Len(), cb.Len())
		}
		for i := 0; i < ca.Len(); i++ {
			oa, ob := ca.At(i), cb.At(i)
			if oa.Name() != ob.Name() {
				t.Fatalf("%s[%d]: name %q vs %q", typ, i, oa.Name(), ob.Name())
			}
			for _, key := range oa.FieldOrder() {
				va, _ := oa.Get(key)
				vb, ok := ob.Get(key)
				if !ok || va != vb {
					t.Fatalf("%s %q field %s: %v vs %v (ok=%v)", typ, oa.Name(), key, va, vb, ok)
				}
			}
			if oa.Len() != ob.Len() {
				t.Fatalf("%s %q: field count %d vs %d", typ, oa.Name(), oa.Len(), ob.Len())
			}
		}
	}
}

func TestCrossFormat(t *testing.T) {
	doc, err := epjson.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	text := idf.Write(doc)
	doc2, err := idf.Parse([]byte(text))
	if err != nil {
		t.Fatalf("parse idf: %v\n%s", err, text)
	}

	lights, ok := doc2.Collection("Lights").Get("Core Lights")
	if !ok {
		t.Fatalf("object lost crossing formats")
	}
	if got := lights.GetString("zone_or_zonelist_name"); got != "Core Zone" {
		t.Fatalf("field lost crossing formats: %q", got)
	}
	if v, ok := lights.GetNumber("lighting_level"); !ok || v != 1200 {
		t.Fatalf("numeric field lost crossing formats: %v", v)
	}
	if got := doc2.Collection("Timestep").At(0).Name(); got != "" {
		t.Fatalf("nameless object gained a name crossing formats: %q", got)
	}
}
