package idf_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/epjson"
	"github.com/buildsim/epdoc/idf"
	"github.com/buildsim/epdoc/schema"
)

const sampleIDF = `
! Whole-building example; exercises comments, wrapping and extensibles.
Version,24.1;

Timestep,4;

SimulationControl,
    No,                              !- Do Zone Sizing Calculation
    No,                              !- Do System Sizing Calculation
    No,                              !- Do Plant Sizing Calculation
    Yes,                             !- Run Simulation For Sizing Periods
    Yes;                             !- Run Simulation For Weather File Run Periods

Zone,
    Core Zone,                       !- Name
    0,                               !- Direction of Relative North
    0, 0, 0,                         !- Origins
    1,                               !- Type
    1;                               !- Multiplier

Material,
    Insulation Board,                !- Name
    MediumRough,                     !- Roughness
    Autosize,                        !- Thickness
    0.03,                            !- Conductivity
    43,                              !- Density
    1210;                            !- Specific Heat

Construction,
    Wall Construction,               !- Name
    Insulation Board;                !- Outside Layer

BuildingSurface:Detailed,
    South Wall,                      !- Name
    Wall,                            !- Surface Type
    Wall Construction,               !- Construction Name
    Core Zone,                       !- Zone Name
    ,                                !- Space Name
    Outdoors,                        !- Outside Boundary Condition
    ,                                !- Outside Boundary Condition Object
    SunExposed,                      !- Sun Exposure
    WindExposed,                     !- Wind Exposure
    ,                                !- View Factor to Ground
    4,                               !- Number of Vertices
    0, 0, 3,                         !- Vertex 1
    0, 0, 0,                         !- Vertex 2
    10, 0, 0,                        !- Vertex 3
    10, 0, 3;                        !- Vertex 4

Output:Variable,*,Zone Mean Air Temperature,Hourly;
Output:Variable,*,Zone Air Relative Humidity,Hourly;
`

func TestParse_Sample(t *testing.T) {
	doc, err := idf.Parse([]byte(sampleIDF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Version != (schema.Version{Major: 24, Minor: 1}) {
		t.Fatalf("version: %v", doc.Version)
	}

	for typ, want := range map[string]int{
		"Version": 1, "Timestep": 1, "SimulationControl": 1, "Zone": 1,
		"Material": 1, "Construction": 1, "BuildingSurface:Detailed": 1,
		"Output:Variable": 2,
	} {
		if got := doc.Collection(typ).Len(); got != want {
			t.Fatalf("%s: got %d objects, want %d", typ, got, want)
		}
	}
}

func TestParse_NamelessObjectsKeepValuesAsFields(t *testing.T) {
	doc, err := idf.Parse([]byte(sampleIDF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ts := doc.Collection("Timestep").At(0)
	if ts.Name() != "" {
		t.Fatalf("Timestep must be nameless, got name %q", ts.Name())
	}
	if v, ok := ts.GetNumber("number_of_timesteps_per_hour"); !ok || v != 4 {
		t.Fatalf("Timestep value misplaced: %v (ok=%v)", v, ok)
	}
	sc := doc.Collection("SimulationControl").At(0)
	if sc.Name() != "" || sc.GetString("do_zone_sizing_calculation") != "No" {
		t.Fatalf("SimulationControl first value misread as a name")
	}
}

func TestParse_ExtensibleAndEmptyFields(t *testing.T) {
	doc, _ := idf.Parse([]byte(sampleIDF))
	surf := doc.Collection("BuildingSurface:Detailed").At(0)

	// deliberately empty mid-stream fields must stay, not shift later ones
	if v, ok := surf.Get("space_name"); !ok || v != "" {
		t.Fatalf("empty field dropped: %v ok=%v", v, ok)
	}
	if got := surf.GetString("sun_exposure"); got != "SunExposed" {
		t.Fatalf("field shifted: sun_exposure = %q", got)
	}
	for key, want := range map[string]float64{
		"vertex_x_coordinate":   0,
		"vertex_z_coordinate":   3,
		"vertex_x_coordinate_3": 10,
		"vertex_z_coordinate_4": 3,
	} {
		if v, ok := surf.GetNumber(key); !ok || v != want {
			t.Fatalf("%s = %v (ok=%v), want %v", key, v, ok, want)
		}
	}
}

func TestParse_SentinelCasingPreserved(t *testing.T) {
	doc, _ := idf.Parse([]byte(sampleIDF))
	mat := doc.Collection("Material").At(0)
	if got := mat.GetString("thickness"); got != "Autosize" {
		t.Fatalf("sentinel casing lost: %q", got)
	}
}

func TestParse_RegistersReferences(t *testing.T) {
	doc, _ := idf.Parse([]byte(sampleIDF))
	refs := doc.Referencing("Core Zone")
	if len(refs) != 1 || refs[0].Type() != "BuildingSurface:Detailed" {
		t.Fatalf("zone reference not registered: %v", refs)
	}
	if got := doc.Referencing("Insulation Board"); len(got) != 1 {
		t.Fatalf("construction layer reference not registered: %v", got)
	}
}

func TestParse_DuplicateUnnamedObjectsCoexist(t *testing.T) {
	doc, _ := idf.Parse([]byte(sampleIDF))
	col := doc.Collection("Output:Variable")
	if col.Len() != 2 {
		t.Fatalf("expected 2 Output:Variable objects, got %d", col.Len())
	}
	a := col.At(0).GetString("variable_name")
	b := col.At(1).GetString("variable_name")
	if a != "Zone Mean Air Temperature" || b != "Zone Air Relative Humidity" {
		t.Fatalf("unnamed objects collapsed: %q / %q", a, b)
	}
}

func TestParse_CommentsNeverBecomeObjects(t *testing.T) {
	src := "! Zone, Phantom;\nVersion,24.1;\n!- another comment, with; delimiters\n"
	doc, err := idf.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Collection("Zone").Len(); got != 0 {
		t.Fatalf("comment text produced %d phantom objects", got)
	}
}

func TestParse_VersionRequired(t *testing.T) {
	_, err := idf.Parse([]byte("Timestep,4;\n"))
	if !errors.Is(err, epdoc.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := idf.Parse([]byte(sampleIDF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	text := idf.Write(doc)
	doc2, err := idf.Parse([]byte(text))
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, text)
	}
	assertEqualDocuments(t, doc, doc2)
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

func TestRoundTripThroughJSON(t *testing.T) {
	doc, err := idf.Parse([]byte(sampleIDF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := epjson.Write(doc)
	if err != nil {
		t.Fatalf("write json: %v", err)
	}
	mid, err := epjson.Parse(data)
	if err != nil {
		t.Fatalf("parse json: %v\n%s", err, data)
	}
	text := idf.Write(mid)
	doc2, err := idf.Parse([]byte(text))
	if err != nil {
		t.Fatalf("reparse idf: %v\n%s", err, text)
	}
	assertEqualDocuments(t, doc, doc2)
}

func TestParse_UnterminatedObjectWarns(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	doc, err := idf.Parse([]byte("Version,24.1;\nZone,\n    Dangling"), idf.Option{Logger: &log})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Collection("Zone").Len(); got != 0 {
		t.Fatalf("unterminated body produced %d objects", got)
	}
	if !strings.Contains(buf.String(), "unterminated") {
		t.Fatalf("expected an unterminated-object warning, log: %s", buf.String())
	}
}

func TestWrite_FieldComments(t *testing.T) {
	doc, _ := idf.Parse([]byte(sampleIDF))
	text := idf.Write(doc)
	if !strings.Contains(text, "!- Zone Name") {
		t.Fatalf("missing field comment in output:\n%s", text)
	}
	if !strings.Contains(text, "!- Name") {
		t.Fatalf("missing name comment in output")
	}
}

func TestSchemaIsolation(t *testing.T) {
	s, err := schema.Get(schema.Version{Major: 24, Minor: 1})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	before := s.FieldNames("BuildingSurface:Detailed")

	for i := 0; i < 3; i++ {
		if _, err := idf.Parse([]byte(sampleIDF)); err != nil {
			t.Fatalf("parse %d: %v", i, err)
		}
	}

	after := s.FieldNames("BuildingSurface:Detailed")
	if len(before) != len(after) {
		t.Fatalf("schema field list mutated by parsing: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("schema field %d mutated: %q -> %q", i, before[i], after[i])
		}
	}
}
