package idf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/fsio"
)

// Write serializes the document back to IDF text. Fields appear in
// schema-declared order, falling back to each object's stored order when
// no schema covers its type, with a trailing inline comment naming every
// field. Re-parsing the output reproduces the same objects, values and
// names, deliberately empty fields included.
func Write(doc *epdoc.Document) string {
	var b strings.Builder
	for _, typ := range doc.TypeNames() {
		for _, obj := range doc.Collection(typ).Objects() {
			writeObject(&b, obj)
		}
	}
	return b.String()
}

// WriteTo serializes the document and stores it at path through the
// given file system.
func WriteTo(doc *epdoc.Document, path string, fs fsio.FileSystem) error {
	return fs.WriteText(path, Write(doc))
}

func writeObject(b *strings.Builder, obj *epdoc.Object) {
	keys := orderedFields(obj)

	type row struct{ value, label string }
	var rows []row
	if obj.Def() != nil && obj.Def().HasName {
		rows = append(rows, row{obj.Name(), "Name"})
	}
	for _, key := range keys {
		v, _ := obj.Get(key)
		rows = append(rows, row{epdoc.FormatValue(v), fieldLabel(key)})
	}

	fmt.Fprintf(b, "%s,\n", obj.Type())
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ";"
		}
		cell := "    " + r.value + sep
		if pad := 33 - len(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		} else {
			cell += "  "
		}
		fmt.Fprintf(b, "%s!- %s\n", cell, r.label)
	}
	b.WriteString("\n")
}

// orderedFields returns the object's field keys sorted into schema
// positional order; keys the schema does not know keep their stored
// relative order after the known ones.
func orderedFields(obj *epdoc.Object) []string {
	keys := obj.FieldOrder()
	def := obj.Def()
	if def == nil {
		return keys
	}
	const unknown = 1 << 30
	pos := func(key string) int {
		if p, ok := def.FieldPosition(key); ok {
			return p
		}
		return unknown
	}
	sort.SliceStable(keys, func(i, j int) bool { return pos(keys[i]) < pos(keys[j]) })
	return keys
}

// fieldLabel renders a canonical field key as its display label:
// "zone_name" becomes "Zone Name".
func fieldLabel(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
