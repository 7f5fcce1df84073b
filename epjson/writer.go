package epjson

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/fsio"
)

// canonical casing for boolean-like sentinel tokens, applied on write.
var canonicalTokens = map[string]string{
	"yes":           "Yes",
	"no":            "No",
	"autosize":      "Autosize",
	"autocalculate": "Autocalculate",
}

// Write serializes the document as indented epJSON. Named objects use
// their name as the instance key; nameless objects get a generated
// "<Type> <n>" placeholder key, which the parser discards on the way
// back in, so the round trip never invents a name.
func Write(doc *epdoc.Document) ([]byte, error) {
	top := map[string]any{}
	for _, typ := range doc.TypeNames() {
		col := doc.Collection(typ)
		instances := map[string]any{}
		n := 0
		for _, obj := range col.Objects() {
			key := obj.Name()
			if key == "" {
				n++
				key = fmt.Sprintf("%s %d", typ, n)
			}
			instances[key] = objectFields(obj)
		}
		top[typ] = instances
	}
	return json.MarshalIndent(top, "", "    ")
}

// WriteTo serializes the document and stores it at path through the
// given file system.
func WriteTo(doc *epdoc.Document, path string, fs fsio.FileSystem) error {
	data, err := Write(doc)
	if err != nil {
		return err
	}
	return fs.WriteBytes(path, data)
}

func objectFields(obj *epdoc.Object) map[string]any {
	out := map[string]any{}
	for _, key := range obj.FieldOrder() {
		v, _ := obj.Get(key)
		if s, ok := v.(string); ok {
			if canon, ok := canonicalTokens[strings.ToLower(s)]; ok {
				v = canon
			}
		}
		out[key] = v
	}
	return out
}
