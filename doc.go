// Package epdoc models EnergyPlus input files as an in-memory,
// schema-validated object graph.
//
// It provides:
//
//   - A Document / Collection / Object model with case-insensitive name
//     indexing and validated add/remove/rename/copy operations
//   - A bidirectional ReferenceGraph kept consistent through every
//     document mutation, with rename propagation and dangling-reference
//     queries
//   - A stable issue model (Issues) for validation reports
//
// Design policy:
//   - Keep only the object-graph API in the root package; parsing and
//     serialization live under idf/ and epjson/, schema metadata under
//     schema/, schedule evaluation under schedule/, and the CLI under
//     cmd/epdoc.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := idf.Parse(data)
//	zone, _ := doc.Collection("Zone").Get("Core Zone")
//	err = doc.Rename("Zone", "Core Zone", "Core Zone East")
//	text, err := idf.Write(doc)
package epdoc
