package report

import (
	"encoding/json"
	"io"

	"github.com/dumpscan/dumpscan/internal/model"
)

// ExportSchema reshapes the record-store analysis into a normalized schema
// document: "db_<database>" -> store -> {type, properties, metadata}.
//
// This is pure reshaping of analyzer output; no new inference happens
// here. An analysis without an indexeddb section yields an empty document.
func ExportSchema(analysis *model.Analysis) model.SchemaDocument {
	schemas := make(model.SchemaDocument, len(analysis.IndexedDB))

	for dbName, db := range analysis.IndexedDB {
		stores := make(map[string]model.StoreSchema, len(db.Stores))
		for storeName, store := range db.Stores {
			stores[storeName] = model.StoreSchema{
				Type:       "object",
				Properties: store.Schema,
				Metadata: model.SchemaMetadata{
					RecordCount: store.RecordCount,
					KeyPath:     store.KeyPath,
					Indexes:     store.Indexes,
				},
			}
		}
		schemas["db_"+dbName] = stores
	}

	return schemas
}

// WriteSchemaJSON writes a schema document as indented JSON.
func WriteSchemaJSON(w io.Writer, schema model.SchemaDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}

// WriteCodeGraphJSON writes a code dependency graph as indented JSON.
func WriteCodeGraphJSON(w io.Writer, graph *model.CodeGraph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(graph)
}
