package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// sampleAnalysis builds an analysis with one database and one store.
func sampleAnalysis() *model.Analysis {
	analysis := model.NewAnalysis("dump.json")
	analysis.IndexedDB = model.IndexedDBAnalysis{
		"app": {
			Version: 2,
			Stores: map[string]model.StoreAnalysis{
				"threads": {
					RecordCount: 10,
					KeyPath:     "id",
					Indexes:     []any{"by_date"},
					Schema: map[string]model.FieldSchema{
						"id": {Type: "string", Presence: "100%"},
					},
					Cardinality: map[string]model.FieldCardinality{
						"id": {UniqueValues: 10, CardinalityRatio: 1.0},
					},
				},
			},
		},
	}
	return analysis
}

// TestExportSchema tests reshaping into the normalized schema document.
func TestExportSchema(t *testing.T) {
	t.Parallel()

	schema := ExportSchema(sampleAnalysis())

	db, ok := schema["db_app"]
	if !ok {
		t.Fatal("expected db_app key")
	}
	store, ok := db["threads"]
	if !ok {
		t.Fatal("expected threads store")
	}

	if store.Type != "object" {
		t.Errorf("Type = %q, want object", store.Type)
	}
	if store.Properties["id"].Type != "string" {
		t.Errorf("Properties = %v, want id:string pass-through", store.Properties)
	}
	if store.Metadata.RecordCount != 10 {
		t.Errorf("Metadata.RecordCount = %d, want 10", store.Metadata.RecordCount)
	}
	if store.Metadata.KeyPath != "id" {
		t.Errorf("Metadata.KeyPath = %v, want id", store.Metadata.KeyPath)
	}
	if len(store.Metadata.Indexes) != 1 {
		t.Errorf("Metadata.Indexes = %v, want pass-through", store.Metadata.Indexes)
	}
}

// TestExportSchemaEmpty tests an analysis without an indexeddb section.
func TestExportSchemaEmpty(t *testing.T) {
	t.Parallel()

	schema := ExportSchema(model.NewAnalysis(""))
	if len(schema) != 0 {
		t.Errorf("got %v, want empty document", schema)
	}
}

// TestWriteSchemaJSON tests JSON serialization of the schema document.
func TestWriteSchemaJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteSchemaJSON(&buf, ExportSchema(sampleAnalysis())); err != nil {
		t.Fatalf("WriteSchemaJSON returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["db_app"]; !ok {
		t.Error("serialized document lacks db_app")
	}
}
