package analyzer

import (
	"fmt"
	"unicode/utf8"

	"github.com/dumpscan/dumpscan/internal/model"
)

// primitiveField is the sentinel schema/cardinality key used when a store's
// records are primitive scalars rather than objects.
const primitiveField = "_primitive"

// AnalyzeIndexedDB summarizes every database of a dump using the default
// first-record schema strategy. Databases without a name are bucketed
// under "unknown".
func AnalyzeIndexedDB(databases []model.Database) model.IndexedDBAnalysis {
	return AnalyzeIndexedDBWith(databases, InferSchema)
}

// AnalyzeIndexedDBWith is AnalyzeIndexedDB with a custom schema strategy.
func AnalyzeIndexedDBWith(databases []model.Database, strategy SchemaStrategy) model.IndexedDBAnalysis {
	result := make(model.IndexedDBAnalysis, len(databases))

	for _, db := range databases {
		name := db.Name
		if name == "" {
			name = "unknown"
		}

		stores := make(map[string]model.StoreAnalysis, len(db.Stores))
		for _, store := range db.Stores {
			stores[store.Name] = analyzeObjectStore(store, strategy)
		}

		result[name] = model.DatabaseAnalysis{
			Version: db.Version,
			Stores:  stores,
		}
	}

	return result
}

// analyzeObjectStore summarizes one object store.
func analyzeObjectStore(store model.ObjectStore, strategy SchemaStrategy) model.StoreAnalysis {
	indexes := store.Indexes
	if indexes == nil {
		indexes = []any{}
	}

	return model.StoreAnalysis{
		RecordCount: store.RecordCount(),
		KeyPath:     store.KeyPath,
		Indexes:     indexes,
		Schema:      strategy(store.Records),
		Cardinality: analyzeFieldCardinality(store.Records),
	}
}

// InferSchema derives a field schema from a record sequence.
//
// The schema is derived from the first record only. This is a deliberate
// trade-off for large stores, preserved here as the default strategy; a
// full-collection scan can be substituted via SchemaStrategy without
// changing the output shape.
//
// An empty store yields an empty schema. A primitive first record yields a
// single sentinel field describing the primitive's type.
func InferSchema(records []any) map[string]model.FieldSchema {
	schema := make(map[string]model.FieldSchema)
	if len(records) == 0 {
		return schema
	}

	first, ok := records[0].(map[string]any)
	if !ok {
		schema[primitiveField] = model.FieldSchema{
			Type: Classify(records[0]),
			Note: "Records are primitive values, not objects",
		}
		return schema
	}

	objectRecords := objectShaped(records)

	for field, value := range first {
		fs := model.FieldSchema{
			Type:     Classify(value),
			Presence: fieldPresence(field, objectRecords),
		}

		if fs.Type == TypeString {
			if maxLen, avgLen, ok := stringLengths(field, objectRecords); ok {
				fs.MaxLength = &maxLen
				fs.AvgLength = &avgLen
			}
		}

		schema[field] = fs
	}

	return schema
}

// SchemaStrategy derives a field schema from a record sequence.
// InferSchema (first-record-only) is the default; stricter strategies can
// be swapped in without touching the graph or report layers.
type SchemaStrategy func(records []any) map[string]model.FieldSchema

// fieldPresence formats the percentage of object-shaped records carrying
// the field. Primitive records are excluded from the denominator.
func fieldPresence(field string, objectRecords []map[string]any) string {
	if len(objectRecords) == 0 {
		return "0%"
	}

	present := 0
	for _, r := range objectRecords {
		if _, ok := r[field]; ok {
			present++
		}
	}

	pct := float64(present) / float64(len(objectRecords)) * 100
	return fmt.Sprintf("%.0f%%", pct)
}

// stringLengths computes max and average length in characters of a field's
// rendered values, over records where the field is present.
func stringLengths(field string, objectRecords []map[string]any) (maxLen int, avgLen float64, ok bool) {
	var sum, count int
	for _, r := range objectRecords {
		v, present := r[field]
		if !present {
			continue
		}
		n := utf8.RuneCountInString(CanonicalString(v))
		if n > maxLen {
			maxLen = n
		}
		sum += n
		count++
	}

	if count == 0 {
		return 0, 0, false
	}
	return maxLen, float64(sum) / float64(count), true
}

// analyzeFieldCardinality computes distinct-value statistics per field.
//
// For primitive record sequences, the whole sequence is treated as one
// multiset of scalars under the "_primitive" sentinel. For object records,
// every field of the first record is measured against the records that
// actually carry it, so sparse fields don't get their ratio diluted by the
// store's total record count. A field carried by no record is skipped.
func analyzeFieldCardinality(records []any) map[string]model.FieldCardinality {
	result := make(map[string]model.FieldCardinality)
	if len(records) == 0 {
		return result
	}

	first, ok := records[0].(map[string]any)
	if !ok {
		distinct := make(map[string]struct{}, len(records))
		for _, r := range records {
			distinct[CanonicalString(r)] = struct{}{}
		}
		result[primitiveField] = model.FieldCardinality{
			UniqueValues:     len(distinct),
			CardinalityRatio: float64(len(distinct)) / float64(len(records)),
		}
		return result
	}

	objectRecords := objectShaped(records)
	if len(objectRecords) == 0 {
		return result
	}

	for field := range first {
		distinct := make(map[string]struct{})
		carrying := 0
		for _, r := range objectRecords {
			v, present := r[field]
			if !present {
				continue
			}
			carrying++
			distinct[CanonicalString(v)] = struct{}{}
		}

		if carrying == 0 {
			continue
		}

		result[field] = model.FieldCardinality{
			UniqueValues:     len(distinct),
			CardinalityRatio: float64(len(distinct)) / float64(carrying),
		}
	}

	return result
}

// objectShaped filters a record sequence down to its object-shaped records.
func objectShaped(records []any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
