package model

import "time"

// Analysis is the union of all analyzer outputs for a single dump.
// Each section is produced by exactly one analyzer; a nil section means the
// corresponding analyzer did not run. The report layer must tolerate any
// section being absent.
type Analysis struct {
	// Storage is the key-value store analysis ("storage" section).
	Storage *StorageAnalysis `json:"storage,omitempty"`

	// IndexedDB maps database name to its analysis ("indexeddb" section).
	IndexedDB IndexedDBAnalysis `json:"indexeddb,omitempty"`

	// Caches is the response cache analysis ("caches" section).
	Caches *CacheAnalysis `json:"caches,omitempty"`

	// CodeGraph is the recovered script dependency graph ("code_graph").
	CodeGraph *CodeGraph `json:"code_graph,omitempty"`

	// DumpFile is the path of the analyzed dump, for reports and history.
	DumpFile string `json:"dump_file,omitempty"`

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// PerformedSteps lists the pipeline steps that executed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewAnalysis creates an empty Analysis for the given dump file.
func NewAnalysis(dumpFile string) *Analysis {
	return &Analysis{
		DumpFile:   dumpFile,
		AnalyzedAt: time.Now(),
	}
}

// TotalRecords returns the sum of record counts across all analyzed stores.
func (a *Analysis) TotalRecords() int {
	total := 0
	for _, db := range a.IndexedDB {
		for _, store := range db.Stores {
			total += store.RecordCount
		}
	}
	return total
}

// TotalStores returns the number of analyzed object stores.
func (a *Analysis) TotalStores() int {
	total := 0
	for _, db := range a.IndexedDB {
		total += len(db.Stores)
	}
	return total
}

// StorageAnalysis summarizes the two key-value stores of a dump.
type StorageAnalysis struct {
	Local   StoreStats `json:"localStorage"`
	Session StoreStats `json:"sessionStorage"`
}

// StoreStats is the statistical summary of one key-value store.
type StoreStats struct {
	// TotalKeys is the number of keys in the store.
	TotalKeys int `json:"total_keys"`

	// TotalSizeBytes is the sum of entry sizes; entries without a size
	// contribute zero.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// AvgValueSize is TotalSizeBytes / TotalKeys, or 0 for an empty store.
	AvgValueSize float64 `json:"avg_value_size"`

	// KeyPatterns is the histogram of structural key prefixes.
	// Every key of the store lands in exactly one bucket.
	KeyPatterns map[string]int `json:"key_patterns"`

	// ValueSizesBytes is the min/max/median over entry sizes.
	ValueSizesBytes SizeDistribution `json:"value_sizes_bytes"`

	// DataTypes is the histogram of inferred value types. Entries without a
	// parsed value count as "string"; parsed arrays and objects count as
	// "JSON_array" and "JSON_object" to signal serialized-JSON payloads.
	DataTypes map[string]int `json:"data_types"`

	// Cardinality maps keys with a parsed value to their element counts.
	// Keys without a parsed value are omitted, not zero-filled.
	Cardinality map[string]KeyCardinality `json:"cardinality"`
}

// SizeDistribution describes the spread of a size sequence.
// Median is the lower element for even-length sequences (index n/2 of the
// ascending sort); all fields are 0 for an empty sequence.
type SizeDistribution struct {
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
	Median int64 `json:"median"`
}

// KeyCardinality describes one parsed key-value entry.
// Exactly one of Cardinality (arrays: element count, objects: key count)
// and UniqueValues (scalars: always 1) is set.
type KeyCardinality struct {
	Type         string `json:"type"`
	Cardinality  *int   `json:"cardinality,omitempty"`
	UniqueValues *int   `json:"unique_values,omitempty"`
}

// IndexedDBAnalysis maps database names to their analyses.
type IndexedDBAnalysis map[string]DatabaseAnalysis

// DatabaseAnalysis summarizes one database.
type DatabaseAnalysis struct {
	Version int64                    `json:"version"`
	Stores  map[string]StoreAnalysis `json:"stores"`
}

// StoreAnalysis summarizes one object store.
type StoreAnalysis struct {
	RecordCount int   `json:"record_count"`
	KeyPath     any   `json:"key_path"`
	Indexes     []any `json:"indexes"`

	// Schema is the field schema inferred from the first record.
	// Empty for an empty store; a single "_primitive" sentinel when the
	// first record is not an object.
	Schema map[string]FieldSchema `json:"schema"`

	// Cardinality maps field names to distinct-value statistics.
	Cardinality map[string]FieldCardinality `json:"cardinality"`
}

// FieldSchema describes one inferred schema field.
type FieldSchema struct {
	Type string `json:"type"`

	// Presence is the percentage of object-shaped records carrying the
	// field, formatted as an integer percentage ("100%").
	Presence string `json:"presence,omitempty"`

	// Note annotates the "_primitive" sentinel field.
	Note string `json:"note,omitempty"`

	// MaxLength and AvgLength are reported for string-typed fields only,
	// computed over records where the field is present.
	MaxLength *int     `json:"max_length,omitempty"`
	AvgLength *float64 `json:"avg_length,omitempty"`
}

// FieldCardinality reports distinct-value statistics for one field.
// Distinctness is textual: two values with the same canonical string
// rendering count as one.
type FieldCardinality struct {
	UniqueValues int `json:"unique_values"`

	// CardinalityRatio is UniqueValues divided by the number of records
	// that actually carry the field, in (0, 1].
	CardinalityRatio float64 `json:"cardinality_ratio"`
}

// CacheAnalysis summarizes the response cache section.
type CacheAnalysis struct {
	// Stats is the dumper's aggregate statistics, passed through unchanged.
	Stats any `json:"stats,omitempty"`

	// ContentTypes is the histogram of response content types as given;
	// responses without one are bucketed under "unknown".
	ContentTypes map[string]int `json:"content_types"`

	// TotalCachedSize is the sum of response body sizes in bytes.
	TotalCachedSize int64 `json:"total_cached_size"`
}

// CodeGraph is the dependency graph recovered from cached script bodies.
type CodeGraph struct {
	// Components maps hash-stripped component names to their details.
	Components map[string]Component `json:"components"`

	// Graph maps component names to their imported identifiers.
	Graph map[string][]string `json:"graph"`

	Stats GraphStats `json:"stats"`
}

// Component is one script resource in the dependency graph.
type Component struct {
	URL     string   `json:"url"`
	Size    int64    `json:"size"`
	Imports []string `json:"imports"`
}

// GraphStats aggregates the dependency graph.
type GraphStats struct {
	TotalComponents int `json:"total_components"`

	// TotalDependencies is the sum of per-component import-set sizes.
	// An identifier imported by two components counts twice.
	TotalDependencies int `json:"total_dependencies"`
}

// SchemaDocument is the normalized schema tree produced by the schema
// exporter: "db_<name>" -> store name -> StoreSchema.
type SchemaDocument map[string]map[string]StoreSchema

// StoreSchema is one object store reshaped into schema form.
type StoreSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]FieldSchema `json:"properties"`
	Metadata   SchemaMetadata         `json:"metadata"`
}

// SchemaMetadata carries store facts alongside the schema proper.
type SchemaMetadata struct {
	RecordCount int   `json:"record_count"`
	KeyPath     any   `json:"key_path"`
	Indexes     []any `json:"indexes"`
}
