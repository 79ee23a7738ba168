package analyzer

import (
	"sort"

	"github.com/dumpscan/dumpscan/internal/model"
)

// AnalyzeStorage summarizes both key-value stores of a dump.
func AnalyzeStorage(storage model.Storage) *model.StorageAnalysis {
	return &model.StorageAnalysis{
		Local:   AnalyzeKeyValueStore(storage.Local),
		Session: AnalyzeKeyValueStore(storage.Session),
	}
}

// AnalyzeKeyValueStore summarizes a single key-value store.
// A nil or empty store yields an all-zero summary with empty maps, never
// an error: a missing storage section is a normal dump shape.
func AnalyzeKeyValueStore(store model.KeyValueStore) model.StoreStats {
	sizes := make([]int64, 0, len(store))
	patterns := make(map[string]int)
	types := make(map[string]int)
	cardinality := make(map[string]model.KeyCardinality)

	var totalSize int64
	for key, value := range store {
		patterns[ExtractKeyPrefix(key)]++
		sizes = append(sizes, value.Size)
		totalSize += value.Size
		types[classifyStoredValue(value)]++

		if kc, ok := keyCardinality(value); ok {
			cardinality[key] = kc
		}
	}

	stats := model.StoreStats{
		TotalKeys:      len(store),
		TotalSizeBytes: totalSize,
		KeyPatterns:    patterns,
		DataTypes:      types,
		Cardinality:    cardinality,
	}

	if len(store) > 0 {
		stats.AvgValueSize = float64(totalSize) / float64(len(store))
	}
	stats.ValueSizesBytes = sizeDistribution(sizes)

	return stats
}

// classifyStoredValue returns the histogram label for one entry.
// An entry without a parsed value was persisted as an opaque string;
// parsed arrays and objects are labeled as serialized JSON.
func classifyStoredValue(v model.StoredValue) string {
	if v.Parsed == nil {
		return TypeString
	}
	switch v.Parsed.(type) {
	case []any:
		return TypeJSONArray
	case map[string]any:
		return TypeJSONObject
	default:
		return Classify(v.Parsed)
	}
}

// keyCardinality reports the element count of a parsed value.
// Entries without a parsed value report ok=false and are omitted from the
// cardinality map entirely, not zero-filled.
func keyCardinality(v model.StoredValue) (model.KeyCardinality, bool) {
	switch parsed := v.Parsed.(type) {
	case nil:
		return model.KeyCardinality{}, false
	case []any:
		n := len(parsed)
		return model.KeyCardinality{Type: TypeArray, Cardinality: &n}, true
	case map[string]any:
		n := len(parsed)
		return model.KeyCardinality{Type: TypeObject, Cardinality: &n}, true
	default:
		one := 1
		return model.KeyCardinality{Type: Classify(parsed), UniqueValues: &one}, true
	}
}

// sizeDistribution computes min/max/median over a size sequence.
// The median is the lower element for even-length sequences (index n/2 of
// the ascending sort). This tie-break is load-bearing: downstream consumers
// compare reports byte-for-byte across implementations.
func sizeDistribution(sizes []int64) model.SizeDistribution {
	if len(sizes) == 0 {
		return model.SizeDistribution{}
	}

	sorted := make([]int64, len(sizes))
	copy(sorted, sizes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return model.SizeDistribution{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: sorted[len(sorted)/2],
	}
}
