package analyzer

import (
	"math"
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// TestAnalyzeKeyValueStoreEmpty tests the all-zero summary of an empty store.
func TestAnalyzeKeyValueStoreEmpty(t *testing.T) {
	t.Parallel()

	stats := AnalyzeKeyValueStore(model.KeyValueStore{})

	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d, want 0", stats.TotalKeys)
	}
	if stats.TotalSizeBytes != 0 {
		t.Errorf("TotalSizeBytes = %d, want 0", stats.TotalSizeBytes)
	}
	if stats.AvgValueSize != 0 {
		t.Errorf("AvgValueSize = %v, want 0", stats.AvgValueSize)
	}
	if d := stats.ValueSizesBytes; d.Min != 0 || d.Max != 0 || d.Median != 0 {
		t.Errorf("ValueSizesBytes = %+v, want all zero", d)
	}
	if len(stats.KeyPatterns) != 0 {
		t.Errorf("KeyPatterns = %v, want empty", stats.KeyPatterns)
	}
	if len(stats.Cardinality) != 0 {
		t.Errorf("Cardinality = %v, want empty", stats.Cardinality)
	}
}

// TestAnalyzeKeyValueStoreNil verifies a nil store behaves like an empty one.
func TestAnalyzeKeyValueStoreNil(t *testing.T) {
	t.Parallel()

	stats := AnalyzeKeyValueStore(nil)
	if stats.TotalKeys != 0 || stats.TotalSizeBytes != 0 {
		t.Errorf("got %+v, want zero summary", stats)
	}
}

// TestAnalyzeKeyValueStoreKeyPatterns tests the prefixed/literal bucket split.
func TestAnalyzeKeyValueStoreKeyPatterns(t *testing.T) {
	t.Parallel()

	store := model.KeyValueStore{
		"user_1": {Value: "{}", Size: 2, Parsed: map[string]any{}},
		"user_2": {Value: "{}", Size: 2, Parsed: map[string]any{}},
		"theme":  {Value: "{}", Size: 2, Parsed: map[string]any{}},
	}

	stats := AnalyzeKeyValueStore(store)

	if got := stats.KeyPatterns["user_*"]; got != 2 {
		t.Errorf(`KeyPatterns["user_*"] = %d, want 2`, got)
	}
	if got := stats.KeyPatterns["theme"]; got != 1 {
		t.Errorf(`KeyPatterns["theme"] = %d, want 1`, got)
	}

	// Totality: bucket counts sum to the key count.
	sum := 0
	for _, n := range stats.KeyPatterns {
		sum += n
	}
	if sum != stats.TotalKeys {
		t.Errorf("pattern counts sum to %d, want %d", sum, stats.TotalKeys)
	}
}

// TestAnalyzeKeyValueStoreSizes tests size accumulation and distribution.
func TestAnalyzeKeyValueStoreSizes(t *testing.T) {
	t.Parallel()

	store := model.KeyValueStore{
		"a": {Value: "x", Size: 10},
		"b": {Value: "x", Size: 30},
		"c": {Value: "x", Size: 20},
		"d": {Value: "x"}, // missing size contributes 0
	}

	stats := AnalyzeKeyValueStore(store)

	t.Run("total is the sum of sizes", func(t *testing.T) {
		t.Parallel()
		if stats.TotalSizeBytes != 60 {
			t.Errorf("TotalSizeBytes = %d, want 60", stats.TotalSizeBytes)
		}
	})

	t.Run("average times key count recovers the total", func(t *testing.T) {
		t.Parallel()
		product := stats.AvgValueSize * float64(stats.TotalKeys)
		if math.Abs(product-float64(stats.TotalSizeBytes)) > 1e-9 {
			t.Errorf("avg*keys = %v, want %d", product, stats.TotalSizeBytes)
		}
	})

	t.Run("median is the lower element for even length", func(t *testing.T) {
		t.Parallel()
		// Sorted sizes: 0, 10, 20, 30; index 4/2 = 2 selects 20.
		if stats.ValueSizesBytes.Median != 20 {
			t.Errorf("Median = %d, want 20", stats.ValueSizesBytes.Median)
		}
	})

	t.Run("min and max", func(t *testing.T) {
		t.Parallel()
		if stats.ValueSizesBytes.Min != 0 || stats.ValueSizesBytes.Max != 30 {
			t.Errorf("got min=%d max=%d, want 0/30",
				stats.ValueSizesBytes.Min, stats.ValueSizesBytes.Max)
		}
	})
}

// TestAnalyzeKeyValueStoreDataTypes tests the inferred type histogram.
func TestAnalyzeKeyValueStoreDataTypes(t *testing.T) {
	t.Parallel()

	store := model.KeyValueStore{
		"raw":    {Value: "not json", Size: 8},
		"list":   {Value: "[1,2]", Size: 5, Parsed: []any{float64(1), float64(2)}},
		"doc":    {Value: "{}", Size: 2, Parsed: map[string]any{}},
		"flag":   {Value: "true", Size: 4, Parsed: true},
		"amount": {Value: "3.5", Size: 3, Parsed: float64(3.5)},
	}

	stats := AnalyzeKeyValueStore(store)

	want := map[string]int{
		"string":      1,
		"JSON_array":  1,
		"JSON_object": 1,
		"boolean":     1,
		"number":      1,
	}
	for label, count := range want {
		if got := stats.DataTypes[label]; got != count {
			t.Errorf("DataTypes[%q] = %d, want %d", label, got, count)
		}
	}
}

// TestAnalyzeKeyValueStoreCardinality tests per-key cardinality entries.
func TestAnalyzeKeyValueStoreCardinality(t *testing.T) {
	t.Parallel()

	store := model.KeyValueStore{
		"list": {Value: "[]", Size: 2, Parsed: []any{float64(1), float64(2), float64(3)}},
		"doc":  {Value: "{}", Size: 2, Parsed: map[string]any{"a": 1, "b": 2}},
		"flag": {Value: "true", Size: 4, Parsed: true},
		"raw":  {Value: "plain", Size: 5},
	}

	stats := AnalyzeKeyValueStore(store)

	t.Run("array reports element count", func(t *testing.T) {
		t.Parallel()
		kc, ok := stats.Cardinality["list"]
		if !ok || kc.Type != "array" || kc.Cardinality == nil || *kc.Cardinality != 3 {
			t.Errorf("got %+v, want array cardinality 3", kc)
		}
	})

	t.Run("object reports key count", func(t *testing.T) {
		t.Parallel()
		kc, ok := stats.Cardinality["doc"]
		if !ok || kc.Type != "object" || kc.Cardinality == nil || *kc.Cardinality != 2 {
			t.Errorf("got %+v, want object cardinality 2", kc)
		}
	})

	t.Run("scalar reports a single unique value", func(t *testing.T) {
		t.Parallel()
		kc, ok := stats.Cardinality["flag"]
		if !ok || kc.Type != "boolean" || kc.UniqueValues == nil || *kc.UniqueValues != 1 {
			t.Errorf("got %+v, want boolean with unique_values 1", kc)
		}
	})

	t.Run("entries without parsed are omitted", func(t *testing.T) {
		t.Parallel()
		if _, ok := stats.Cardinality["raw"]; ok {
			t.Error("unparsed entry should not appear in cardinality")
		}
	})
}

// TestAnalyzeStorage verifies both stores are summarized independently.
func TestAnalyzeStorage(t *testing.T) {
	t.Parallel()

	result := AnalyzeStorage(model.Storage{
		Local:   model.KeyValueStore{"a": {Value: "1", Size: 1}},
		Session: model.KeyValueStore{},
	})

	if result.Local.TotalKeys != 1 {
		t.Errorf("Local.TotalKeys = %d, want 1", result.Local.TotalKeys)
	}
	if result.Session.TotalKeys != 0 {
		t.Errorf("Session.TotalKeys = %d, want 0", result.Session.TotalKeys)
	}
}
