package analyzer

import (
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// TestAnalyzeCaches tests content-type bucketing and size accumulation.
func TestAnalyzeCaches(t *testing.T) {
	t.Parallel()

	caches := model.CacheCollection{
		Stats: map[string]any{"cacheCount": float64(2)},
		Caches: []model.Cache{
			{
				Name: "static-v1",
				Entries: []model.CacheEntry{
					{URL: "https://cdn.example/app.js", Response: model.Response{ContentType: "application/javascript", BodySize: 1000}},
					{URL: "https://cdn.example/style.css", Response: model.Response{ContentType: "text/css", BodySize: 200}},
				},
			},
			{
				Name: "api-v1",
				Entries: []model.CacheEntry{
					{URL: "https://api.example/user", Response: model.Response{ContentType: "application/javascript", BodySize: 300}},
					{URL: "https://api.example/blob", Response: model.Response{}}, // no content type, no size
				},
			},
		},
	}

	result := AnalyzeCaches(caches)

	t.Run("buckets by content type as given", func(t *testing.T) {
		t.Parallel()
		if got := result.ContentTypes["application/javascript"]; got != 2 {
			t.Errorf("javascript bucket = %d, want 2", got)
		}
		if got := result.ContentTypes["text/css"]; got != 1 {
			t.Errorf("css bucket = %d, want 1", got)
		}
	})

	t.Run("missing content type lands under unknown", func(t *testing.T) {
		t.Parallel()
		if got := result.ContentTypes["unknown"]; got != 1 {
			t.Errorf("unknown bucket = %d, want 1", got)
		}
	})

	t.Run("accumulates body sizes with absent treated as zero", func(t *testing.T) {
		t.Parallel()
		if result.TotalCachedSize != 1500 {
			t.Errorf("TotalCachedSize = %d, want 1500", result.TotalCachedSize)
		}
	})

	t.Run("passes dumper stats through untouched", func(t *testing.T) {
		t.Parallel()
		stats, ok := result.Stats.(map[string]any)
		if !ok || stats["cacheCount"] != float64(2) {
			t.Errorf("Stats = %v, want pass-through", result.Stats)
		}
	})
}

// TestAnalyzeCachesEmpty tests an absent cache section.
func TestAnalyzeCachesEmpty(t *testing.T) {
	t.Parallel()

	result := AnalyzeCaches(model.CacheCollection{})

	if result.TotalCachedSize != 0 {
		t.Errorf("TotalCachedSize = %d, want 0", result.TotalCachedSize)
	}
	if len(result.ContentTypes) != 0 {
		t.Errorf("ContentTypes = %v, want empty", result.ContentTypes)
	}
}
