package analyzer

import "github.com/dumpscan/dumpscan/internal/model"

// AnalyzeCaches summarizes the response cache section of a dump.
//
// Every entry of every cache is visited exactly once. Entries are bucketed
// by content type as given, with no normalization; a response without a
// content type lands under the literal "unknown" bucket. Only the global
// aggregate is retained, not a per-cache breakdown.
func AnalyzeCaches(caches model.CacheCollection) *model.CacheAnalysis {
	contentTypes := make(map[string]int)
	var totalSize int64

	for _, cache := range caches.Caches {
		for _, entry := range cache.Entries {
			contentType := entry.Response.ContentType
			if contentType == "" {
				contentType = "unknown"
			}
			contentTypes[contentType]++
			totalSize += entry.Response.BodySize
		}
	}

	return &model.CacheAnalysis{
		Stats:           caches.Stats,
		ContentTypes:    contentTypes,
		TotalCachedSize: totalSize,
	}
}
