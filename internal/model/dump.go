package model

import "encoding/json"

// Dump is the root of a loaded storage snapshot.
// The analyzers read disjoint sections of this document and never mutate it;
// the loader owns the document for its entire lifetime.
//
// Design decision: We keep both the typed sections and the raw top-level
// sections (Sections). The analyzers need the typed view, while the export
// command re-emits whole sections verbatim and must not depend on which
// fields the typed model happens to know about.
type Dump struct {
	// Metadata holds dump provenance (origin URL, timestamp, dumper version).
	// It is opaque to the analyzers; the export command uses the timestamp
	// for output file naming.
	Metadata Metadata `json:"metadata"`

	// Storage holds the two flat key-value stores.
	Storage Storage `json:"storage"`

	// IndexedDB is the ordered sequence of captured databases.
	IndexedDB []Database `json:"indexedDB"`

	// Caches is the captured HTTP response cache collection.
	Caches CacheCollection `json:"caches"`

	// Sections holds every top-level section of the raw document, keyed by
	// its original name. Populated by the loader.
	Sections map[string]json.RawMessage `json:"-"`
}

// Metadata describes where and when the dump was taken.
type Metadata struct {
	// URL is the page origin the dump was captured from.
	URL string `json:"url,omitempty"`

	// Timestamp is the capture time in RFC 3339 form, as written by the
	// dumper. Kept as a string because the analyzers never interpret it.
	Timestamp string `json:"timestamp,omitempty"`

	// Version is the dumper version string.
	Version string `json:"version,omitempty"`
}

// Storage holds the two flat key-value stores of a dump.
type Storage struct {
	Local   KeyValueStore `json:"localStorage"`
	Session KeyValueStore `json:"sessionStorage"`
}

// KeyValueStore maps storage keys to their captured values.
type KeyValueStore map[string]StoredValue

// StoredValue is one entry of a key-value store.
type StoredValue struct {
	// Value is the raw string payload as persisted.
	Value string `json:"value"`

	// Size is the payload size in bytes. Zero when the dumper omitted it.
	Size int64 `json:"size"`

	// Parsed is the raw payload interpreted as structured data (the result
	// of a JSON parse at capture time), or nil when the payload was not
	// parseable. After decoding this holds bool, float64, string,
	// []any, or map[string]any.
	Parsed any `json:"parsed,omitempty"`
}

// Database is one captured IndexedDB database.
type Database struct {
	Name    string        `json:"name"`
	Version int64         `json:"version"`
	Stores  []ObjectStore `json:"stores"`
}

// ObjectStore is a named collection of records within a Database.
type ObjectStore struct {
	Name string `json:"name"`

	// KeyPath is the store's declared key path. IndexedDB allows both a
	// single string and an array of strings here, so it stays untyped.
	KeyPath any `json:"keyPath"`

	// Indexes lists the store's secondary indexes. Opaque to the analyzers;
	// passed through to the schema document unchanged.
	Indexes []any `json:"indexes"`

	// Count is the advisory record count reported by the dumper.
	// When nil, len(Records) is authoritative.
	Count *int `json:"count,omitempty"`

	// Records is the captured record sequence. Each element is either an
	// object (map[string]any) or a primitive scalar; analyzers must not
	// assume every record is an object.
	Records []any `json:"records"`
}

// RecordCount returns the advisory count when present, otherwise the
// length of the captured record sequence.
func (s *ObjectStore) RecordCount() int {
	if s.Count != nil {
		return *s.Count
	}
	return len(s.Records)
}

// CacheCollection is the captured HTTP response cache section.
type CacheCollection struct {
	// Stats is the dumper's own aggregate cache statistics, passed through
	// to the analysis output without interpretation.
	Stats any `json:"stats,omitempty"`

	Caches []Cache `json:"caches"`
}

// Cache is one named response cache.
type Cache struct {
	Name    string       `json:"name"`
	Entries []CacheEntry `json:"entries"`
}

// CacheEntry pairs a request URL with its cached response.
type CacheEntry struct {
	URL      string   `json:"url"`
	Response Response `json:"response"`
}

// Response is the cached response of a single cache entry.
type Response struct {
	// ContentType is the response content type as captured.
	// Empty when the dumper omitted it.
	ContentType string `json:"contentType"`

	// BodySize is the response body size in bytes. Zero when omitted.
	BodySize int64 `json:"bodySize"`

	// Body is the response body text. Only present for text resources the
	// dumper chose to inline (typically scripts); empty otherwise.
	Body string `json:"body,omitempty"`
}
