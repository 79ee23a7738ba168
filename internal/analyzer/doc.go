// Package analyzer implements the analysis engine of dumpscan.
//
// Four analyzers each read one section of a loaded dump and return a
// self-contained result tree:
//   - AnalyzeStorage: key-value store statistics (sizes, key patterns,
//     inferred value types, per-key cardinality)
//   - AnalyzeIndexedDB: per-store record schemas and field cardinality
//   - AnalyzeCaches: response content-type histogram and byte totals
//   - CodeGraphAnalyzer: module dependency graph recovered from cached
//     script bodies
//
// The analyzers are deliberately permissive: missing optional fields
// degrade to zero values and empty maps rather than errors, because
// real-world dumps are irregular. Each analyzer owns its accumulators
// for the duration of one call and returns them by value, so analyzers
// share no state and are safe to run concurrently over the same dump.
package analyzer
