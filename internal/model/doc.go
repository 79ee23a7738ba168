// Package model defines the core data structures used throughout dumpscan.
//
// This package contains two families of types:
//   - The dump document model (Dump, KeyValueStore, Database, CacheCollection):
//     the in-memory shape of a loaded storage snapshot. These types are
//     read-only for the analyzers.
//   - The analysis result model (Analysis and its sub-trees): the statistics
//     produced by the analyzers and consumed by the report layer.
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (analyzer, report, database, pipeline) need
// these types, so centralizing them prevents import cycles.
//
// All types are designed to be serializable to JSON for report output and
// database storage.
package model
