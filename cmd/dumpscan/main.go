// Package main provides the entry point for the dumpscan CLI.
//
// dumpscan is a read-only analyzer for web application client-state dumps.
// It inspects localStorage and sessionStorage key-value data, IndexedDB
// records, and cached HTTP responses, then reports key patterns, inferred
// record schemas, field cardinality, and the script dependency graph.
//
// Usage:
//
//	dumpscan analyze <dump-file>
//	dumpscan export --sections storage <dump-file>
//
// See --help for all available options.
package main

// main is the entry point for dumpscan.
func main() {
	Execute()
}
