// Package pipeline orchestrates the execution of analysis steps over a
// loaded dump.
//
// A Pipeline runs Steps in sequence against one dump, accumulating their
// output into a shared Analysis. Each step reads a disjoint section of the
// dump and owns its accumulators, so sequencing is sufficient for
// correctness; the BatchProcessor adds bounded concurrency across multiple
// dump files, not within one.
package pipeline
