// Package pipeline fans independent work units out to a fixed pool of
// workers and merges their results back in input order.
//
// Units are grouped into chunks; a chunk is the scheduling unit, and the
// collector releases chunk k only after chunks 0..k-1 have been visited, so
// output is byte-identical for any worker count or chunk size.
package pipeline
