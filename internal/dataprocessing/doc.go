// Package dataprocessing implements the ingestion pipeline: parsing
// agent exports into raw rows, normalizing them into canonical call
// records, bucketing records into Sunday-anchored weeks, and merging
// per-source tables into the combined reporting table.
//
// Pipeline order is Parser -> Normalizer -> Bucketer -> Merger. Every
// stage prefers partial data over rejection: unreadable files are
// skipped with an error, malformed rows are counted and dropped, and
// unresolvable fields are left undefined on retained records.
package dataprocessing
