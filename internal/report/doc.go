// Package report renders an aggregate.State into the delimited report
// tree and writes it to disk.
//
// Render is pure: it maps a state to a map of relative file path to
// file content, so tests can assert byte-for-byte output without
// touching the filesystem. Every expected report file is always
// present, including fixed bucket rows with zero counts, so downstream
// tooling never special-cases an empty corpus. Rows sort by descending
// count then ascending key unless a file documents a fixed order in its
// header.
//
// Each TSV starts with a four-line "#" metadata header (Population,
// Unit, Notes, Sorted) and a "# ----" separator before the column
// header row. Write renders everything first and probes the output
// location for writability before creating any file, so a failed run
// never publishes a partial report set.
package report
