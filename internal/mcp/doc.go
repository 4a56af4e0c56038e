// Package mcp exposes a corpus analysis database over the Model Context
// Protocol.
//
// The server is read-only: it answers questions about runs the analyze
// command has already written. Four tools are registered:
//
//   - corpus_summary: run totals plus problem-type and discipline counts
//   - find_duplicates: duplicate file clusters by raw or
//     whitespace-stripped content hash
//   - list_needs_review: review-flagged files, lowest confidence first,
//     optionally filtered to one review bucket
//   - discipline_breakdown: file counts per discipline bucket
//
// Every tool accepts an optional run_id and defaults to the most recent
// run. Responses are indented JSON in a text content block. Errors use
// JSON-RPC codes: -32602/-32603 for parameter and internal errors, plus
// -32001 (run not found) and -32002 (no runs recorded yet).
//
// The server speaks stdio; stdout carries the protocol, so any logging
// must go to stderr.
package mcp
