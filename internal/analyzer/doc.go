// Package analyzer coordinates the per-file analysis pipeline:
// read -> tokenize -> extract -> classify -> fold.
//
// Files are processed concurrently by a bounded worker pool; each worker
// folds into its own aggregate.State, and worker states are merged under
// a single lock, so the final state is identical to a sequential fold.
// Per-file failures (unreadable files, binary content, unterminated
// heredoc or markup blocks) are recorded as failed classifications and
// never abort the run. A cancelled context aborts the run with an error
// and no state is returned, so partial results are never reported.
//
// AnalyzeBytes is the pure entry point: given file content it returns
// the complete classification with content hashes, without touching the
// filesystem. Analyze wraps it with discovery, concurrency, and optional
// persistence of per-file records to storage.
package analyzer
