// Package storage provides SQLite-based persistence for analysis runs.
//
// The storage layer manages:
//   - Run metadata (schema version, file totals, timing)
//   - Per-file classification records with content hashes
//   - Exploded type labels for SQL-side grouping
//
// # Database Schema
//
// Tables:
//   - runs: One row per corpus analysis pass
//   - file_records: Per-file classification (labels, buckets, hashes)
//   - record_types: One row per (record, type label) pair
//   - schema_version: Applied migration versions
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("corpus.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	run := &storage.Run{}
//	if err := db.CreateRun(ctx, run); err != nil {
//	    return err
//	}
//	if err := db.UpsertFileRecord(ctx, storage.RecordFromClassification(run.ID, cl)); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Use transactions to batch per-file inserts:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	for _, rec := range records {
//	    if err := tx.UpsertFileRecord(ctx, rec); err != nil {
//	        return err
//	    }
//	}
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Queries
//
// Aggregate queries back the MCP tools: CountByType and
// CountByDiscipline group persisted records, ListNeedsReview pages the
// triage queue ordered by ascending confidence, and ListDuplicateGroups
// finds hashes shared by multiple files (raw or whitespace-stripped).
//
// # Drivers
//
// Two SQLite drivers are supported via build tags: the default pure Go
// modernc.org/sqlite, and github.com/mattn/go-sqlite3 with the cgosqlite
// tag. See build_purego.go and build_cgo.go.
package storage
