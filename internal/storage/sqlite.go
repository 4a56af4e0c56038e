package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) Close() error {
	return nil // Transactions don't close the database
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

// Run operations

func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	return createRun(ctx, s.db, run)
}

func (t *sqliteTx) CreateRun(ctx context.Context, run *Run) error {
	return createRun(ctx, t.tx, run)
}

func createRun(ctx context.Context, q querier, run *Run) error {
	if run.SchemaVersion == "" {
		run.SchemaVersion = CurrentSchemaVersion
	}
	result, err := q.ExecContext(ctx, `
		INSERT INTO runs (schema_version, total_files, failed_files, needs_review)
		VALUES (?, ?, ?, ?)`,
		run.SchemaVersion, run.TotalFiles, run.FailedFiles, run.NeedsReview)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id
	return nil
}

func (s *SQLiteStorage) GetRun(ctx context.Context, runID int64) (*Run, error) {
	return getRun(ctx, s.db, "WHERE id = ?", runID)
}

func (t *sqliteTx) GetRun(ctx context.Context, runID int64) (*Run, error) {
	return getRun(ctx, t.tx, "WHERE id = ?", runID)
}

func (s *SQLiteStorage) LatestRun(ctx context.Context) (*Run, error) {
	return getRun(ctx, s.db, "ORDER BY id DESC LIMIT 1")
}

func (t *sqliteTx) LatestRun(ctx context.Context) (*Run, error) {
	return getRun(ctx, t.tx, "ORDER BY id DESC LIMIT 1")
}

func getRun(ctx context.Context, q querier, clause string, args ...interface{}) (*Run, error) {
	run := &Run{}
	var startedAt, finishedAt, createdAt, updatedAt sql.NullTime
	err := q.QueryRowContext(ctx, `
		SELECT id, schema_version, total_files, failed_files, needs_review,
		       started_at, finished_at, created_at, updated_at
		FROM runs `+clause, args...).Scan(
		&run.ID, &run.SchemaVersion, &run.TotalFiles, &run.FailedFiles,
		&run.NeedsReview, &startedAt, &finishedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartedAt = startedAt.Time
	run.FinishedAt = finishedAt.Time
	run.CreatedAt = createdAt.Time
	run.UpdatedAt = updatedAt.Time
	return run, nil
}

func (s *SQLiteStorage) FinishRun(ctx context.Context, runID int64, totalFiles, failedFiles, needsReview int) error {
	return finishRun(ctx, s.db, runID, totalFiles, failedFiles, needsReview)
}

func (t *sqliteTx) FinishRun(ctx context.Context, runID int64, totalFiles, failedFiles, needsReview int) error {
	return finishRun(ctx, t.tx, runID, totalFiles, failedFiles, needsReview)
}

func finishRun(ctx context.Context, q querier, runID int64, totalFiles, failedFiles, needsReview int) error {
	result, err := q.ExecContext(ctx, `
		UPDATE runs
		SET total_files = ?, failed_files = ?, needs_review = ?,
		    finished_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		totalFiles, failedFiles, needsReview, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// File record operations

func (s *SQLiteStorage) UpsertFileRecord(ctx context.Context, rec *FileRecord) error {
	return upsertFileRecord(ctx, s.db, rec)
}

func (t *sqliteTx) UpsertFileRecord(ctx context.Context, rec *FileRecord) error {
	return upsertFileRecord(ctx, t.tx, rec)
}

func upsertFileRecord(ctx context.Context, q querier, rec *FileRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO file_records (
			run_id, file_path, abs_path, types, confidence, needs_review,
			review_bucket, other_bucket, discipline, eval_coverage,
			input_count, ans_count, blank_count, sha256, sha256_ws,
			failed, fail_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, file_path) DO UPDATE SET
			abs_path = excluded.abs_path,
			types = excluded.types,
			confidence = excluded.confidence,
			needs_review = excluded.needs_review,
			review_bucket = excluded.review_bucket,
			other_bucket = excluded.other_bucket,
			discipline = excluded.discipline,
			eval_coverage = excluded.eval_coverage,
			input_count = excluded.input_count,
			ans_count = excluded.ans_count,
			blank_count = excluded.blank_count,
			sha256 = excluded.sha256,
			sha256_ws = excluded.sha256_ws,
			failed = excluded.failed,
			fail_reason = excluded.fail_reason,
			updated_at = CURRENT_TIMESTAMP`,
		rec.RunID, rec.FilePath, rec.AbsPath, rec.Types, rec.Confidence,
		rec.NeedsReview, rec.ReviewBucket, rec.OtherBucket, rec.Discipline,
		rec.EvalCoverage, rec.InputCount, rec.AnsCount, rec.BlankCount,
		rec.SHA256, rec.SHA256WS, rec.Failed, rec.FailReason)
	if err != nil {
		return fmt.Errorf("failed to upsert file record: %w", err)
	}

	if rec.ID == 0 {
		// LastInsertId is unreliable after ON CONFLICT updates; read back.
		err = q.QueryRowContext(ctx,
			"SELECT id FROM file_records WHERE run_id = ? AND file_path = ?",
			rec.RunID, rec.FilePath).Scan(&rec.ID)
		if err != nil {
			return fmt.Errorf("failed to read back record ID: %w", err)
		}
	}

	// Rebuild the exploded type rows
	if _, err := q.ExecContext(ctx, "DELETE FROM record_types WHERE record_id = ?", rec.ID); err != nil {
		return fmt.Errorf("failed to clear record types: %w", err)
	}
	for _, label := range rec.TypeList() {
		if _, err := q.ExecContext(ctx,
			"INSERT OR IGNORE INTO record_types (record_id, run_id, type) VALUES (?, ?, ?)",
			rec.ID, rec.RunID, label); err != nil {
			return fmt.Errorf("failed to insert record type: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) GetFileRecord(ctx context.Context, runID int64, filePath string) (*FileRecord, error) {
	return getFileRecord(ctx, s.db, runID, filePath)
}

func (t *sqliteTx) GetFileRecord(ctx context.Context, runID int64, filePath string) (*FileRecord, error) {
	return getFileRecord(ctx, t.tx, runID, filePath)
}

const fileRecordColumns = `
	id, run_id, file_path, abs_path, types, confidence, needs_review,
	review_bucket, other_bucket, discipline, eval_coverage,
	input_count, ans_count, blank_count, sha256, sha256_ws,
	failed, fail_reason, created_at, updated_at`

func scanFileRecord(row interface{ Scan(...interface{}) error }) (*FileRecord, error) {
	rec := &FileRecord{}
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.FilePath, &rec.AbsPath, &rec.Types,
		&rec.Confidence, &rec.NeedsReview, &rec.ReviewBucket, &rec.OtherBucket,
		&rec.Discipline, &rec.EvalCoverage, &rec.InputCount, &rec.AnsCount,
		&rec.BlankCount, &rec.SHA256, &rec.SHA256WS, &rec.Failed,
		&rec.FailReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return rec, nil
}

func getFileRecord(ctx context.Context, q querier, runID int64, filePath string) (*FileRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+fileRecordColumns+`
		FROM file_records
		WHERE run_id = ? AND file_path = ?`, runID, filePath)
	rec, err := scanFileRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStorage) ListNeedsReview(ctx context.Context, runID int64, bucket string, limit int) ([]*FileRecord, error) {
	return listNeedsReview(ctx, s.db, runID, bucket, limit)
}

func (t *sqliteTx) ListNeedsReview(ctx context.Context, runID int64, bucket string, limit int) ([]*FileRecord, error) {
	return listNeedsReview(ctx, t.tx, runID, bucket, limit)
}

func listNeedsReview(ctx context.Context, q querier, runID int64, bucket string, limit int) ([]*FileRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + fileRecordColumns + `
		FROM file_records
		WHERE run_id = ? AND needs_review = 1`
	args := []interface{}{runID}
	if bucket != "" {
		query += " AND review_bucket = ?"
		args = append(args, bucket)
	}
	query += " ORDER BY confidence ASC, file_path ASC LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list needs-review records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) CountByType(ctx context.Context, runID int64) (map[string]int, error) {
	return countGrouped(ctx, s.db, `
		SELECT type, COUNT(*) FROM record_types
		WHERE run_id = ? GROUP BY type`, runID)
}

func (t *sqliteTx) CountByType(ctx context.Context, runID int64) (map[string]int, error) {
	return countGrouped(ctx, t.tx, `
		SELECT type, COUNT(*) FROM record_types
		WHERE run_id = ? GROUP BY type`, runID)
}

func (s *SQLiteStorage) CountByDiscipline(ctx context.Context, runID int64) (map[string]int, error) {
	return countGrouped(ctx, s.db, `
		SELECT discipline, COUNT(*) FROM file_records
		WHERE run_id = ? AND failed = 0 GROUP BY discipline`, runID)
}

func (t *sqliteTx) CountByDiscipline(ctx context.Context, runID int64) (map[string]int, error) {
	return countGrouped(ctx, t.tx, `
		SELECT discipline, COUNT(*) FROM file_records
		WHERE run_id = ? AND failed = 0 GROUP BY discipline`, runID)
}

func countGrouped(ctx context.Context, q querier, query string, args ...interface{}) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStorage) ListDuplicateGroups(ctx context.Context, runID int64, byStripped bool, limit int) ([]DuplicateGroup, error) {
	return listDuplicateGroups(ctx, s.db, runID, byStripped, limit)
}

func (t *sqliteTx) ListDuplicateGroups(ctx context.Context, runID int64, byStripped bool, limit int) ([]DuplicateGroup, error) {
	return listDuplicateGroups(ctx, t.tx, runID, byStripped, limit)
}

func listDuplicateGroups(ctx context.Context, q querier, runID int64, byStripped bool, limit int) ([]DuplicateGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	column := "sha256"
	if byStripped {
		column = "sha256_ws"
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS n
		FROM file_records
		WHERE run_id = ? AND `+column+` != ''
		GROUP BY `+column+`
		HAVING n > 1
		ORDER BY n DESC, `+column+` ASC
		LIMIT ?`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []DuplicateGroup
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.Hash, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		paths, err := groupPaths(ctx, q, runID, column, groups[i].Hash)
		if err != nil {
			return nil, err
		}
		groups[i].Paths = paths
	}
	return groups, nil
}

func groupPaths(ctx context.Context, q querier, runID int64, column, hash string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT file_path FROM file_records
		WHERE run_id = ? AND `+column+` = ?
		ORDER BY file_path ASC`, runID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to list group paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
