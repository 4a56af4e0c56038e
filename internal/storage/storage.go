package storage

import (
	"context"
	"strings"
	"time"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Storage defines the interface for persisting and querying analysis runs
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, runID int64) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	FinishRun(ctx context.Context, runID int64, totalFiles, failedFiles, needsReview int) error

	// File record operations
	UpsertFileRecord(ctx context.Context, rec *FileRecord) error
	GetFileRecord(ctx context.Context, runID int64, filePath string) (*FileRecord, error)
	ListNeedsReview(ctx context.Context, runID int64, bucket string, limit int) ([]*FileRecord, error)
	CountByType(ctx context.Context, runID int64) (map[string]int, error)
	CountByDiscipline(ctx context.Context, runID int64) (map[string]int, error)
	ListDuplicateGroups(ctx context.Context, runID int64, byStripped bool, limit int) ([]DuplicateGroup, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Run represents one corpus analysis pass
type Run struct {
	ID            int64
	SchemaVersion string
	TotalFiles    int
	FailedFiles   int
	NeedsReview   int
	StartedAt     time.Time
	FinishedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FileRecord is the persisted classification of one problem file within
// a run. Types are stored comma-joined here and additionally exploded
// into record_types for SQL-side grouping.
type FileRecord struct {
	ID           int64
	RunID        int64
	FilePath     string // Relative to corpus root
	AbsPath      string
	Types        string // Comma-joined sorted TypeLabels
	Confidence   float64
	NeedsReview  bool
	ReviewBucket string
	OtherBucket  string
	Discipline   string
	EvalCoverage string
	InputCount   int
	AnsCount     int
	BlankCount   int
	SHA256       string
	SHA256WS     string
	Failed       bool
	FailReason   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TypeList splits the comma-joined Types column back into labels.
func (r *FileRecord) TypeList() []string {
	if r.Types == "" {
		return nil
	}
	return strings.Split(r.Types, ",")
}

// DuplicateGroup is one content hash shared by multiple files in a run.
type DuplicateGroup struct {
	Hash  string
	Count int
	Paths []string
}

// RecordFromClassification converts a classifier result into its
// persisted form.
func RecordFromClassification(runID int64, cl *types.Classification) *FileRecord {
	labels := make([]string, 0, len(cl.Types))
	for _, t := range cl.Types {
		labels = append(labels, string(t))
	}
	return &FileRecord{
		RunID:        runID,
		FilePath:     cl.RelPath,
		AbsPath:      cl.Path,
		Types:        strings.Join(labels, ","),
		Confidence:   cl.Confidence,
		NeedsReview:  cl.NeedsReview,
		ReviewBucket: cl.ReviewBucket,
		OtherBucket:  cl.OtherBucket,
		Discipline:   cl.Discipline,
		EvalCoverage: string(cl.EvalCoverage),
		InputCount:   cl.InputCount,
		AnsCount:     cl.AnsCallCount,
		BlankCount:   cl.BlankCount,
		SHA256:       cl.SHA256,
		SHA256WS:     cl.SHA256WS,
		Failed:       cl.Failed,
		FailReason:   cl.FailReason,
	}
}
