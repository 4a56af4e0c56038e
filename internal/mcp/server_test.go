package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
)

// setupServer builds a Server over a throwaway database seeded with one
// finished run and a few file records.
func setupServer(t *testing.T) (*Server, *storage.Run) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	run := &storage.Run{StartedAt: time.Now().UTC()}
	require.NoError(t, store.CreateRun(ctx, run))

	records := []*storage.FileRecord{
		{
			RunID: run.ID, FilePath: "alg/linear.pg", Types: "numeric_entry",
			Confidence: 0.75, Discipline: "mathematics", EvalCoverage: "ans_only",
			InputCount: 1, AnsCount: 1, SHA256: "hash-a", SHA256WS: "ws-a",
		},
		{
			RunID: run.ID, FilePath: "alg/linear_copy.pg", Types: "numeric_entry",
			Confidence: 0.75, Discipline: "mathematics", EvalCoverage: "ans_only",
			InputCount: 1, AnsCount: 1, SHA256: "hash-a", SHA256WS: "ws-a",
		},
		{
			RunID: run.ID, FilePath: "stats/odd.pg", Types: "other",
			Confidence: 0.40, NeedsReview: true, ReviewBucket: "coverage_no_signals",
			Discipline: "statistics", EvalCoverage: "none",
			SHA256: "hash-b", SHA256WS: "ws-b",
		},
	}
	for _, rec := range records {
		require.NoError(t, store.UpsertFileRecord(ctx, rec))
	}
	require.NoError(t, store.FinishRun(ctx, run.ID, 3, 0, 1))

	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		storage: store,
	}
	require.NoError(t, s.registerTools())
	return s, run
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) map[string]interface{} {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool result should be text content")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &response))
	return response
}

func TestCorpusSummary(t *testing.T) {
	s, _ := setupServer(t)

	response := callTool(t, s.handleCorpusSummary, nil)

	run, ok := response["run"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), run["total_files"])
	assert.Equal(t, float64(1), run["needs_review"])

	typeCounts, ok := response["type_counts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), typeCounts["numeric_entry"])
	assert.Equal(t, float64(1), typeCounts["other"])
}

func TestCorpusSummaryExplicitRun(t *testing.T) {
	s, run := setupServer(t)

	response := callTool(t, s.handleCorpusSummary, map[string]interface{}{
		"run_id": float64(run.ID),
	})
	info, ok := response["run"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(run.ID), info["id"])
}

func TestCorpusSummaryRunNotFound(t *testing.T) {
	s, _ := setupServer(t)

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"run_id": float64(999)}
	_, err := s.handleCorpusSummary(context.Background(), request)
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeRunNotFound, mcpErr.Code)
}

func TestFindDuplicates(t *testing.T) {
	s, _ := setupServer(t)

	response := callTool(t, s.handleFindDuplicates, map[string]interface{}{
		"hash_type": "raw",
	})
	clusters, ok := response["clusters"].([]interface{})
	require.True(t, ok)
	require.Len(t, clusters, 1)

	cluster := clusters[0].(map[string]interface{})
	assert.Equal(t, "hash-a", cluster["hash"])
	assert.Equal(t, float64(2), cluster["count"])
}

func TestFindDuplicatesInvalidHashType(t *testing.T) {
	s, _ := setupServer(t)

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"hash_type": "fuzzy"}
	_, err := s.handleFindDuplicates(context.Background(), request)
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestListNeedsReview(t *testing.T) {
	s, _ := setupServer(t)

	response := callTool(t, s.handleListNeedsReview, nil)
	files, ok := response["files"].([]interface{})
	require.True(t, ok)
	require.Len(t, files, 1)

	file := files[0].(map[string]interface{})
	assert.Equal(t, "stats/odd.pg", file["file"])
	assert.Equal(t, "coverage_no_signals", file["review_bucket"])
}

func TestListNeedsReviewBucketFilter(t *testing.T) {
	s, _ := setupServer(t)

	response := callTool(t, s.handleListNeedsReview, map[string]interface{}{
		"bucket": "custom_checker",
	})
	files, ok := response["files"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, files)
}

func TestDisciplineBreakdown(t *testing.T) {
	s, _ := setupServer(t)

	response := callTool(t, s.handleDisciplineBreakdown, nil)
	counts, ok := response["discipline_counts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), counts["mathematics"])
	assert.Equal(t, float64(1), counts["statistics"])
}

func TestNoRuns(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := &Server{mcp: server.NewMCPServer(ServerName, ServerVersion), storage: store}
	require.NoError(t, s.registerTools())

	request := mcp.CallToolRequest{}
	_, err = s.handleCorpusSummary(context.Background(), request)
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNoRuns, mcpErr.Code)
}
