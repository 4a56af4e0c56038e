package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeRunNotFound   = -32001 // Requested run_id does not exist
	ErrorCodeNoRuns        = -32002 // Database contains no analysis runs
)

// handleCorpusSummary handles the corpus_summary tool invocation
func (s *Server) handleCorpusSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	run, err := s.resolveRun(ctx, args)
	if err != nil {
		return nil, err
	}

	typeCounts, err := s.storage.CountByType(ctx, run.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count types", map[string]interface{}{
			"error": err.Error(),
		})
	}
	disciplineCounts, err := s.storage.CountByDiscipline(ctx, run.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count disciplines", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run":               runInfo(run),
		"type_counts":       typeCounts,
		"discipline_counts": disciplineCounts,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindDuplicates handles the find_duplicates tool invocation
func (s *Server) handleFindDuplicates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	run, err := s.resolveRun(ctx, args)
	if err != nil {
		return nil, err
	}

	hashType := getStringDefault(args, "hash_type", "raw")
	if hashType != "raw" && hashType != "whitespace" {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid hash_type", map[string]interface{}{
			"param":   "hash_type",
			"value":   hashType,
			"allowed": []string{"raw", "whitespace"},
		})
	}

	limit := getIntDefault(args, "limit", 20)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	groups, err := s.storage.ListDuplicateGroups(ctx, run.ID, hashType == "whitespace", limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list duplicate groups", map[string]interface{}{
			"error": err.Error(),
		})
	}

	clusters := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		clusters = append(clusters, map[string]interface{}{
			"hash":  g.Hash,
			"count": g.Count,
			"files": g.Paths,
		})
	}

	response := map[string]interface{}{
		"run_id":    run.ID,
		"hash_type": hashType,
		"clusters":  clusters,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListNeedsReview handles the list_needs_review tool invocation
func (s *Server) handleListNeedsReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	run, err := s.resolveRun(ctx, args)
	if err != nil {
		return nil, err
	}

	bucket := getStringDefault(args, "bucket", "")
	limit := getIntDefault(args, "limit", 20)
	if limit < 1 || limit > 200 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 200", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	records, err := s.storage.ListNeedsReview(ctx, run.ID, bucket, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list needs-review files", map[string]interface{}{
			"error": err.Error(),
		})
	}

	files := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		files = append(files, map[string]interface{}{
			"file":          rec.FilePath,
			"types":         rec.TypeList(),
			"confidence":    rec.Confidence,
			"review_bucket": rec.ReviewBucket,
			"discipline":    rec.Discipline,
			"input_count":   rec.InputCount,
			"ans_count":     rec.AnsCount,
			"blank_count":   rec.BlankCount,
		})
	}

	response := map[string]interface{}{
		"run_id": run.ID,
		"bucket": bucket,
		"files":  files,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDisciplineBreakdown handles the discipline_breakdown tool invocation
func (s *Server) handleDisciplineBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	run, err := s.resolveRun(ctx, args)
	if err != nil {
		return nil, err
	}

	counts, err := s.storage.CountByDiscipline(ctx, run.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count disciplines", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":            run.ID,
		"discipline_counts": counts,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// resolveRun picks the run a query targets: run_id when given, the
// latest run otherwise.
func (s *Server) resolveRun(ctx context.Context, args map[string]interface{}) (*storage.Run, error) {
	if raw, present := args["run_id"]; present {
		runID := getIntDefault(args, "run_id", 0)
		if runID < 1 {
			return nil, newMCPError(ErrorCodeInvalidParams, "run_id must be a positive integer", map[string]interface{}{
				"param": "run_id",
				"value": raw,
			})
		}
		run, err := s.storage.GetRun(ctx, int64(runID))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
				"run_id": runID,
			})
		}
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to load run", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return run, nil
	}

	run, err := s.storage.LatestRun(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNoRuns, "no analysis runs in database; run the analyze command first", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load latest run", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return run, nil
}

// runInfo formats run metadata for tool responses.
func runInfo(run *storage.Run) map[string]interface{} {
	info := map[string]interface{}{
		"id":             run.ID,
		"schema_version": run.SchemaVersion,
		"total_files":    run.TotalFiles,
		"failed_files":   run.FailedFiles,
		"needs_review":   run.NeedsReview,
	}
	if !run.StartedAt.IsZero() {
		info["started_at"] = run.StartedAt.Format(time.RFC3339)
	}
	if !run.FinishedAt.IsZero() {
		info["finished_at"] = run.FinishedAt.Format(time.RFC3339)
	}
	return info
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
