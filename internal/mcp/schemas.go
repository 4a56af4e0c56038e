package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// runIDProperty is shared by every tool: all queries default to the most
// recent analysis run.
func runIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Analysis run to query (defaults to the latest run)",
	}
}

// corpusSummaryTool returns the tool definition for corpus_summary
func corpusSummaryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "corpus_summary",
		Description: "Summarize one analysis run: file totals, problem-type counts, and discipline counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": runIDProperty(),
			},
		},
	}
}

// findDuplicatesTool returns the tool definition for find_duplicates
func findDuplicatesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_duplicates",
		Description: "List duplicate problem-file clusters in a run, by exact or whitespace-insensitive content hash",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": runIDProperty(),
				"hash_type": map[string]interface{}{
					"type":        "string",
					"description": "Hash to cluster by: raw (exact bytes) or whitespace (whitespace-stripped)",
					"enum":        []string{"raw", "whitespace"},
					"default":     "raw",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of clusters to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// listNeedsReviewTool returns the tool definition for list_needs_review
func listNeedsReviewTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_needs_review",
		Description: "List files flagged for manual review in a run, lowest confidence first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": runIDProperty(),
				"bucket": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one review bucket (e.g. widget_no_evaluator); empty returns all buckets",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of files to return (1-200)",
					"default":     20,
					"minimum":     1,
					"maximum":     200,
				},
			},
		},
	}
}

// disciplineBreakdownTool returns the tool definition for discipline_breakdown
func disciplineBreakdownTool() mcp.Tool {
	return mcp.Tool{
		Name:        "discipline_breakdown",
		Description: "Count files per discipline bucket for a run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": runIDProperty(),
			},
		},
	}
}
