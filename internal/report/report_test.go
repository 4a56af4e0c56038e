package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/aggregate"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

func sampleClassification(relPath string, label types.TypeLabel) *types.Classification {
	return &types.Classification{
		Path:         "/corpus/" + relPath,
		RelPath:      relPath,
		Types:        []types.TypeLabel{label},
		Reasons:      []string{"macro:test"},
		Confidence:   0.75,
		EvalCoverage: types.CoverageAnsOnly,
		HasWidget:    true,
		Discipline:   "mathematics",
		WidgetKinds:  []types.WidgetKind{types.WidgetBlank},
		EvalSources:  []types.EvaluatorSource{types.EvalSourceAnsCall},
		EvalKinds:    []string{types.EvalKindNumCmp},
		Macros:       []string{"PGstandard.pl"},
		AnsCallCount: 1,
		InputCount:   1,
		WiredCount:   1,
		SHA256:       "raw-" + relPath,
		SHA256WS:     "ws-" + relPath,
	}
}

func TestRenderEmptyStateEmitsEveryFile(t *testing.T) {
	files := Render(aggregate.NewState())

	wantFiles := []string{
		"INDEX.txt",
		"summary/run_totals.tsv",
		"summary/type_counts.tsv",
		"summary/confidence_bins.tsv",
		"summary/coverage_widgets_vs_evaluator_source.tsv",
		"summary/evaluator_source_counts.tsv",
		"summary/discipline_counts.tsv",
		"summary/discipline_coverage.tsv",
		"counts/macro_counts.tsv",
		"counts/widget_kind_counts.tsv",
		"counts/evaluator_kind_counts.tsv",
		"counts/tag_presence_counts.tsv",
		"counts/feature_signal_counts.tsv",
		"discipline/discipline_subject_counts.tsv",
		"discipline/unclassified_subject_counts.tsv",
		"discipline/discipline_samples.tsv",
		"cross_tabs/type_x_widget_kind.tsv",
		"cross_tabs/type_x_evaluator_kind.tsv",
		"cross_tabs/type_x_evaluator_source.tsv",
		"cross_tabs/type_x_evaluator_coverage.tsv",
		"cross_tabs/widget_kind_x_evaluator_kind.tsv",
		"histograms/input_count_hist.tsv",
		"histograms/ans_count_hist.tsv",
		"histograms/pgml_blank_marker_hist.tsv",
		"histograms/duplicate_group_size_raw_hist.tsv",
		"histograms/duplicate_group_size_ws_hist.tsv",
		"needs_review/needs_review_bucket_counts.tsv",
		"needs_review/needs_review_type_counts.tsv",
		"needs_review/needs_review_macro_counts.tsv",
		"needs_review/evaluator_missing_reasons_counts.tsv",
		"needs_review/needs_review_samples.tsv",
		"other/other_breakdown.tsv",
		"other/macro_counts_other.tsv",
		"other/widget_counts_other.tsv",
		"other/evaluator_counts_other.tsv",
		"other/other_pgml_blank_hist.tsv",
		"other/other_samples.tsv",
		"duplicates/duplicate_clusters_raw.tsv",
		"duplicates/duplicate_clusters_ws.tsv",
		"diagnostics/fail_reason_counts.tsv",
		"diagnostics/diagnostic_counts.tsv",
		"lists/type/numeric_entry_files.txt",
		"lists/type/other_files.txt",
		"lists/widget/radio_files.txt",
		"lists/evaluator/num_cmp_files.txt",
	}
	for _, f := range wantFiles {
		assert.Contains(t, files, f)
	}
}

func TestRenderEmptyStateZeroRows(t *testing.T) {
	files := Render(aggregate.NewState())

	typeCounts := files["summary/type_counts.tsv"]
	for _, label := range types.AllTypeLabels {
		assert.Contains(t, typeCounts, string(label)+"\t0\n")
	}

	bins := files["summary/confidence_bins.tsv"]
	assert.Contains(t, bins, "0.0-0.1\t0\n")
	assert.Contains(t, bins, "0.9-1.0\t0\n")

	coverage := files["summary/coverage_widgets_vs_evaluator_source.tsv"]
	for _, key := range types.AllCoverageKeys() {
		assert.Contains(t, coverage, key+"\t0\n")
	}

	totals := files["summary/run_totals.tsv"]
	assert.Contains(t, totals, "schema_version\t1.0.0\n")
	assert.Contains(t, totals, "total_files\t0\n")
}

func TestRenderHeaderFormat(t *testing.T) {
	files := Render(aggregate.NewState())

	for path, content := range files {
		if !strings.HasSuffix(path, ".tsv") {
			continue
		}
		lines := strings.Split(content, "\n")
		require.Greater(t, len(lines), 5, path)
		assert.True(t, strings.HasPrefix(lines[0], "# Population: "), path)
		assert.True(t, strings.HasPrefix(lines[1], "# Unit: "), path)
		assert.True(t, strings.HasPrefix(lines[2], "# Notes: "), path)
		assert.True(t, strings.HasPrefix(lines[3], "# Sorted: "), path)
		assert.Equal(t, "# ----", lines[4], path)
	}

	assert.Contains(t, files["summary/run_totals.tsv"], "# Unit: one value per row\n")
}

func TestRenderCountSorting(t *testing.T) {
	state := aggregate.NewState()
	state.Add(sampleClassification("a.pg", types.TypeNumericEntry))
	state.Add(sampleClassification("b.pg", types.TypeNumericEntry))
	state.Add(sampleClassification("c.pg", types.TypeEssay))

	content := files(t, state)["summary/type_counts.tsv"]
	rows := dataRows(content)
	assert.Equal(t, "numeric_entry\t2", rows[0])
	assert.Equal(t, "essay\t1", rows[1])
	// remaining labels are zero, in ascending key order
	assert.Equal(t, "assignment_ordering\t0", rows[2])
}

func TestRenderPairSorting(t *testing.T) {
	state := aggregate.NewState()
	state.Add(sampleClassification("a.pg", types.TypeNumericEntry))
	state.Add(sampleClassification("b.pg", types.TypeNumericEntry))

	content := files(t, state)["cross_tabs/type_x_widget_kind.tsv"]
	rows := dataRows(content)
	require.Len(t, rows, 1)
	assert.Equal(t, "numeric_entry\tblank\t2", rows[0])

	coverage := dataRows(files(t, state)["cross_tabs/type_x_evaluator_coverage.tsv"])
	require.Len(t, coverage, 1)
	assert.Equal(t, "numeric_entry\tans_only\t2", coverage[0])
}

func TestRenderTagCoverageFixedMetricOrder(t *testing.T) {
	state := aggregate.NewState()
	cl := sampleClassification("a.pg", types.TypeNumericEntry)
	cl.TagStats = map[types.TagCategory]types.TagLineStat{
		types.TagSubject: {Lines: 2, Blank: 1, Renormed: 1},
	}
	state.Add(cl)

	rows := dataRows(files(t, state)["summary/discipline_coverage.tsv"])
	require.Len(t, rows, 15)
	assert.Equal(t, "dbsubject_files\t1", rows[0])
	assert.Equal(t, "dbsubject_files_nonblank\t1", rows[1])
	assert.Equal(t, "dbsubject_lines_total\t2", rows[2])
	assert.Equal(t, "dbsubject_lines_blank\t1", rows[3])
	assert.Equal(t, "dbsubject_changed_by_normalization\t1", rows[4])
	assert.Equal(t, "dbchapter_files\t0", rows[5])
}

func TestRenderDisciplineFixedOrder(t *testing.T) {
	state := aggregate.NewState()
	state.Add(sampleClassification("a.pg", types.TypeNumericEntry))

	rows := dataRows(files(t, state)["summary/discipline_counts.tsv"])
	require.GreaterOrEqual(t, len(rows), 10)
	assert.Equal(t, "mathematics\t1", rows[0])
	assert.Equal(t, "statistics\t0", rows[1])
	assert.Equal(t, "none\t0", rows[9])
}

func TestRenderDisciplineSubjects(t *testing.T) {
	state := aggregate.NewState()
	tagged := sampleClassification("a.pg", types.TypeNumericEntry)
	tagged.Subject = "algebra"
	state.Add(tagged)
	odd := sampleClassification("b.pg", types.TypeNumericEntry)
	odd.Discipline = "unclassified"
	odd.Subject = "underwater basket weaving"
	state.Add(odd)

	out := files(t, state)
	assert.Contains(t, out["discipline/discipline_subject_counts.tsv"], "mathematics\talgebra\t1\n")
	assert.Contains(t, out["discipline/unclassified_subject_counts.tsv"], "underwater basket weaving\t1\n")
	assert.Contains(t, out["discipline/discipline_samples.tsv"], "mathematics\ta.pg\t")
}

func TestRenderFeatureCounts(t *testing.T) {
	state := aggregate.NewState()
	cl := sampleClassification("a.pg", types.TypeNumericEntry)
	cl.HasRandomization = true
	cl.AssetSignals = []string{"image_call"}
	state.Add(cl)

	content := files(t, state)["counts/feature_signal_counts.tsv"]
	assert.Contains(t, content, "randomization\t1\n")
	assert.Contains(t, content, "image_call\t1\n")
}

func TestRenderDuplicateClusters(t *testing.T) {
	state := aggregate.NewState()
	a := sampleClassification("dup/a.pg", types.TypeNumericEntry)
	b := sampleClassification("dup/b.pg", types.TypeNumericEntry)
	b.SHA256 = a.SHA256
	b.SHA256WS = a.SHA256WS
	state.Add(a)
	state.Add(b)
	state.Add(sampleClassification("solo.pg", types.TypeEssay))

	rows := dataRows(files(t, state)["duplicates/duplicate_clusters_raw.tsv"])
	require.Len(t, rows, 1)
	assert.Equal(t, a.SHA256+"\t2\tdup/a.pg", rows[0])

	hist := files(t, state)["histograms/duplicate_group_size_raw_hist.tsv"]
	assert.Contains(t, hist, "2\t1\n")
}

func TestRenderFileLists(t *testing.T) {
	state := aggregate.NewState()
	state.Add(sampleClassification("b.pg", types.TypeNumericEntry))
	state.Add(sampleClassification("a.pg", types.TypeNumericEntry))

	out := files(t, state)
	assert.Equal(t, "a.pg\nb.pg\n", out["lists/type/numeric_entry_files.txt"])
	assert.Equal(t, "", out["lists/type/essay_files.txt"])
}

func TestRenderByteStable(t *testing.T) {
	build := func(order []string) map[string]string {
		state := aggregate.NewState()
		for _, p := range order {
			state.Add(sampleClassification(p, types.TypeNumericEntry))
		}
		return Render(state)
	}
	first := build([]string{"a.pg", "b.pg", "c.pg"})
	second := build([]string{"c.pg", "a.pg", "b.pg"})
	assert.Equal(t, first, second)
}

func TestWriteCreatesTree(t *testing.T) {
	dir := t.TempDir()
	state := aggregate.NewState()
	state.Add(sampleClassification("a.pg", types.TypeNumericEntry))

	require.NoError(t, Write(dir, Render(state)))

	data, err := os.ReadFile(filepath.Join(dir, "summary", "type_counts.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "numeric_entry\t1\n")

	_, err = os.Stat(filepath.Join(dir, "INDEX.txt"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".write_probe"))
	assert.True(t, os.IsNotExist(err))
}

func files(t *testing.T, state *aggregate.State) map[string]string {
	t.Helper()
	return Render(state)
}

// dataRows strips the comment header and the column header, returning
// only data rows.
func dataRows(content string) []string {
	var rows []string
	sawColumns := false
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !sawColumns {
			sawColumns = true
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
