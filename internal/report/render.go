package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/aggregate"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/classify"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Fixed bucket sets. Every render includes these keys even at zero so
// the report shape never depends on what the corpus happened to contain.
var (
	fixedTypeKeys   = labelStrings(types.AllTypeLabels)
	fixedWidgetKeys = widgetStrings(types.AllWidgetKinds)
	fixedSourceKeys = sourceStrings(types.AllEvalSources)
	fixedEvalKinds  = []string{
		types.EvalKindCmp, types.EvalKindNamedRule, types.EvalKindNumCmp,
		types.EvalKindFunCmp, types.EvalKindFormulaCmp, types.EvalKindStrCmp,
		types.EvalKindRadioCmp, types.EvalKindCheckboxCmp, types.EvalKindPopupCmp,
		types.EvalKindCustom, types.EvalKindOther,
	}
	fixedReviewKeys = []string{
		classify.ReviewCoverageNoSignals, classify.ReviewCustomChecker,
		classify.ReviewMultipartUnclear, classify.ReviewMacroOnlyWidgetMissing,
		classify.ReviewWidgetNoEvaluator, classify.ReviewEvaluatorNoWidget,
		classify.ReviewLowConfidenceMisc,
	}
	fixedOtherKeys = []string{
		classify.OtherAppletLike, classify.OtherGraphLike,
		classify.OtherCustomEvaluator, classify.OtherWidgetlessAns,
		classify.OtherCmpOnly, classify.OtherMarkupNoBlanks,
		classify.OtherNoSignals, classify.OtherUncategorized,
	}
	fixedMissingKeys = []string{
		classify.MissingPGMLBlankOnly, classify.MissingCmpPresent,
		classify.MissingAnsUnparsed, classify.MissingNamedAnsPresent,
		classify.MissingAnsNumToName, classify.MissingCustomGrader,
		classify.MissingAnswerCtorPresent, classify.MissingTrueNoSignals,
	}
	fixedFailKeys = []string{
		types.FailUnreadable, types.FailEncoding,
		types.FailUnterminatedHeredoc, types.FailUnterminatedMarkup,
	}
	fixedTagKeys = []string{
		string(types.TagSubject), string(types.TagChapter), string(types.TagSection),
	}
	fixedTagCoverageKeys = tagCoverageKeys()
)

// tagCoverageKeys enumerates the coverage metrics per taxonomy tag, in
// report order.
func tagCoverageKeys() []string {
	metrics := []string{
		"_files", "_files_nonblank", "_lines_total",
		"_lines_blank", "_changed_by_normalization",
	}
	var keys []string
	for _, cat := range fixedTagKeys {
		for _, m := range metrics {
			keys = append(keys, "db"+cat+m)
		}
	}
	return keys
}

// Render maps a fold state to the full report tree: relative path to
// file content. Pure and deterministic.
func Render(state *aggregate.State) map[string]string {
	out := map[string]string{}

	put := func(rel, keyName string, counts map[string]int, fixed []string) {
		out[rel] = renderCounts(rel, keyName, counts, fixed)
	}

	// summary/
	out["summary/run_totals.tsv"] = renderTotals(state)
	put("summary/type_counts.tsv", "type", state.TypeCounts, fixedTypeKeys)
	put("summary/confidence_bins.tsv", "bin", state.ConfidenceBins, types.AllConfidenceBins())
	put("summary/coverage_widgets_vs_evaluator_source.tsv", "bucket", state.Coverage, types.AllCoverageKeys())
	put("summary/evaluator_source_counts.tsv", "source", state.EvalSourceCounts, fixedSourceKeys)
	out["summary/discipline_counts.tsv"] = renderDisciplines(state.DisciplineCounts)
	out["summary/discipline_coverage.tsv"] = renderTagCoverage(state.TagCoverage)

	// counts/
	put("counts/macro_counts.tsv", "macro", state.MacroCounts, nil)
	put("counts/widget_kind_counts.tsv", "widget_kind", state.WidgetCounts, fixedWidgetKeys)
	put("counts/evaluator_kind_counts.tsv", "evaluator_kind", state.EvalKindCounts, fixedEvalKinds)
	put("counts/tag_presence_counts.tsv", "tag", state.TaggedCounts, fixedTagKeys)
	put("counts/feature_signal_counts.tsv", "feature", state.FeatureCounts, []string{aggregate.FeatureRandomization})

	// discipline/
	out["discipline/discipline_subject_counts.tsv"] = renderPairs("discipline/discipline_subject_counts.tsv", "discipline", "subject", state.SubjectByDiscipline)
	put("discipline/unclassified_subject_counts.tsv", "subject", unclassifiedSubjects(state), nil)
	out["discipline/discipline_samples.tsv"] = renderSamples("discipline/discipline_samples.tsv", state.DisciplineSamples)

	// cross_tabs/
	out["cross_tabs/type_x_widget_kind.tsv"] = renderPairs("cross_tabs/type_x_widget_kind.tsv", "type", "widget_kind", state.TypeByWidget)
	out["cross_tabs/type_x_evaluator_kind.tsv"] = renderPairs("cross_tabs/type_x_evaluator_kind.tsv", "type", "evaluator_kind", state.TypeByEvalKind)
	out["cross_tabs/type_x_evaluator_source.tsv"] = renderPairs("cross_tabs/type_x_evaluator_source.tsv", "type", "source", state.TypeByEvalSource)
	out["cross_tabs/type_x_evaluator_coverage.tsv"] = renderPairs("cross_tabs/type_x_evaluator_coverage.tsv", "type", "coverage", state.TypeByCoverage)
	out["cross_tabs/widget_kind_x_evaluator_kind.tsv"] = renderPairs("cross_tabs/widget_kind_x_evaluator_kind.tsv", "widget_kind", "evaluator_kind", state.WidgetByEvalKind)

	// histograms/
	put("histograms/input_count_hist.tsv", "bucket", state.InputHist, types.AllCountBuckets)
	put("histograms/ans_count_hist.tsv", "bucket", state.AnsHist, types.AllCountBuckets)
	put("histograms/pgml_blank_marker_hist.tsv", "bucket", state.BlankHist, types.AllCountBuckets)
	put("histograms/duplicate_group_size_raw_hist.tsv", "bucket", groupSizeHist(state.ByRawHash), types.AllCountBuckets)
	put("histograms/duplicate_group_size_ws_hist.tsv", "bucket", groupSizeHist(state.ByStrippedHash), types.AllCountBuckets)

	// needs_review/
	put("needs_review/needs_review_bucket_counts.tsv", "bucket", state.ReviewBucketCounts, fixedReviewKeys)
	put("needs_review/needs_review_type_counts.tsv", "type", state.ReviewTypeCounts, fixedTypeKeys)
	put("needs_review/needs_review_macro_counts.tsv", "macro", state.ReviewMacroCounts, nil)
	put("needs_review/evaluator_missing_reasons_counts.tsv", "reason", state.MissingEvalReasons, fixedMissingKeys)
	out["needs_review/needs_review_samples.tsv"] = renderSamples("needs_review/needs_review_samples.tsv", state.ReviewSamples)

	// other/
	put("other/other_breakdown.tsv", "bucket", state.OtherBreakdown, fixedOtherKeys)
	put("other/macro_counts_other.tsv", "macro", state.OtherMacroCounts, nil)
	put("other/widget_counts_other.tsv", "widget_kind", state.OtherWidgetCounts, fixedWidgetKeys)
	put("other/evaluator_counts_other.tsv", "evaluator_kind", state.OtherEvalCounts, fixedEvalKinds)
	put("other/other_pgml_blank_hist.tsv", "bucket", state.OtherBlankHist, types.AllCountBuckets)
	out["other/other_samples.tsv"] = renderSamples("other/other_samples.tsv", state.OtherSamples)

	// duplicates/
	out["duplicates/duplicate_clusters_raw.tsv"] = renderClusters("duplicates/duplicate_clusters_raw.tsv", state.ByRawHash)
	out["duplicates/duplicate_clusters_ws.tsv"] = renderClusters("duplicates/duplicate_clusters_ws.tsv", state.ByStrippedHash)

	// diagnostics/
	put("diagnostics/fail_reason_counts.tsv", "reason", state.FailReasons, fixedFailKeys)
	put("diagnostics/diagnostic_counts.tsv", "diagnostic", state.DiagnosticCounts, nil)

	// lists/
	for _, key := range unionKeys(state.TypeFiles, fixedTypeKeys) {
		out["lists/type/"+key+"_files.txt"] = renderPathList(state.TypeFiles[key])
	}
	for _, key := range unionKeys(state.WidgetFiles, fixedWidgetKeys) {
		out["lists/widget/"+key+"_files.txt"] = renderPathList(state.WidgetFiles[key])
	}
	for _, key := range unionKeys(state.EvalFiles, fixedEvalKinds) {
		out["lists/evaluator/"+key+"_files.txt"] = renderPathList(state.EvalFiles[key])
	}

	out["INDEX.txt"] = indexText()
	return out
}

// renderCounts emits key\tcount rows for the union of fixed and
// observed keys, sorted by descending count then ascending key.
func renderCounts(relPath, keyName string, counts map[string]int, fixed []string) string {
	keys := unionKeys(mapToLists(counts), fixed)

	type row struct {
		key   string
		count int
	}
	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, row{k, counts[k]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})

	var sb strings.Builder
	sb.WriteString(tsvHeader(relPath))
	sb.WriteString(keyName + "\tcount\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s\t%d\n", r.key, r.count)
	}
	return sb.String()
}

func renderPairs(rel, left, right string, counts map[aggregate.Pair]int) string {
	type row struct {
		pair  aggregate.Pair
		count int
	}
	rows := make([]row, 0, len(counts))
	for p, c := range counts {
		rows = append(rows, row{p, c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		if rows[i].pair[0] != rows[j].pair[0] {
			return rows[i].pair[0] < rows[j].pair[0]
		}
		return rows[i].pair[1] < rows[j].pair[1]
	})

	var sb strings.Builder
	sb.WriteString(tsvHeader(rel))
	sb.WriteString(left + "\t" + right + "\tcount\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s\t%s\t%d\n", r.pair[0], r.pair[1], r.count)
	}
	return sb.String()
}

func renderTotals(state *aggregate.State) string {
	var sb strings.Builder
	sb.WriteString(tsvHeader("summary/run_totals.tsv"))
	sb.WriteString("key\tvalue\n")
	fmt.Fprintf(&sb, "schema_version\t%s\n", SchemaVersion)
	fmt.Fprintf(&sb, "total_files\t%d\n", state.TotalFiles)
	fmt.Fprintf(&sb, "failed_files\t%d\n", state.FailedFiles)
	fmt.Fprintf(&sb, "needs_review_total\t%d\n", state.NeedsReviewTotal)
	return sb.String()
}

// renderDisciplines keeps the fixed discipline order, appending any
// configured-in extras after it.
func renderDisciplines(counts map[string]int) string {
	seen := map[string]bool{}
	keys := make([]string, 0, len(classify.DisciplineOrder))
	for _, d := range classify.DisciplineOrder {
		seen[d] = true
		keys = append(keys, d)
	}
	var extras []string
	for d := range counts {
		if !seen[d] {
			extras = append(extras, d)
		}
	}
	sort.Strings(extras)
	keys = append(keys, extras...)

	var sb strings.Builder
	sb.WriteString(tsvHeader("summary/discipline_counts.tsv"))
	sb.WriteString("discipline\tcount\n")
	for _, d := range keys {
		fmt.Fprintf(&sb, "%s\t%d\n", d, counts[d])
	}
	return sb.String()
}

// renderTagCoverage emits the taxonomy coverage metrics in their fixed
// order rather than count order, so related metrics stay adjacent.
func renderTagCoverage(counts map[string]int) string {
	var sb strings.Builder
	sb.WriteString(tsvHeader("summary/discipline_coverage.tsv"))
	sb.WriteString("metric\tcount\n")
	for _, k := range fixedTagCoverageKeys {
		fmt.Fprintf(&sb, "%s\t%d\n", k, counts[k])
	}
	return sb.String()
}

func renderSamples(relPath string, samples map[string]*aggregate.SampleSet) string {
	buckets := make([]string, 0, len(samples))
	for b := range samples {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)

	var sb strings.Builder
	sb.WriteString(tsvHeader(relPath))
	sb.WriteString("bucket\tfile\tconfidence\ttypes\tinput_count\tans_count\tblank_count\n")
	for _, b := range buckets {
		for _, row := range samples[b].Rows {
			sb.WriteString(b + "\t" + row + "\n")
		}
	}
	return sb.String()
}

func renderClusters(relPath string, index map[string][]string) string {
	type cluster struct {
		hash string
		rep  string
		size int
	}
	var clusters []cluster
	for hash, paths := range aggregate.DuplicateGroups(index) {
		sorted := append([]string(nil), paths...)
		sort.Strings(sorted)
		clusters = append(clusters, cluster{hash: hash, rep: sorted[0], size: len(sorted)})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].size != clusters[j].size {
			return clusters[i].size > clusters[j].size
		}
		if clusters[i].rep != clusters[j].rep {
			return clusters[i].rep < clusters[j].rep
		}
		return clusters[i].hash < clusters[j].hash
	})

	var sb strings.Builder
	sb.WriteString(tsvHeader(relPath))
	sb.WriteString("hash\tgroup_size\trepresentative_file\n")
	for _, c := range clusters {
		fmt.Fprintf(&sb, "%s\t%d\t%s\n", c.hash, c.size, c.rep)
	}
	return sb.String()
}

func renderPathList(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n") + "\n"
}

// unclassifiedSubjects projects out the subject counts that fell through
// every discipline rule.
func unclassifiedSubjects(state *aggregate.State) map[string]int {
	counts := map[string]int{}
	for pair, n := range state.SubjectByDiscipline {
		if pair[0] == classify.DisciplineUnclassified {
			counts[pair[1]] += n
		}
	}
	return counts
}

func groupSizeHist(index map[string][]string) map[string]int {
	hist := map[string]int{}
	for _, paths := range aggregate.DuplicateGroups(index) {
		hist[types.CountBucket(len(paths))]++
	}
	return hist
}

func unionKeys(lists map[string][]string, fixed []string) []string {
	seen := map[string]bool{}
	keys := make([]string, 0, len(fixed)+len(lists))
	for _, k := range fixed {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var extras []string
	for k := range lists {
		if !seen[k] {
			seen[k] = true
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return append(keys, extras...)
}

func mapToLists(counts map[string]int) map[string][]string {
	lists := make(map[string][]string, len(counts))
	for k := range counts {
		lists[k] = nil
	}
	return lists
}

func labelStrings(labels []types.TypeLabel) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

func widgetStrings(kinds []types.WidgetKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func sourceStrings(sources []types.EvaluatorSource) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}

func indexText() string {
	lines := []string{
		"corpus analysis output index",
		"Note: TSV files start with '#' comment headers.",
		"",
		"Start here:",
		"- summary/run_totals.tsv",
		"- summary/type_counts.tsv",
		"- summary/coverage_widgets_vs_evaluator_source.tsv",
		"- summary/discipline_counts.tsv",
		"- summary/discipline_coverage.tsv",
		"- discipline/discipline_subject_counts.tsv",
		"- needs_review/needs_review_bucket_counts.tsv",
		"",
		"Then:",
		"- other/other_breakdown.tsv",
		"- cross_tabs/type_x_widget_kind.tsv",
		"- cross_tabs/widget_kind_x_evaluator_kind.tsv",
		"- duplicates/duplicate_clusters_raw.tsv",
		"",
		"For tuning:",
		"- needs_review/evaluator_missing_reasons_counts.tsv",
		"- needs_review/needs_review_samples.tsv",
		"- other/other_samples.tsv",
		"",
		"Per-bucket file lists:",
		"- lists/type/*_files.txt",
		"- lists/widget/*_files.txt",
		"- lists/evaluator/*_files.txt",
		"",
	}
	return strings.Join(lines, "\n")
}
