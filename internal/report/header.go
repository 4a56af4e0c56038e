package report

// SchemaVersion identifies the report layout. Renaming, reordering, or
// re-bucketing any output file is a version bump: consumers diff
// reports across runs and silent layout drift breaks them.
const SchemaVersion = "1.0.0"

// meta is the descriptive header carried by every TSV.
type meta struct {
	Population string
	Unit       string
	Notes      string
	Sorted     string
}

var defaultMeta = meta{
	Population: "all .pg files under roots",
	Unit:       "one row aggregates multiple files",
	Notes:      "see column headers",
	Sorted:     "count desc, then keys asc",
}

// metaOverrides adjusts the header for files whose shape differs from
// the default counts table.
var metaOverrides = map[string]meta{
	"summary/run_totals.tsv": {
		Unit:   "one value per row",
		Notes:  "corpus-level totals for this run",
		Sorted: "row order is fixed; do not sort",
	},
	"summary/discipline_counts.tsv": {
		Unit:   "each non-failed file contributes 1 to exactly one discipline",
		Notes:  "derived from the normalized DBsubject tag via ordered substring rules",
		Sorted: "discipline order is fixed",
	},
	"summary/discipline_coverage.tsv": {
		Unit:   "file and line coverage metrics for DBsubject/DBchapter/DBsection",
		Notes:  "blanks are counted after quote-stripping and trimming; changed_by_normalization counts raw != normalized",
		Sorted: "metric order is fixed",
	},
	"counts/feature_signal_counts.tsv": {
		Unit:  "each file contributes at most 1 per feature",
		Notes: "presence of randomization calls and external-asset tokens",
	},
	"discipline/discipline_subject_counts.tsv": {
		Unit:  "each tagged file contributes 1 to its (discipline, subject) cell",
		Notes: "subject is the normalized DBsubject text",
	},
	"discipline/discipline_samples.tsv": {
		Unit:   "one row per sampled file",
		Notes:  "bounded per discipline; the lexicographically smallest paths are kept",
		Sorted: "discipline asc, then path asc",
	},
	"needs_review/needs_review_samples.tsv": {
		Population: "files flagged needs_review",
		Unit:       "one row per sampled file",
		Notes:      "bounded per bucket; the lexicographically smallest paths are kept",
		Sorted:     "bucket asc, then path asc",
	},
	"other/other_samples.tsv": {
		Population: "files labeled other",
		Unit:       "one row per sampled file",
		Notes:      "bounded per bucket; the lexicographically smallest paths are kept",
		Sorted:     "bucket asc, then path asc",
	},
	"duplicates/duplicate_clusters_raw.tsv": {
		Unit:   "one row per duplicate cluster",
		Notes:  "sha256 over raw bytes; clusters are exact duplicates",
		Sorted: "group_size desc, then representative_file asc, then hash asc",
	},
	"duplicates/duplicate_clusters_ws.tsv": {
		Unit:   "one row per duplicate cluster",
		Notes:  "sha256 after removing ASCII whitespace; clusters are near-duplicates",
		Sorted: "group_size desc, then representative_file asc, then hash asc",
	},
	"diagnostics/fail_reason_counts.tsv": {
		Population: "files excluded from label counts",
		Notes:      "failed files still count toward total_files and the duplicate index",
		Sorted:     "count desc, then keys asc",
	},
}

func metaFor(relPath string) meta {
	m := defaultMeta
	if o, ok := metaOverrides[relPath]; ok {
		if o.Population != "" {
			m.Population = o.Population
		}
		if o.Unit != "" {
			m.Unit = o.Unit
		}
		if o.Notes != "" {
			m.Notes = o.Notes
		}
		if o.Sorted != "" {
			m.Sorted = o.Sorted
		}
	}
	return m
}

func tsvHeader(relPath string) string {
	m := metaFor(relPath)
	return "# Population: " + m.Population + "\n" +
		"# Unit: " + m.Unit + "\n" +
		"# Notes: " + m.Notes + "\n" +
		"# Sorted: " + m.Sorted + "\n" +
		"# ----\n"
}
