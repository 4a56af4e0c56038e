package types

// Classification is the per-file output of the classifier: everything the
// aggregator needs, with no reference back to raw text or spans.
type Classification struct {
	// Identification
	Path    string
	RelPath string

	// Failure handling. Failed files still count toward the scan total
	// and the duplicate index but contribute to no label counts.
	Failed     bool
	FailReason string

	// Labels
	Types      []TypeLabel // sorted, deduplicated; never empty for non-failed files
	Reasons    []string    // rule reason codes, in firing order
	Confidence float64

	// Review routing
	NeedsReview  bool
	ReviewBucket string
	OtherBucket  string // set when Types includes TypeOther

	// Coverage buckets
	EvalCoverage EvalCoverage
	HasWidget    bool
	Discipline   string
	Subject      string // normalized subject tag text, empty when untagged

	// Per-file detail retained for cross-tabs and histograms
	WidgetKinds  []WidgetKind      // unique, sorted
	EvalSources  []EvaluatorSource // unique, sorted
	EvalKinds    []string          // unique, sorted
	Macros       []string          // unique, sorted
	MissingEval  string            // reason an evaluator was expected but absent
	BlankCount   int
	AnsCallCount int
	InputCount   int
	WiredCount   int
	PGMLBlocks   int

	// Corpus-wide feature signals
	HasRandomization bool
	AssetSignals     []string // unique, sorted

	// Metadata tag presence and line coverage
	HasSubjectTag bool
	HasChapterTag bool
	HasSectionTag bool
	TagStats      map[TagCategory]TagLineStat // nil when the file has no tags

	// Content hashes, hex-encoded
	SHA256   string
	SHA256WS string // whitespace-stripped variant for near-duplicate grouping

	Diagnostics []string
}

// HasType reports whether the classification carries the given label.
func (c *Classification) HasType(t TypeLabel) bool {
	for _, label := range c.Types {
		if label == t {
			return true
		}
	}
	return false
}

// CoverageKey returns the combined widget x evaluator bucket key for this file.
func (c *Classification) CoverageKey() string {
	return CoverageKey(c.HasWidget, c.EvalCoverage)
}
