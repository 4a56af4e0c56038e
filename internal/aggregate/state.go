package aggregate

import (
	"fmt"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Default bounds for retained example rows.
const (
	DefaultReviewSampleLimit     = 40
	DefaultOtherSampleLimit      = 20
	DefaultDisciplineSampleLimit = 10
)

// Pair is one cross-tab cell key.
type Pair [2]string

// FeatureRandomization is the FeatureCounts key for files that call
// random() or list_random(). Asset signals are counted under their own
// extractor-assigned names.
const FeatureRandomization = "randomization"

// State is the corpus-wide fold of per-file classifications. All maps
// are sparse: a key absent from a map means zero, and the reporter is
// responsible for emitting fixed bucket sets with explicit zeros.
type State struct {
	TotalFiles  int
	FailedFiles int
	FailReasons map[string]int

	TypeCounts       map[string]int
	ConfidenceBins   map[string]int
	MacroCounts      map[string]int
	WidgetCounts     map[string]int
	EvalKindCounts   map[string]int
	EvalSourceCounts map[string]int
	DisciplineCounts map[string]int
	TaggedCounts     map[string]int
	TagCoverage      map[string]int
	FeatureCounts    map[string]int
	Coverage         map[string]int

	// Discipline detail: subject tag text per discipline bucket, plus
	// bounded per-discipline example rows.
	SubjectByDiscipline map[Pair]int
	DisciplineSamples   map[string]*SampleSet

	InputHist map[string]int
	AnsHist   map[string]int
	BlankHist map[string]int

	TypeByWidget     map[Pair]int
	TypeByEvalKind   map[Pair]int
	TypeByEvalSource map[Pair]int
	TypeByCoverage   map[Pair]int
	WidgetByEvalKind map[Pair]int

	NeedsReviewTotal   int
	ReviewBucketCounts map[string]int
	ReviewTypeCounts   map[string]int
	ReviewMacroCounts  map[string]int
	ReviewSamples      map[string]*SampleSet

	OtherBreakdown     map[string]int
	OtherMacroCounts   map[string]int
	OtherWidgetCounts  map[string]int
	OtherEvalCounts    map[string]int
	OtherBlankHist     map[string]int
	OtherSamples       map[string]*SampleSet
	MissingEvalReasons map[string]int

	DiagnosticCounts map[string]int

	// Duplicate indexes: hex hash to the set of file paths carrying it.
	// ByRawHash groups exact byte duplicates; ByStrippedHash groups
	// files identical after whitespace removal.
	ByRawHash      map[string][]string
	ByStrippedHash map[string][]string

	// Per-bucket file path lists backing the lists/ report tree.
	TypeFiles   map[string][]string
	WidgetFiles map[string][]string
	EvalFiles   map[string][]string

	reviewSampleLimit     int
	otherSampleLimit      int
	disciplineSampleLimit int
}

// Option configures a State.
type Option func(*State)

// WithReviewSampleLimit bounds retained needs-review example rows per bucket.
func WithReviewSampleLimit(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.reviewSampleLimit = n
		}
	}
}

// WithOtherSampleLimit bounds retained other-bucket example rows per bucket.
func WithOtherSampleLimit(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.otherSampleLimit = n
		}
	}
}

// WithDisciplineSampleLimit bounds retained example rows per discipline.
func WithDisciplineSampleLimit(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.disciplineSampleLimit = n
		}
	}
}

// NewState returns an empty fold state.
func NewState(opts ...Option) *State {
	s := &State{
		FailReasons:           map[string]int{},
		TypeCounts:            map[string]int{},
		ConfidenceBins:        map[string]int{},
		MacroCounts:           map[string]int{},
		WidgetCounts:          map[string]int{},
		EvalKindCounts:        map[string]int{},
		EvalSourceCounts:      map[string]int{},
		DisciplineCounts:      map[string]int{},
		TaggedCounts:          map[string]int{},
		TagCoverage:           map[string]int{},
		FeatureCounts:         map[string]int{},
		Coverage:              map[string]int{},
		SubjectByDiscipline:   map[Pair]int{},
		DisciplineSamples:     map[string]*SampleSet{},
		InputHist:             map[string]int{},
		AnsHist:               map[string]int{},
		BlankHist:             map[string]int{},
		TypeByWidget:          map[Pair]int{},
		TypeByEvalKind:        map[Pair]int{},
		TypeByEvalSource:      map[Pair]int{},
		TypeByCoverage:        map[Pair]int{},
		WidgetByEvalKind:      map[Pair]int{},
		ReviewBucketCounts:    map[string]int{},
		ReviewTypeCounts:      map[string]int{},
		ReviewMacroCounts:     map[string]int{},
		ReviewSamples:         map[string]*SampleSet{},
		OtherBreakdown:        map[string]int{},
		OtherMacroCounts:      map[string]int{},
		OtherWidgetCounts:     map[string]int{},
		OtherEvalCounts:       map[string]int{},
		OtherBlankHist:        map[string]int{},
		OtherSamples:          map[string]*SampleSet{},
		MissingEvalReasons:    map[string]int{},
		DiagnosticCounts:      map[string]int{},
		ByRawHash:             map[string][]string{},
		ByStrippedHash:        map[string][]string{},
		TypeFiles:             map[string][]string{},
		WidgetFiles:           map[string][]string{},
		EvalFiles:             map[string][]string{},
		reviewSampleLimit:     DefaultReviewSampleLimit,
		otherSampleLimit:      DefaultOtherSampleLimit,
		disciplineSampleLimit: DefaultDisciplineSampleLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add folds one classification into the state.
func (s *State) Add(cl *types.Classification) {
	s.TotalFiles++

	if cl.SHA256 != "" {
		s.ByRawHash[cl.SHA256] = append(s.ByRawHash[cl.SHA256], cl.RelPath)
	}
	if cl.SHA256WS != "" {
		s.ByStrippedHash[cl.SHA256WS] = append(s.ByStrippedHash[cl.SHA256WS], cl.RelPath)
	}
	for _, d := range cl.Diagnostics {
		s.DiagnosticCounts[d]++
	}

	if cl.Failed {
		s.FailedFiles++
		s.FailReasons[cl.FailReason]++
		return
	}

	for _, t := range cl.Types {
		s.TypeCounts[string(t)]++
		s.TypeFiles[string(t)] = append(s.TypeFiles[string(t)], cl.RelPath)
	}
	s.ConfidenceBins[types.ConfidenceBin(cl.Confidence)]++
	for _, m := range cl.Macros {
		s.MacroCounts[m]++
	}
	for _, w := range cl.WidgetKinds {
		s.WidgetCounts[string(w)]++
		s.WidgetFiles[string(w)] = append(s.WidgetFiles[string(w)], cl.RelPath)
	}
	for _, k := range cl.EvalKinds {
		s.EvalKindCounts[k]++
		s.EvalFiles[k] = append(s.EvalFiles[k], cl.RelPath)
	}
	for _, src := range cl.EvalSources {
		s.EvalSourceCounts[string(src)]++
	}
	s.DisciplineCounts[cl.Discipline]++
	s.addDiscipline(cl)
	if cl.HasRandomization {
		s.FeatureCounts[FeatureRandomization]++
	}
	for _, a := range cl.AssetSignals {
		s.FeatureCounts[a]++
	}
	if cl.HasSubjectTag {
		s.TaggedCounts[string(types.TagSubject)]++
	}
	if cl.HasChapterTag {
		s.TaggedCounts[string(types.TagChapter)]++
	}
	if cl.HasSectionTag {
		s.TaggedCounts[string(types.TagSection)]++
	}
	s.addTagCoverage(cl)
	s.Coverage[cl.CoverageKey()]++

	s.InputHist[types.CountBucket(cl.InputCount)]++
	s.AnsHist[types.CountBucket(cl.AnsCallCount)]++
	s.BlankHist[types.CountBucket(cl.BlankCount)]++

	s.addCrossTabs(cl)
	if cl.MissingEval != "" {
		s.MissingEvalReasons[cl.MissingEval]++
	}
	if cl.NeedsReview {
		s.addNeedsReview(cl)
	}
	if cl.HasType(types.TypeOther) {
		s.addOther(cl)
	}
}

func (s *State) addCrossTabs(cl *types.Classification) {
	typeSet := make([]string, 0, len(cl.Types))
	for _, t := range cl.Types {
		typeSet = append(typeSet, string(t))
	}
	widgetSet := make([]string, 0, len(cl.WidgetKinds))
	for _, w := range cl.WidgetKinds {
		widgetSet = append(widgetSet, string(w))
	}
	evalSet := append([]string(nil), cl.EvalKinds...)
	sourceSet := make([]string, 0, len(cl.EvalSources))
	for _, src := range cl.EvalSources {
		sourceSet = append(sourceSet, string(src))
	}

	// Empty dimensions still contribute a row under the "none" placeholder
	// so cross-tab column sums match the file total.
	if len(typeSet) == 0 {
		typeSet = []string{"none"}
	}
	if len(widgetSet) == 0 {
		widgetSet = []string{"none"}
	}
	if len(evalSet) == 0 {
		evalSet = []string{"none"}
	}
	if len(sourceSet) == 0 {
		sourceSet = []string{"none"}
	}

	for _, t := range typeSet {
		for _, w := range widgetSet {
			s.TypeByWidget[Pair{t, w}]++
		}
		for _, e := range evalSet {
			s.TypeByEvalKind[Pair{t, e}]++
		}
		for _, src := range sourceSet {
			s.TypeByEvalSource[Pair{t, src}]++
		}
		s.TypeByCoverage[Pair{t, string(cl.EvalCoverage)}]++
	}
	for _, w := range widgetSet {
		for _, e := range evalSet {
			s.WidgetByEvalKind[Pair{w, e}]++
		}
	}
}

// addTagCoverage folds per-category taxonomy line statistics into the
// metric keys reported in the discipline coverage table.
func (s *State) addTagCoverage(cl *types.Classification) {
	for cat, st := range cl.TagStats {
		prefix := "db" + string(cat)
		s.TagCoverage[prefix+"_files"]++
		if st.Lines > st.Blank {
			s.TagCoverage[prefix+"_files_nonblank"]++
		}
		s.TagCoverage[prefix+"_lines_total"] += st.Lines
		s.TagCoverage[prefix+"_lines_blank"] += st.Blank
		s.TagCoverage[prefix+"_changed_by_normalization"] += st.Renormed
	}
}

func (s *State) addDiscipline(cl *types.Classification) {
	if cl.Subject != "" {
		s.SubjectByDiscipline[Pair{cl.Discipline, cl.Subject}]++
	}

	set := s.DisciplineSamples[cl.Discipline]
	if set == nil {
		set = NewSampleSet(s.disciplineSampleLimit)
		s.DisciplineSamples[cl.Discipline] = set
	}
	set.Add(sampleRow(cl))
}

func (s *State) addNeedsReview(cl *types.Classification) {
	s.NeedsReviewTotal++
	s.ReviewBucketCounts[cl.ReviewBucket]++
	for _, t := range cl.Types {
		s.ReviewTypeCounts[string(t)]++
	}
	for _, m := range cl.Macros {
		s.ReviewMacroCounts[m]++
	}

	set := s.ReviewSamples[cl.ReviewBucket]
	if set == nil {
		set = NewSampleSet(s.reviewSampleLimit)
		s.ReviewSamples[cl.ReviewBucket] = set
	}
	set.Add(sampleRow(cl))
}

func (s *State) addOther(cl *types.Classification) {
	s.OtherBreakdown[cl.OtherBucket]++
	for _, m := range cl.Macros {
		s.OtherMacroCounts[m]++
	}
	for _, w := range cl.WidgetKinds {
		s.OtherWidgetCounts[string(w)]++
	}
	for _, k := range cl.EvalKinds {
		s.OtherEvalCounts[k]++
	}
	s.OtherBlankHist[types.CountBucket(cl.BlankCount)]++

	set := s.OtherSamples[cl.OtherBucket]
	if set == nil {
		set = NewSampleSet(s.otherSampleLimit)
		s.OtherSamples[cl.OtherBucket] = set
	}
	set.Add(sampleRow(cl))
}

// sampleRow formats one example line. The path leads so SampleSet
// ordering is path ordering.
func sampleRow(cl *types.Classification) string {
	labels := make([]string, 0, len(cl.Types))
	for _, t := range cl.Types {
		labels = append(labels, string(t))
	}
	return fmt.Sprintf("%s\t%.2f\t%s\t%d\t%d\t%d",
		cl.RelPath, cl.Confidence, strings.Join(labels, ","),
		cl.InputCount, cl.AnsCallCount, cl.BlankCount)
}

// Merge folds another state into this one. The other state must not be
// used afterward; its sample sets are consumed.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	s.TotalFiles += other.TotalFiles
	s.FailedFiles += other.FailedFiles
	s.NeedsReviewTotal += other.NeedsReviewTotal

	mergeCounts(s.FailReasons, other.FailReasons)
	mergeCounts(s.TypeCounts, other.TypeCounts)
	mergeCounts(s.ConfidenceBins, other.ConfidenceBins)
	mergeCounts(s.MacroCounts, other.MacroCounts)
	mergeCounts(s.WidgetCounts, other.WidgetCounts)
	mergeCounts(s.EvalKindCounts, other.EvalKindCounts)
	mergeCounts(s.EvalSourceCounts, other.EvalSourceCounts)
	mergeCounts(s.DisciplineCounts, other.DisciplineCounts)
	mergeCounts(s.TaggedCounts, other.TaggedCounts)
	mergeCounts(s.TagCoverage, other.TagCoverage)
	mergeCounts(s.FeatureCounts, other.FeatureCounts)
	mergeCounts(s.Coverage, other.Coverage)
	mergeCounts(s.InputHist, other.InputHist)
	mergeCounts(s.AnsHist, other.AnsHist)
	mergeCounts(s.BlankHist, other.BlankHist)
	mergeCounts(s.ReviewBucketCounts, other.ReviewBucketCounts)
	mergeCounts(s.ReviewTypeCounts, other.ReviewTypeCounts)
	mergeCounts(s.ReviewMacroCounts, other.ReviewMacroCounts)
	mergeCounts(s.OtherBreakdown, other.OtherBreakdown)
	mergeCounts(s.OtherMacroCounts, other.OtherMacroCounts)
	mergeCounts(s.OtherWidgetCounts, other.OtherWidgetCounts)
	mergeCounts(s.OtherEvalCounts, other.OtherEvalCounts)
	mergeCounts(s.OtherBlankHist, other.OtherBlankHist)
	mergeCounts(s.MissingEvalReasons, other.MissingEvalReasons)
	mergeCounts(s.DiagnosticCounts, other.DiagnosticCounts)

	mergePairs(s.SubjectByDiscipline, other.SubjectByDiscipline)
	mergePairs(s.TypeByWidget, other.TypeByWidget)
	mergePairs(s.TypeByEvalKind, other.TypeByEvalKind)
	mergePairs(s.TypeByEvalSource, other.TypeByEvalSource)
	mergePairs(s.TypeByCoverage, other.TypeByCoverage)
	mergePairs(s.WidgetByEvalKind, other.WidgetByEvalKind)

	mergeLists(s.ByRawHash, other.ByRawHash)
	mergeLists(s.ByStrippedHash, other.ByStrippedHash)
	mergeLists(s.TypeFiles, other.TypeFiles)
	mergeLists(s.WidgetFiles, other.WidgetFiles)
	mergeLists(s.EvalFiles, other.EvalFiles)

	mergeSamples(s.ReviewSamples, other.ReviewSamples, s.reviewSampleLimit)
	mergeSamples(s.OtherSamples, other.OtherSamples, s.otherSampleLimit)
	mergeSamples(s.DisciplineSamples, other.DisciplineSamples, s.disciplineSampleLimit)
}

func mergeCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func mergePairs(dst, src map[Pair]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func mergeLists(dst, src map[string][]string) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}

func mergeSamples(dst, src map[string]*SampleSet, limit int) {
	for bucket, set := range src {
		into := dst[bucket]
		if into == nil {
			into = NewSampleSet(limit)
			dst[bucket] = into
		}
		into.Merge(set)
	}
}

// DuplicateGroups returns, for one hash index, the hashes carried by
// more than one file. Paths within a group are not sorted here; the
// reporter sorts at render time.
func DuplicateGroups(index map[string][]string) map[string][]string {
	groups := map[string][]string{}
	for hash, paths := range index {
		if len(paths) > 1 {
			groups[hash] = paths
		}
	}
	return groups
}
