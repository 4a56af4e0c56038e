package aggregate

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

func numericFile(rel string) *types.Classification {
	return &types.Classification{
		Path:         "/corpus/" + rel,
		RelPath:      rel,
		Types:        []types.TypeLabel{types.TypeNumericEntry},
		Reasons:      []string{"evaluator_or_ctor:numeric"},
		Confidence:   0.4,
		NeedsReview:  true,
		ReviewBucket: "evaluator_no_widget",
		EvalCoverage: types.CoverageAnsOnly,
		Discipline:   "mathematics",
		EvalKinds:    []string{types.EvalKindNumCmp},
		EvalSources:  []types.EvaluatorSource{types.EvalSourceAnsCall},
		Macros:       []string{"PGstandard.pl"},
		AnsCallCount: 1,
		SHA256:       "aa01",
		SHA256WS:     "bb01",
	}
}

func choiceFile(rel string) *types.Classification {
	return &types.Classification{
		Path:         "/corpus/" + rel,
		RelPath:      rel,
		Types:        []types.TypeLabel{types.TypeMultipleChoice},
		Confidence:   0.7,
		EvalCoverage: types.CoverageAnsOnly,
		HasWidget:    true,
		Discipline:   "statistics",
		WidgetKinds:  []types.WidgetKind{types.WidgetRadio},
		EvalKinds:    []string{types.EvalKindCmp},
		EvalSources:  []types.EvaluatorSource{types.EvalSourceAnsCall},
		Macros:       []string{"parserRadioButtons.pl"},
		InputCount:   1,
		AnsCallCount: 1,
		WiredCount:   1,
		SHA256:       "aa02",
		SHA256WS:     "bb02",
	}
}

func failedFile(rel, reason string) *types.Classification {
	return &types.Classification{
		Path:       "/corpus/" + rel,
		RelPath:    rel,
		Failed:     true,
		FailReason: reason,
		SHA256:     "aa03",
		SHA256WS:   "bb03",
	}
}

func normalize(s *State) *State {
	for _, lists := range []map[string][]string{
		s.ByRawHash, s.ByStrippedHash, s.TypeFiles, s.WidgetFiles, s.EvalFiles,
	} {
		for _, paths := range lists {
			sort.Strings(paths)
		}
	}
	return s
}

func TestAddCountsBasics(t *testing.T) {
	s := NewState()
	s.Add(numericFile("a.pg"))
	s.Add(choiceFile("b.pg"))

	assert.Equal(t, 2, s.TotalFiles)
	assert.Equal(t, 0, s.FailedFiles)
	assert.Equal(t, 1, s.TypeCounts["numeric_entry"])
	assert.Equal(t, 1, s.TypeCounts["multiple_choice"])
	assert.Equal(t, 1, s.WidgetCounts["radio"])
	assert.Equal(t, 1, s.ConfidenceBins["0.4-0.5"])
	assert.Equal(t, 1, s.ConfidenceBins["0.7-0.8"])
	assert.Equal(t, 1, s.Coverage["widgets=none,eval=ans_only"])
	assert.Equal(t, 1, s.Coverage["widgets=some,eval=ans_only"])
	assert.Equal(t, 1, s.DisciplineCounts["mathematics"])
	assert.Equal(t, 1, s.DisciplineCounts["statistics"])
	assert.Equal(t, 2, s.AnsHist["1"])
	assert.Equal(t, []string{"a.pg"}, s.TypeFiles["numeric_entry"])
}

func TestAddCrossTabsUseNonePlaceholder(t *testing.T) {
	s := NewState()
	s.Add(numericFile("a.pg")) // no widgets

	assert.Equal(t, 1, s.TypeByWidget[Pair{"numeric_entry", "none"}])
	assert.Equal(t, 1, s.TypeByEvalKind[Pair{"numeric_entry", "num_cmp"}])
	assert.Equal(t, 1, s.WidgetByEvalKind[Pair{"none", "num_cmp"}])
	assert.Equal(t, 1, s.TypeByEvalSource[Pair{"numeric_entry", "ans_call"}])
}

func TestAddTagCoverage(t *testing.T) {
	s := NewState()
	cl := numericFile("a.pg")
	cl.HasSubjectTag = true
	cl.TagStats = map[types.TagCategory]types.TagLineStat{
		types.TagSubject: {Lines: 2, Blank: 1, Renormed: 1},
		types.TagChapter: {Lines: 1},
	}
	s.Add(cl)

	assert.Equal(t, 1, s.TagCoverage["dbsubject_files"])
	assert.Equal(t, 1, s.TagCoverage["dbsubject_files_nonblank"])
	assert.Equal(t, 2, s.TagCoverage["dbsubject_lines_total"])
	assert.Equal(t, 1, s.TagCoverage["dbsubject_lines_blank"])
	assert.Equal(t, 1, s.TagCoverage["dbsubject_changed_by_normalization"])
	assert.Equal(t, 1, s.TagCoverage["dbchapter_files"])
	assert.Equal(t, 0, s.TagCoverage["dbsection_files"])
}

func TestAddFailedFileCountsTotalOnly(t *testing.T) {
	s := NewState()
	s.Add(failedFile("bad.pg", types.FailEncoding))

	assert.Equal(t, 1, s.TotalFiles)
	assert.Equal(t, 1, s.FailedFiles)
	assert.Equal(t, 1, s.FailReasons[types.FailEncoding])
	assert.Empty(t, s.TypeCounts)
	assert.Empty(t, s.Coverage)
	// Failed files still join the duplicate index.
	assert.Len(t, s.ByRawHash["aa03"], 1)
}

func TestAddNeedsReviewSamples(t *testing.T) {
	s := NewState()
	s.Add(numericFile("b.pg"))
	s.Add(numericFile("a.pg"))

	assert.Equal(t, 2, s.NeedsReviewTotal)
	assert.Equal(t, 2, s.ReviewBucketCounts["evaluator_no_widget"])
	set := s.ReviewSamples["evaluator_no_widget"]
	require.NotNil(t, set)
	require.Len(t, set.Rows, 2)
	// Rows stay path-sorted no matter the insertion order.
	assert.Less(t, set.Rows[0], set.Rows[1])
}

func TestSampleSetBoundKeepsSmallest(t *testing.T) {
	set := NewSampleSet(2)
	set.Add("c.pg\trow")
	set.Add("a.pg\trow")
	set.Add("b.pg\trow")
	set.Add("a.pg\trow") // duplicate

	assert.Equal(t, []string{"a.pg\trow", "b.pg\trow"}, set.Rows)
}

func TestMergeMatchesSequentialFold(t *testing.T) {
	files := []*types.Classification{
		numericFile("a.pg"),
		choiceFile("b.pg"),
		failedFile("c.pg", types.FailUnreadable),
		numericFile("d.pg"),
	}

	sequential := NewState()
	for _, cl := range files {
		sequential.Add(cl)
	}

	left, right := NewState(), NewState()
	left.Add(files[3])
	left.Add(files[1])
	right.Add(files[0])
	right.Add(files[2])
	merged := NewState()
	merged.Merge(right)
	merged.Merge(left)

	assert.Equal(t, normalize(sequential), normalize(merged))
}

func TestDuplicateGroups(t *testing.T) {
	s := NewState()
	a := numericFile("a.pg")
	b := numericFile("b.pg")
	c := choiceFile("c.pg")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	groups := DuplicateGroups(s.ByRawHash)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"a.pg", "b.pg"}, groups["aa01"])
}
