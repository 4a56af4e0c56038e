package aggregate

import "sort"

// SampleSet retains a bounded, deterministic set of example rows. Rows
// are kept in sorted order and trimmed from the top, so the surviving
// set is the lexicographically smallest Limit rows regardless of
// insertion order. Rows start with the file path, which makes the
// ordering a stable path ordering in practice.
type SampleSet struct {
	Limit int
	Rows  []string
}

// NewSampleSet returns an empty set keeping at most limit rows.
func NewSampleSet(limit int) *SampleSet {
	return &SampleSet{Limit: limit}
}

// Add inserts a row, keeping the set sorted, deduplicated, and bounded.
func (s *SampleSet) Add(row string) {
	i := sort.SearchStrings(s.Rows, row)
	if i < len(s.Rows) && s.Rows[i] == row {
		return
	}
	if len(s.Rows) >= s.Limit && i >= s.Limit {
		return
	}
	s.Rows = append(s.Rows, "")
	copy(s.Rows[i+1:], s.Rows[i:])
	s.Rows[i] = row
	if len(s.Rows) > s.Limit {
		s.Rows = s.Rows[:s.Limit]
	}
}

// Merge folds another set's rows into this one.
func (s *SampleSet) Merge(other *SampleSet) {
	if other == nil {
		return
	}
	for _, row := range other.Rows {
		s.Add(row)
	}
}
