package tokenizer

import "sort"

// LineIndex maps byte offsets to 1-based line numbers.
type LineIndex struct {
	newlines []int
}

// NewLineIndex records the positions of newline bytes in text.
func NewLineIndex(text string) *LineIndex {
	ix := &LineIndex{}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			ix.newlines = append(ix.newlines, i)
		}
	}
	return ix
}

// LineAt returns the 1-based line number containing the byte at pos.
func (ix *LineIndex) LineAt(pos int) int {
	return sort.SearchInts(ix.newlines, pos) + 1
}
