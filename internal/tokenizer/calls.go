package tokenizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Call is one function-style invocation name(...) with balanced
// parentheses. Offsets are byte positions into the scanned text.
type Call struct {
	Name    string
	ArgText string
	Start   int
	End     int
	Line    int
}

var (
	nameRxMu    sync.Mutex
	nameRxCache = map[string]*regexp.Regexp{}
)

func compileNameRx(names []string) *regexp.Regexp {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	parts := make([]string, 0, len(sorted))
	for _, name := range sorted {
		parts = append(parts, regexp.QuoteMeta(name))
	}
	key := strings.Join(parts, "|")

	nameRxMu.Lock()
	defer nameRxMu.Unlock()
	if rx, ok := nameRxCache[key]; ok {
		return rx
	}
	rx := regexp.MustCompile(`\b(?:` + key + `)\b`)
	nameRxCache[key] = rx
	return rx
}

// ScanCalls finds calls to any of the given names with balanced, string-
// aware parentheses. The text is expected to be a CodeView so comments and
// opaque bodies cannot produce matches. A nil index is built on demand.
func ScanCalls(text string, names []string, ix *LineIndex) []Call {
	if len(names) == 0 {
		return nil
	}
	if ix == nil {
		ix = NewLineIndex(text)
	}
	rx := compileNameRx(names)

	var calls []Call
	i := 0
	for {
		loc := rx.FindStringIndex(text[i:])
		if loc == nil {
			break
		}
		start := i + loc[0]
		end := i + loc[1]
		name := text[start:end]

		j := end
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j >= len(text) || text[j] != '(' {
			i = end
			continue
		}

		closeAt := MatchParen(text, j)
		if closeAt < 0 {
			i = end
			continue
		}
		calls = append(calls, Call{
			Name:    name,
			ArgText: text[j+1 : closeAt],
			Start:   start,
			End:     closeAt + 1,
			Line:    ix.LineAt(start),
		})
		i = closeAt + 1
	}
	return calls
}

// MatchParen returns the index of the ")" balancing the "(" at open,
// skipping quoted sections, or -1 when the text runs out first.
func MatchParen(text string, open int) int {
	return matchDelim(text, open, '(', ')')
}

// MatchBrace returns the index of the "}" balancing the "{" at open,
// skipping quoted sections, or -1 when the text runs out first.
func MatchBrace(text string, open int) int {
	return matchDelim(text, open, '{', '}')
}

func matchDelim(text string, open int, openCh, closeCh byte) int {
	if open >= len(text) || text[open] != openCh {
		return -1
	}
	inSQ := false
	inDQ := false
	escape := false
	depth := 0
	for i := open; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case !inDQ && ch == '\'' && !inSQ:
			inSQ = true
		case inSQ && ch == '\'':
			inSQ = false
		case !inSQ && ch == '"' && !inDQ:
			inDQ = true
		case inDQ && ch == '"':
			inDQ = false
		case !inSQ && !inDQ && ch == openCh:
			depth++
		case !inSQ && !inDQ && ch == closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
