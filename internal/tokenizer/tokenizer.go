package tokenizer

import (
	"regexp"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// markupMarkerRx matches a BEGIN_*/END_* block delimiter at line start.
// Longer alternatives come first so PGML_SOLUTION is not cut to PGML.
var markupMarkerRx = regexp.MustCompile(`^[ \t]*(BEGIN|END)_(PGML_SOLUTION|PGML_HINT|PGML|TEXT|SOLUTION|HINT)\b`)

// Result is the tokenizer output for one file.
type Result struct {
	Spans       []types.Span
	Diagnostics []string
}

// Tokenize scans raw text into a total, non-overlapping span sequence.
func Tokenize(text string) *Result {
	res := &Result{}
	lines := splitKeepEnds(text)

	var pending []string // heredoc terminators, FIFO
	var markup types.MarkupKind
	inMarkup := false
	var body strings.Builder
	bodyStart := 0

	for idx, line := range lines {
		lineNo := idx + 1

		if inMarkup {
			body.WriteString(line)
			m := markupMarkerRx.FindStringSubmatch(line)
			if m != nil && m[1] == "END" && types.MarkupKind(m[2]) == markup {
				res.Spans = append(res.Spans, types.Span{
					Kind:      types.SpanMarkupBlock,
					Markup:    markup,
					StartLine: bodyStart,
					EndLine:   lineNo,
					Text:      body.String(),
				})
				inMarkup = false
				body.Reset()
			}
			continue
		}

		if len(pending) > 0 {
			body.WriteString(line)
			if strings.TrimSpace(line) == pending[0] {
				res.Spans = append(res.Spans, types.Span{
					Kind:       types.SpanHeredocBody,
					HeredocTag: pending[0],
					StartLine:  bodyStart,
					EndLine:    lineNo,
					Text:       body.String(),
				})
				pending = pending[1:]
				body.Reset()
				bodyStart = lineNo + 1
			}
			continue
		}

		if m := markupMarkerRx.FindStringSubmatch(line); m != nil && m[1] == "BEGIN" {
			inMarkup = true
			markup = types.MarkupKind(m[2])
			bodyStart = lineNo
			body.WriteString(line)
			continue
		}

		tags := scanNormalLine(line, lineNo, &res.Spans)
		if len(tags) > 0 {
			pending = append(pending, tags...)
			bodyStart = lineNo + 1
		}
	}

	if inMarkup {
		res.Spans = append(res.Spans, types.Span{
			Kind:      types.SpanMarkupBlock,
			Markup:    markup,
			StartLine: bodyStart,
			EndLine:   len(lines),
			Text:      body.String(),
		})
		res.Diagnostics = append(res.Diagnostics, types.FailUnterminatedMarkup)
	}
	if len(pending) > 0 {
		if body.Len() > 0 {
			res.Spans = append(res.Spans, types.Span{
				Kind:       types.SpanHeredocBody,
				HeredocTag: pending[0],
				StartLine:  bodyStart,
				EndLine:    len(lines),
				Text:       body.String(),
			})
		}
		res.Diagnostics = append(res.Diagnostics, types.FailUnterminatedHeredoc)
	}
	return res
}

// scanNormalLine segments one NORMAL-state line into code, string, and
// comment spans, appending them to spans. It returns heredoc terminator
// tags declared on the line, left to right, scanned outside strings and
// before any comment marker.
func scanNormalLine(line string, lineNo int, spans *[]types.Span) []string {
	var tags []string
	inSQ := false
	inDQ := false
	escape := false
	segStart := 0

	emit := func(kind types.SpanKind, end int) {
		if end > segStart {
			*spans = append(*spans, types.Span{
				Kind:      kind,
				StartLine: lineNo,
				EndLine:   lineNo,
				Text:      line[segStart:end],
			})
		}
		segStart = end
	}

	i := 0
	for i < len(line) {
		ch := line[i]
		if escape {
			escape = false
			i++
			continue
		}
		switch {
		case ch == '\\':
			escape = true
			i++
		case !inDQ && ch == '\'' && !inSQ:
			emit(types.SpanCode, i)
			inSQ = true
			i++
		case inSQ && ch == '\'':
			i++
			emit(types.SpanString, i)
			inSQ = false
		case !inSQ && ch == '"' && !inDQ:
			emit(types.SpanCode, i)
			inDQ = true
			i++
		case inDQ && ch == '"':
			i++
			emit(types.SpanString, i)
			inDQ = false
		case !inSQ && !inDQ && ch == '#':
			emit(types.SpanCode, i)
			emit(types.SpanComment, len(line))
			i = len(line)
		case !inSQ && !inDQ && ch == '<' && i+1 < len(line) && line[i+1] == '<':
			tag, next := scanHeredocTag(line, i+2)
			if tag != "" {
				tags = append(tags, tag)
				i = next
			} else {
				i += 2
			}
		default:
			i++
		}
	}

	if segStart < len(line) {
		// An unclosed quote resets at end of line; the open remainder is
		// still string text as far as signal scanning is concerned.
		kind := types.SpanCode
		if inSQ || inDQ {
			kind = types.SpanString
		}
		emit(kind, len(line))
	}
	return tags
}

// scanHeredocTag parses a heredoc introducer tag starting just past "<<".
// It accepts an optional "-", optional whitespace, and either a quoted tag
// or a bare identifier starting with a letter or underscore. Returns the
// tag and the scan position after it, or "" when no valid tag follows.
func scanHeredocTag(line string, j int) (string, int) {
	if j < len(line) && line[j] == '-' {
		j++
	}
	for j < len(line) && isSpace(line[j]) {
		j++
	}
	if j >= len(line) {
		return "", j
	}

	if line[j] == '\'' || line[j] == '"' {
		quote := line[j]
		j++
		start := j
		for j < len(line) && line[j] != quote {
			j++
		}
		if j >= len(line) {
			return "", j
		}
		return line[start:j], j + 1
	}

	if !isAlpha(line[j]) && line[j] != '_' {
		return "", j
	}
	start := j
	j++
	for j < len(line) && (isAlnum(line[j]) || line[j] == '_') {
		j++
	}
	return line[start:j], j
}

// CodeView flattens a span sequence into a string the same length as the
// original text where only code and string-literal bytes are kept; all
// other bytes become spaces with newlines preserved, so offsets and line
// numbers computed against the view match the raw text.
func CodeView(spans []types.Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case types.SpanCode, types.SpanString:
			b.WriteString(s.Text)
		default:
			for i := 0; i < len(s.Text); i++ {
				if s.Text[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
		}
	}
	return b.String()
}

func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlnum(ch byte) bool {
	return isAlpha(ch) || (ch >= '0' && ch <= '9')
}
