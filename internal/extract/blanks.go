package extract

import (
	"regexp"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var pgmlBlankRx = regexp.MustCompile(`\[[ \t]*_+[ \t]*\]`)

// Blanks scans PGML statement blocks for inline answer blanks and any
// attached evaluator annotations. Hint, solution, and plain text blocks
// are skipped: blanks there do not accept student input.
//
// An annotation directly after a blank is either a {payload} carrying the
// grading expression or a *{spec} star form referencing one; both produce
// an Evaluator record alongside the BlankMarker. Star-spec evaluators are
// left for ResolveStarSpecs to refine.
func Blanks(spans []types.Span) ([]types.BlankMarker, []types.Evaluator) {
	var blanks []types.BlankMarker
	var evaluators []types.Evaluator

	for _, span := range spans {
		if span.Kind != types.SpanMarkupBlock || span.Markup != types.MarkupPGML {
			continue
		}
		block := span.Text
		for _, loc := range pgmlBlankRx.FindAllStringIndex(block, -1) {
			line := span.StartLine + strings.Count(block[:loc[0]], "\n")
			marker := types.BlankMarker{Line: line}

			cursor := loc[1]
			for cursor < len(block) && isPGMLSpace(block[cursor]) {
				cursor++
			}
			if cursor < len(block) && block[cursor] == '*' {
				marker.Star = true
				cursor++
				for cursor < len(block) && isPGMLSpace(block[cursor]) {
					cursor++
				}
			}

			if cursor < len(block) && block[cursor] == '{' {
				if closeAt := tokenizer.MatchBrace(block, cursor); closeAt >= 0 {
					payload := strings.TrimSpace(block[cursor+1 : closeAt])
					if payload != "" {
						marker.Annotated = true
						marker.Payload = payload

						source := types.EvalSourcePayload
						if marker.Star {
							source = types.EvalSourceStarSpec
						}
						evaluators = append(evaluators, types.Evaluator{
							Source: source,
							Kind:   classifyExpr(payload),
							Expr:   normalizeWS(payload),
							Line:   line,
						})
					}
				}
			}
			blanks = append(blanks, marker)
		}
	}
	return blanks, evaluators
}

func isPGMLSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// MarkupBlockCount returns the number of PGML statement blocks.
func MarkupBlockCount(spans []types.Span) int {
	n := 0
	for _, span := range spans {
		if span.Kind == types.SpanMarkupBlock && span.Markup == types.MarkupPGML {
			n++
		}
	}
	return n
}
