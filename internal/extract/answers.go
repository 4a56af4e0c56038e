package extract

import (
	"regexp"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var answerCtorNames = []string{"Real", "Formula", "Compute", "String", "List", "Vector", "Point"}

var answerAssignRx = regexp.MustCompile(
	`\$([A-Za-z_]\w*)\s*=\s*(Real|Formula|Compute|String|List|Vector|Point)\s*\(`)

// Answers finds MathObject constructor assignments like
// $ans = Real(...) in the code view.
func Answers(codeView string, ix *tokenizer.LineIndex) []types.Answer {
	var answers []types.Answer
	for _, m := range answerAssignRx.FindAllStringSubmatchIndex(codeView, -1) {
		varName := codeView[m[2]:m[3]]
		ctor := codeView[m[4]:m[5]]
		ctorStart := m[4]
		parenOpen := m[1] - 1

		expr := codeView[ctorStart : parenOpen+1]
		if closeAt := tokenizer.MatchParen(codeView, parenOpen); closeAt >= 0 {
			expr = codeView[ctorStart : closeAt+1]
		}
		answers = append(answers, types.Answer{
			Var:  varName,
			Ctor: ctor,
			Expr: normalizeWS(expr),
			Line: ix.LineAt(ctorStart),
		})
	}
	return answers
}

// SymbolTable maps each assigned variable to its last constructor name.
func SymbolTable(answers []types.Answer) map[string]string {
	table := make(map[string]string, len(answers))
	for _, a := range answers {
		table[a.Var] = a.Ctor
	}
	return table
}

func normalizeWS(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
