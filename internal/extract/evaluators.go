package extract

import (
	"regexp"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var (
	namedRuleExprRx   = regexp.MustCompile(`\bnamed_ans_rule\s*\(`)
	radioCmpRx        = regexp.MustCompile(`\bradio_cmp\s*\(`)
	checkboxCmpRx     = regexp.MustCompile(`\bcheckbox_cmp\s*\(`)
	popupCmpRx        = regexp.MustCompile(`\bpopup_cmp\s*\(`)
	numCmpRx          = regexp.MustCompile(`\bnum_cmp\s*\(`)
	funCmpRx          = regexp.MustCompile(`\bfun_cmp\s*\(`)
	formulaCmpRx      = regexp.MustCompile(`\bformula_cmp\s*\(`)
	strCmpRx          = regexp.MustCompile(`\b(?:str_cmp|string_cmp)\s*\(`)
	customCheckerRx   = regexp.MustCompile(`\bchecker\s*=>\s*sub\s*\{`)
	methodCmpRx       = regexp.MustCompile(`->\s*cmp\s*\(`)
	bareVarRx         = regexp.MustCompile(`^\$([A-Za-z_]\w*)$`)
	matrixElementRx   = regexp.MustCompile(`\$[A-Za-z_]\w*\s*->\s*(?:element|entry)\s*\(`)
	matrixSubscriptRx = regexp.MustCompile(`^\$[A-Za-z_]\w*\s*\[`)
)

// AnsEvaluators finds ANS(...) calls in the code view and classifies the
// grading expression inside each one.
func AnsEvaluators(codeView string, ix *tokenizer.LineIndex) []types.Evaluator {
	calls := tokenizer.ScanCalls(codeView, []string{"ANS"}, ix)
	evaluators := make([]types.Evaluator, 0, len(calls))
	for _, call := range calls {
		expr := normalizeWS(call.ArgText)
		evaluators = append(evaluators, types.Evaluator{
			Source: types.EvalSourceAnsCall,
			Kind:   classifyExpr(expr),
			Expr:   expr,
			Line:   call.Line,
		})
	}
	return evaluators
}

// classifyExpr maps a grading expression to an evaluator kind. The chain
// is ordered; the first matching rule wins.
func classifyExpr(expr string) string {
	switch {
	case methodCmpRx.MatchString(expr):
		return types.EvalKindCmp
	case namedRuleExprRx.MatchString(expr):
		return types.EvalKindNamedRule
	case radioCmpRx.MatchString(expr):
		return types.EvalKindRadioCmp
	case checkboxCmpRx.MatchString(expr):
		return types.EvalKindCheckboxCmp
	case popupCmpRx.MatchString(expr):
		return types.EvalKindPopupCmp
	case numCmpRx.MatchString(expr):
		return types.EvalKindNumCmp
	case funCmpRx.MatchString(expr):
		return types.EvalKindFunCmp
	case formulaCmpRx.MatchString(expr):
		return types.EvalKindFormulaCmp
	case strCmpRx.MatchString(expr):
		return types.EvalKindStrCmp
	case customCheckerRx.MatchString(expr):
		return types.EvalKindCustom
	default:
		return types.EvalKindOther
	}
}

// ResolveEmbedded refines markup-embedded evaluators using the per-file
// symbol table. Star-spec forms get a subtype: a bare $var that resolves
// through the table is an indirect reference, indexed or element access is
// a matrix entry, and anything else containing computation is an
// expression. Bare references that do not resolve are flagged unresolved
// instead of guessed. Payload forms keep no subtype, but a bare $var whose
// constructor is String bumps the kind to str_cmp either way.
func ResolveEmbedded(evaluators []types.Evaluator, symbols map[string]string) {
	for i := range evaluators {
		e := &evaluators[i]
		if e.Source == types.EvalSourceAnsCall {
			continue
		}

		star := e.Source == types.EvalSourceStarSpec
		expr := e.Expr
		if star && (matrixElementRx.MatchString(expr) || matrixSubscriptRx.MatchString(expr)) {
			e.Subtype = types.StarMatrixEntry
			continue
		}
		if m := bareVarRx.FindStringSubmatch(expr); m != nil {
			ctor, ok := symbols[m[1]]
			if !ok {
				e.Unresolved = true
				continue
			}
			if star {
				e.Subtype = types.StarIndirect
			}
			if ctor == "String" {
				e.Kind = types.EvalKindStrCmp
			}
			continue
		}
		if star {
			e.Subtype = types.StarExpression
		}
	}
}
