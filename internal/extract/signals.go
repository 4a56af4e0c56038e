package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
)

// Token signal names. These are cheap presence checks over the code view
// used to explain files where full evaluator extraction found nothing.
const (
	SignalAns                  = "ans_token"
	SignalCmp                  = "cmp_token"
	SignalNumCmp               = "num_cmp_token"
	SignalStrCmp               = "str_cmp_token"
	SignalNamedAnsRule         = "named_ans_rule_token"
	SignalNamedAns             = "named_ans_token"
	SignalAnsNumToName         = "ans_num_to_name_token"
	SignalInstallProblemGrader = "install_problem_grader"
	SignalAnswerCtor           = "answer_ctor_token"
	SignalAnsRule              = "ans_rule_token"
	SignalNamedPopupList       = "named_popup_list_token"
	SignalMatchList            = "match_list_token"
)

var tokenSignalRxs = map[string]*regexp.Regexp{
	SignalAns:                  regexp.MustCompile(`\bANS\s*\(`),
	SignalCmp:                  regexp.MustCompile(`->\s*cmp\s*\(`),
	SignalNumCmp:               regexp.MustCompile(`\bnum_cmp\s*\(`),
	SignalStrCmp:               regexp.MustCompile(`\b(?:str_cmp|string_cmp)\s*\(`),
	SignalNamedAnsRule:         regexp.MustCompile(`\b(?:NAMED_ANS_RULE|named_ans_rule)\s*\(`),
	SignalNamedAns:             regexp.MustCompile(`\bNAMED_ANS\s*\(`),
	SignalAnsNumToName:         regexp.MustCompile(`\bANS_NUM_TO_NAME\s*\(`),
	SignalInstallProblemGrader: regexp.MustCompile(`\binstall_problem_grader\b`),
	SignalAnswerCtor:           regexp.MustCompile(`\b(?:Real|Formula|Compute|String|List|Vector|Point)\s*\(`),
	SignalAnsRule:              regexp.MustCompile(`\b(?:ans_rule|answerRule|ans_box)\s*\(`),
	SignalNamedPopupList:       regexp.MustCompile(`\bNAMED_POP_UP_LIST\s*\(`),
	SignalMatchList:            regexp.MustCompile(`\bMatchList\s*\(`),
}

var assetSignalRxs = map[string]*regexp.Regexp{
	"image_call":          regexp.MustCompile(`(?i)\bimage\s*\(`),
	"includegraphics":     regexp.MustCompile(`\\includegraphics\b`),
	"init_graph_call":     regexp.MustCompile(`(?i)\binit_graph\s*\(`),
	"plot_functions_call": regexp.MustCompile(`(?i)\bplot_functions\s*\(`),
	"applet_token":        regexp.MustCompile(`\bApplet\b`),
	"geogebra_token":      regexp.MustCompile(`(?i)\bGeoGebra\b`),
	"livegraphics_token":  regexp.MustCompile(`\bLiveGraphics\b`),
	"js_script_tag":       regexp.MustCompile(`(?i)<\s*script\b`),
	"javascript_token":    regexp.MustCompile(`(?i)\bjavascript\b`),
}

var (
	multiAnswerRx   = regexp.MustCompile(`\bMultiAnswer\s*\(`)
	randomizationRx = regexp.MustCompile(`\b(?:random|list_random)\s*\(`)
	quotedValueRx   = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// TokenSignals evaluates the presence regexes against the code view.
func TokenSignals(codeView string) map[string]bool {
	signals := make(map[string]bool, len(tokenSignalRxs))
	for name, rx := range tokenSignalRxs {
		if rx.MatchString(codeView) {
			signals[name] = true
		}
	}
	return signals
}

// AssetSignals reports external-asset indicators found in the code view,
// sorted for determinism.
func AssetSignals(codeView string) []string {
	var signals []string
	for name, rx := range assetSignalRxs {
		if rx.MatchString(codeView) {
			signals = append(signals, name)
		}
	}
	sort.Strings(signals)
	return signals
}

// ResourceExts collects the distinct file extensions referenced by
// Resources(...) calls, sorted and without the leading dot.
func ResourceExts(codeView string, ix *tokenizer.LineIndex) []string {
	seen := map[string]bool{}
	for _, call := range tokenizer.ScanCalls(codeView, []string{"Resources"}, ix) {
		for _, m := range quotedValueRx.FindAllStringSubmatch(call.ArgText, -1) {
			val := strings.TrimSpace(m[1])
			if val == "" {
				continue
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(val)), ".")
			if ext != "" {
				seen[ext] = true
			}
		}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// HasMultiAnswer reports a MultiAnswer(...) constructor in the code view.
func HasMultiAnswer(codeView string) bool {
	return multiAnswerRx.MatchString(codeView)
}

// HasRandomization reports a random() or list_random() call.
func HasRandomization(codeView string) bool {
	return randomizationRx.MatchString(codeView)
}
