package extract

import (
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Extract runs every extractor over one tokenized file and assembles the
// result. The raw text is consulted only for single-line comment
// conventions (taxonomy tags); everything else reads the code view or the
// markup spans.
func Extract(tok *tokenizer.Result, raw string) *types.Extraction {
	ex := types.NewExtraction()
	ex.Diagnostics = append(ex.Diagnostics, tok.Diagnostics...)

	codeView := tokenizer.CodeView(tok.Spans)
	ix := tokenizer.NewLineIndex(codeView)

	loadMacros, includes := Macros(codeView, ix)
	for _, name := range loadMacros {
		ex.Macros[name] = true
	}
	ex.Includes = includes

	ex.Widgets = Widgets(codeView, ix)
	ex.Answers = Answers(codeView, ix)

	blanks, embedded := Blanks(tok.Spans)
	ex.Blanks = blanks
	ex.PGMLBlockCount = MarkupBlockCount(tok.Spans)

	ex.Evaluators = AnsEvaluators(codeView, ix)
	ex.Evaluators = append(ex.Evaluators, embedded...)
	ResolveEmbedded(ex.Evaluators, SymbolTable(ex.Answers))

	ex.Wiring = Wire(ex.Widgets, ex.Evaluators)

	ex.HasMultiAnswer = HasMultiAnswer(codeView)
	ex.HasRandomization = HasRandomization(codeView)
	ex.TokenSignals = TokenSignals(codeView)
	ex.AssetSignals = AssetSignals(codeView)
	ex.ResourceExts = ResourceExts(codeView, ix)
	ex.Tags = Tags(raw)

	return ex
}
