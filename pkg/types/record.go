package types

import "sort"

// WidgetKind classifies an answer-input construct detected in a file.
type WidgetKind string

const (
	WidgetBlank     WidgetKind = "blank"
	WidgetPGMLBlank WidgetKind = "pgml_blank"
	WidgetRadio     WidgetKind = "radio"
	WidgetPopup     WidgetKind = "popup"
	WidgetCheckbox  WidgetKind = "checkbox"
	WidgetMatching  WidgetKind = "matching"
	WidgetOrdering  WidgetKind = "ordering"
)

// Widget is one detected answer-input occurrence. Multiple occurrences of
// the same kind may be extracted from a file; coverage statistics count at
// most one per (file, kind) pair.
type Widget struct {
	Kind WidgetKind
	Name string // constructor or call name as written in the source
	Line int
}

// EvaluatorSource distinguishes where a grading mechanism was declared.
type EvaluatorSource string

const (
	EvalSourceAnsCall  EvaluatorSource = "ans_call"
	EvalSourcePayload  EvaluatorSource = "pgml_payload"
	EvalSourceStarSpec EvaluatorSource = "pgml_star_spec"
)

// StarSubtype refines a star-spec evaluator by how its expression resolves.
type StarSubtype string

const (
	StarIndirect    StarSubtype = "indirect"
	StarExpression  StarSubtype = "expression"
	StarMatrixEntry StarSubtype = "matrix_entry"
)

// Common evaluator kinds. Kind is an open string set; constants exist for
// the values the classifier branches on.
const (
	EvalKindCmp         = "cmp"
	EvalKindNamedRule   = "named_rule"
	EvalKindNumCmp      = "num_cmp"
	EvalKindFunCmp      = "fun_cmp"
	EvalKindFormulaCmp  = "formula_cmp"
	EvalKindStrCmp      = "str_cmp"
	EvalKindRadioCmp    = "radio_cmp"
	EvalKindCheckboxCmp = "checkbox_cmp"
	EvalKindPopupCmp    = "popup_cmp"
	EvalKindCustom      = "custom"
	EvalKindOther       = "other"
)

// Evaluator is one detected grading mechanism.
type Evaluator struct {
	Source     EvaluatorSource
	Kind       string
	Subtype    StarSubtype // star-spec evaluators only
	Expr       string
	Line       int
	Unresolved bool // star-spec reference that could not be resolved
}

// BlankMarker is one inline answer placeholder found inside a markup block.
type BlankMarker struct {
	Line      int
	Annotated bool   // followed by a {payload} or *{spec} annotation
	Star      bool   // annotation used the star form
	Payload   string // annotation text without the surrounding braces
}

// Answer records a MathObject-style constructor assigned to a variable,
// forming the per-file symbol table used to resolve star-spec references.
type Answer struct {
	Var  string // variable name without the leading sigil
	Ctor string // Real, Formula, Compute, String, List, Vector, Point
	Expr string
	Line int
}

// TagCategory identifies which structured metadata comment a DBTag came from.
type TagCategory string

const (
	TagSubject TagCategory = "subject"
	TagChapter TagCategory = "chapter"
	TagSection TagCategory = "section"
)

// DBTag is one parsed taxonomy comment line.
type DBTag struct {
	Category TagCategory
	Raw      string
	Norm     string // lowercased, whitespace-collapsed
	Line     int
}

// TagLineStat summarizes the taxonomy comment lines of one category
// within a single file.
type TagLineStat struct {
	Lines    int // tag lines of this category
	Blank    int // lines whose value is empty after trimming
	Renormed int // lines whose raw value differed from its normalized form
}

// WireMethod says how a widget was paired with an evaluator.
type WireMethod string

const (
	WireNamed WireMethod = "named"
	WireOrder WireMethod = "order"
)

// Wire pairs one extracted widget with one extracted evaluator, by index
// into the owning Extraction's slices.
type Wire struct {
	WidgetIndex    int
	EvaluatorIndex int
	Method         WireMethod
}

// Extraction holds everything the signal extractors pull out of one file.
// It is produced per file, consumed by the classifier, and then discarded.
type Extraction struct {
	Macros     map[string]bool // loadMacros filenames, presence per file
	Includes   []string        // includePGproblem filenames, deduped in order
	Widgets    []Widget
	Answers    []Answer
	Evaluators []Evaluator
	Blanks     []BlankMarker
	Tags       []DBTag
	Wiring     []Wire

	HasMultiAnswer   bool
	HasRandomization bool
	TokenSignals     map[string]bool
	AssetSignals     []string
	ResourceExts     []string
	PGMLBlockCount   int

	// Diagnostics are structured reason strings attached by the tokenizer
	// or extractors, e.g. "unterminated_heredoc".
	Diagnostics []string
}

// NewExtraction returns an Extraction with its maps initialized.
func NewExtraction() *Extraction {
	return &Extraction{
		Macros:       make(map[string]bool),
		TokenSignals: make(map[string]bool),
	}
}

// MacroNames returns the loaded macro filenames in sorted order.
func (e *Extraction) MacroNames() []string {
	names := make([]string, 0, len(e.Macros))
	for name := range e.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMacro reports whether the named macro file is loaded.
func (e *Extraction) HasMacro(name string) bool {
	return e.Macros[name]
}

// SubjectTag returns the first subject tag, or nil if the file has none.
func (e *Extraction) SubjectTag() *DBTag {
	for i := range e.Tags {
		if e.Tags[i].Category == TagSubject {
			return &e.Tags[i]
		}
	}
	return nil
}

// TagStats folds per-category line statistics over the extracted tags.
func (e *Extraction) TagStats() map[TagCategory]TagLineStat {
	if len(e.Tags) == 0 {
		return nil
	}
	stats := make(map[TagCategory]TagLineStat)
	for _, tag := range e.Tags {
		st := stats[tag.Category]
		st.Lines++
		if tag.Raw == "" {
			st.Blank++
		}
		if tag.Raw != tag.Norm {
			st.Renormed++
		}
		stats[tag.Category] = st
	}
	return stats
}

// HasTag reports whether any tag of the given category was extracted.
func (e *Extraction) HasTag(cat TagCategory) bool {
	for i := range e.Tags {
		if e.Tags[i].Category == cat {
			return true
		}
	}
	return false
}
