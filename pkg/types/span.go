package types

import "errors"

// SpanKind classifies a region of a PG source file.
type SpanKind string

const (
	SpanCode        SpanKind = "code"
	SpanComment     SpanKind = "comment"
	SpanString      SpanKind = "string"
	SpanHeredocBody SpanKind = "heredoc_body"
	SpanMarkupBlock SpanKind = "markup_block"
)

// MarkupKind identifies which BEGIN_*/END_* pair delimits a markup block.
type MarkupKind string

const (
	MarkupPGML         MarkupKind = "PGML"
	MarkupPGMLSolution MarkupKind = "PGML_SOLUTION"
	MarkupPGMLHint     MarkupKind = "PGML_HINT"
	MarkupText         MarkupKind = "TEXT"
	MarkupSolution     MarkupKind = "SOLUTION"
	MarkupHint         MarkupKind = "HINT"
)

// Span is one classified region of source text.
//
// Spans are emitted in file order with no gaps and no overlaps;
// concatenating Text across a file's span sequence reproduces the raw
// input byte for byte. Line numbers are 1-based and inclusive.
type Span struct {
	Kind       SpanKind
	Markup     MarkupKind // set only when Kind == SpanMarkupBlock
	HeredocTag string     // set only when Kind == SpanHeredocBody
	StartLine  int
	EndLine    int
	Text       string
}

// Validate checks structural consistency of the span
func (s *Span) Validate() error {
	switch s.Kind {
	case SpanCode, SpanComment, SpanString, SpanHeredocBody, SpanMarkupBlock:
	default:
		return errors.New("invalid span kind")
	}

	if s.StartLine <= 0 || s.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if s.StartLine > s.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	if s.Kind == SpanMarkupBlock && s.Markup == "" {
		return errors.New("markup block span requires a markup kind")
	}

	return nil
}
