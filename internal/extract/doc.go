// Package extract turns tokenizer spans into typed signal records: macro
// loads, answer widgets, MathObject constructor assignments, grading
// evaluators, PGML blank markers, taxonomy tags, and lightweight token and
// asset signals.
//
// Every extractor is a pure function over the span sequence (or the code
// view derived from it) and the raw text. Extractors never mutate shared
// state and never fail on malformed input; unparseable constructs simply
// produce no records.
//
// Extract runs the full set and assembles a types.Extraction, including
// the heuristic widget-to-evaluator wiring and the per-file symbol table
// used to resolve star-spec blank annotations.
package extract
