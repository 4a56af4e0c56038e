// Package types provides shared type definitions for the PG corpus analyzer.
//
// This package defines the domain types passed between the analysis
// pipeline's stages: tokenizer spans, extracted signal records, per-file
// classifications, and the label/bucket vocabularies the reports are built
// from.
//
// # Core Types
//
// Span is one classified region of a PG source file, produced by the
// tokenizer. A file's span sequence is total and non-overlapping:
//
//	span := types.Span{
//	    Kind:      types.SpanHeredocBody,
//	    HeredocTag: "EOT",
//	    StartLine: 12,
//	    EndLine:   18,
//	    Text:      body,
//	}
//
// Extraction collects everything the signal extractors find in one file
// (macro loads, widgets, evaluators, blank markers, metadata tags).
//
// Classification is the classifier's per-file verdict and is the only
// per-file data the aggregator ever sees:
//
//	cls := &types.Classification{
//	    Path:         "opl/Calc/prob01.pg",
//	    Types:        []types.TypeLabel{types.TypeNumericEntry},
//	    EvalCoverage: types.CoveragePGMLOnly,
//	    Discipline:   "mathematics",
//	}
//
// # Bucket Vocabularies
//
// The All* variables and functions (AllTypeLabels, AllEvalCoverages,
// AllCountBuckets, AllConfidenceBins, ...) enumerate every bucket a report
// table may contain, in canonical order. Reports always emit every bucket,
// including zero-count ones, so these lists are part of the report schema.
package types
