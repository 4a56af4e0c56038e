package extract

import (
	"regexp"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// dbTagRx matches the OPL taxonomy comment convention, e.g.
// ## DBsubject(Calculus - single variable)
var dbTagRx = regexp.MustCompile(`^\s*##\s*DB(subject|chapter|section)\s*\(([^)]*)\)`)

// Tags parses taxonomy comment lines from the raw text. These are a
// single-line comment convention, so they are read independently of the
// span state machine.
func Tags(raw string) []types.DBTag {
	var tags []types.DBTag
	lineNo := 0
	for _, line := range strings.SplitAfter(raw, "\n") {
		lineNo++
		m := dbTagRx.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rawVal := strings.Trim(strings.TrimSpace(m[2]), `'"`)
		rawVal = strings.TrimSpace(rawVal)
		tags = append(tags, types.DBTag{
			Category: types.TagCategory(m[1]),
			Raw:      rawVal,
			Norm:     normalizeTag(rawVal),
			Line:     lineNo,
		})
	}
	return tags
}

// normalizeTag lowercases and collapses internal whitespace.
func normalizeTag(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
