// Package classify maps one file's extracted signal records to its
// multi-label problem types, coverage buckets, discipline bucket, and
// review routing.
//
// Type labels come from an explicitly ordered rule table; each firing rule
// contributes structured reason codes, and the rule order is part of the
// classifier's contract. Reordering rules changes historical comparability
// of aggregate reports and is a versioned behavior change.
//
// Discipline bucketing works the same way: an ordered first-match-wins
// substring table over the normalized subject tag, with explicit
// "unclassified" (tagged but unmatched) and "none" (untagged) buckets.
// The table is corpus-calibrated and can be replaced via configuration.
//
// Classification is pure and deterministic: the same extraction always
// yields the same Classification value.
package classify
