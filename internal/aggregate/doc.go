// Package aggregate folds per-file classifications into corpus-wide
// counters, cross-tabulations, histograms, and duplicate-hash indexes.
//
// The fold is commutative and associative: adding classifications in any
// order, or folding disjoint partitions into separate States and merging
// them, produces byte-identical report output. Nothing in a State refers
// back to raw file text or spans, so memory is bounded by the number of
// distinct counter keys plus the retained file paths, not by corpus size.
//
// Typical use:
//
//	state := aggregate.NewState()
//	for _, cl := range classifications {
//		state.Add(cl)
//	}
//	// or, in parallel workers:
//	local := aggregate.NewState()
//	...
//	shared.Merge(local)
//
// Bounded example lists (needs-review and other-bucket samples) keep the
// lexicographically smallest N paths per bucket, which is the only
// selection rule that stays order-independent without a second pass.
package aggregate
