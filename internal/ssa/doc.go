// Package ssa implements the incremental, demand-driven SSA construction
// algorithm over the structured CFG defined by package ir (spec §3.3, §3.4,
// §4.5, §4.6). It never builds a dominator tree: a variable's reaching def
// at a point is resolved lazily, by walking the structured component tree
// outward from the querying block until enough predecessor information is
// found to join, materialising a phi only when the join is heterogeneous.
//
// The package owns two kinds of logic that package ir deliberately does not:
// block mutation (Append/Erase, which must keep def-timelines consistent)
// and resolution (JoinAt/ReachingDefAt, the descending/ascending traversal
// and the def-propagator that keeps already-resolved joins correct after a
// later mutation).
package ssa
