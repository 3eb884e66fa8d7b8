// Package matcher pairs up near-identical fingerprints.
//
// Matching is greedy and deterministic for a given entry order: every path
// appears as a duplicate at most once, while an original may anchor several
// duplicates. The exclusion set lives only for the duration of one Find call.
package matcher
