package matcher

import "dupicheck/internal/fingerprint"

// Match is one detected duplicate pair.
type Match struct {
	Original  string `json:"original"`
	Duplicate string `json:"duplicate"`
	Distance  int    `json:"distance"`
}

// IgnoreList answers symmetric pair membership.
type IgnoreList interface {
	Contains(a, b string) bool
}

// Find enumerates every unordered pair of entries in slice order and reports
// those within threshold. A path reported as a duplicate is excluded from all
// later pairs, so clusters collapse onto their first member. Pairs present in
// ignored are never reported. A nil ignored list ignores nothing.
func Find(entries []fingerprint.Entry, threshold int, ignored IgnoreList) []Match {
	if threshold < 0 || len(entries) < 2 {
		return nil
	}
	used := make(map[string]struct{})
	var matches []Match
	for i := 0; i < len(entries); i++ {
		first := entries[i]
		if _, ok := used[first.Path]; ok {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			second := entries[j]
			if _, ok := used[second.Path]; ok {
				continue
			}
			if first.Path == second.Path {
				continue
			}
			if ignored != nil && ignored.Contains(first.Path, second.Path) {
				continue
			}
			distance := first.Hash.Distance(second.Hash)
			if distance > threshold {
				continue
			}
			matches = append(matches, Match{
				Original:  first.Path,
				Duplicate: second.Path,
				Distance:  distance,
			})
			used[second.Path] = struct{}{}
		}
	}
	return matches
}
