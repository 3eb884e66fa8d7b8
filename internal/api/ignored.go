package api

import (
	"context"
	"fmt"

	"dupicheck/internal/store"
)

// AddIgnoredPair records two paths as not duplicates. Paths are made
// absolute so they match scanned identities.
func AddIgnoredPair(ctx context.Context, s *store.Store, a, b string) (store.PairKey, bool, error) {
	if s == nil {
		return store.PairKey{}, false, ErrStoreDisabled
	}
	absA, err := absPath(a)
	if err != nil {
		return store.PairKey{}, false, fmt.Errorf("resolve %q: %w", a, err)
	}
	absB, err := absPath(b)
	if err != nil {
		return store.PairKey{}, false, fmt.Errorf("resolve %q: %w", b, err)
	}
	added, err := s.AddIgnoredPair(ctx, absA, absB)
	if err != nil {
		return store.PairKey{}, false, err
	}
	return store.NewPairKey(absA, absB), added, nil
}

// RemoveIgnoredPairByNumber removes an ignore-list entry using the 1-based
// numbering of ListIgnoredPairs. An out-of-range number changes nothing.
func RemoveIgnoredPairByNumber(ctx context.Context, s *store.Store, entryNum int) (store.IgnoredPair, error) {
	if s == nil {
		return store.IgnoredPair{}, ErrStoreDisabled
	}
	if entryNum < 1 {
		return store.IgnoredPair{}, fmt.Errorf("%w: %d (must be a positive integer)", ErrEntryOutOfRange, entryNum)
	}

	pairs, err := s.ListIgnoredPairs(ctx)
	if err != nil {
		return store.IgnoredPair{}, err
	}
	if entryNum > len(pairs) {
		return store.IgnoredPair{}, fmt.Errorf("%w: %d (only %d entries exist)", ErrEntryOutOfRange, entryNum, len(pairs))
	}

	pair := pairs[entryNum-1]
	if _, err := s.RemoveIgnoredPair(ctx, pair.PathA, pair.PathB); err != nil {
		return store.IgnoredPair{}, fmt.Errorf("remove ignored pair: %w", err)
	}
	return pair, nil
}
