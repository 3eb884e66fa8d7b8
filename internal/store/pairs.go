package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PairKey is the normalized form of an unordered pair: A sorts before B.
type PairKey struct {
	A string
	B string
}

// NewPairKey orders a and b so (a,b) and (b,a) share a key.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// PairSet is an in-memory snapshot of the ignore-list.
type PairSet map[PairKey]struct{}

// Contains reports whether the unordered pair {a, b} is ignored.
func (p PairSet) Contains(a, b string) bool {
	if len(p) == 0 {
		return false
	}
	_, ok := p[NewPairKey(a, b)]
	return ok
}

// Add records {a, b} in the set.
func (p PairSet) Add(a, b string) {
	p[NewPairKey(a, b)] = struct{}{}
}

// IgnoredPair is one persisted ignore-list entry.
type IgnoredPair struct {
	ID        int64     `json:"id"`
	PathA     string    `json:"path_a"`
	PathB     string    `json:"path_b"`
	CreatedAt time.Time `json:"created_at"`
}

func validatePair(a, b string) (PairKey, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return PairKey{}, errors.New("ignored pair paths must not be empty")
	}
	if a == b {
		return PairKey{}, fmt.Errorf("ignored pair needs two distinct paths, got %q twice", a)
	}
	return NewPairKey(a, b), nil
}

// AddIgnoredPair records {a, b} in the ignore-list. It reports false when the
// pair was already present.
func (s *Store) AddIgnoredPair(ctx context.Context, a, b string) (bool, error) {
	if s == nil {
		return false, nil
	}
	key, err := validatePair(a, b)
	if err != nil {
		return false, err
	}
	added := false
	err = s.write(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO ignored_pairs (path_a, path_b, created_at) VALUES (?, ?, ?)`,
			key.A, key.B, formatTime(time.Now()),
		)
		if err != nil {
			return fmt.Errorf("add ignored pair: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("add ignored pair rows: %w", err)
		}
		added = n > 0
		return nil
	})
	return added, err
}

// RemoveIgnoredPair deletes {a, b} from the ignore-list. It reports false when
// the pair was not present.
func (s *Store) RemoveIgnoredPair(ctx context.Context, a, b string) (bool, error) {
	if s == nil {
		return false, nil
	}
	key, err := validatePair(a, b)
	if err != nil {
		return false, err
	}
	removed := false
	err = s.write(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM ignored_pairs WHERE path_a = ? AND path_b = ?`, key.A, key.B)
		if err != nil {
			return fmt.Errorf("remove ignored pair: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove ignored pair rows: %w", err)
		}
		removed = n > 0
		return nil
	})
	return removed, err
}

// ListIgnoredPairs returns the ignore-list in insertion order.
func (s *Store) ListIgnoredPairs(ctx context.Context) ([]IgnoredPair, error) {
	if s == nil {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path_a, path_b, created_at FROM ignored_pairs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list ignored pairs: %w", err)
	}
	defer rows.Close()

	var pairs []IgnoredPair
	for rows.Next() {
		var (
			pair    IgnoredPair
			created sql.NullString
		)
		if err := rows.Scan(&pair.ID, &pair.PathA, &pair.PathB, &created); err != nil {
			return nil, fmt.Errorf("scan ignored pair: %w", err)
		}
		pair.CreatedAt = parseTime(created)
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ignored pairs: %w", err)
	}
	return pairs, nil
}

// IsIgnoredPair reports whether {a, b} is in the ignore-list, in either order.
func (s *Store) IsIgnoredPair(ctx context.Context, a, b string) (bool, error) {
	if s == nil || a == b {
		return false, nil
	}
	ctx = ensureContext(ctx)
	key := NewPairKey(a, b)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM ignored_pairs WHERE path_a = ? AND path_b = ?`, key.A, key.B,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("lookup ignored pair: %w", err)
	}
	return count > 0, nil
}

// IgnoredPairs loads the whole ignore-list as a PairSet for matching.
func (s *Store) IgnoredPairs(ctx context.Context) (PairSet, error) {
	pairs, err := s.ListIgnoredPairs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(PairSet, len(pairs))
	for _, pair := range pairs {
		set.Add(pair.PathA, pair.PathB)
	}
	return set, nil
}

// ClearIgnoredPairs empties the ignore-list and returns the number of removed entries.
func (s *Store) ClearIgnoredPairs(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	removed := 0
	err := s.write(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ignored_pairs`)
		if err != nil {
			return fmt.Errorf("clear ignored pairs: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("clear ignored pairs rows: %w", err)
		}
		removed = int(n)
		return nil
	})
	return removed, err
}
