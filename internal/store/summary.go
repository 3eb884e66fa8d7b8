package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
)

// Summary describes the contents of a store for status reporting.
type Summary struct {
	Path         string    `json:"path"`
	Records      int       `json:"records"`
	Ignored      int       `json:"ignored"`
	Placeholders int       `json:"placeholders"`
	IgnoredPairs int       `json:"ignored_pairs"`
	LastUpdated  time.Time `json:"last_updated,omitzero"`
	SizeBytes    int64     `json:"size_bytes"`
}

// Summary counts records and ignored pairs. A nil store yields a zero summary.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	if s == nil {
		return Summary{}, nil
	}
	ctx = ensureContext(ctx)
	summary := Summary{Path: s.path}

	var lastUpdated sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(ignored), 0),
                COALESCE(SUM(CASE WHEN hash IS NULL THEN 1 ELSE 0 END), 0),
                MAX(updated_at)
           FROM image_records`,
	).Scan(&summary.Records, &summary.Ignored, &summary.Placeholders, &lastUpdated)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize records: %w", err)
	}
	summary.LastUpdated = parseTime(lastUpdated)

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM ignored_pairs`).Scan(&summary.IgnoredPairs); err != nil {
		return Summary{}, fmt.Errorf("count ignored pairs: %w", err)
	}

	for _, suffix := range []string{"", "-wal"} {
		if info, err := os.Stat(s.path + suffix); err == nil {
			summary.SizeBytes += info.Size()
		}
	}
	return summary, nil
}
