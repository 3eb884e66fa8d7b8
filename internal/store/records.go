package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"dupicheck/internal/fingerprint"
)

// Record is the cached fingerprint state of one path.
type Record struct {
	Path string
	Hash fingerprint.Hash
	// HasHash is false for placeholder rows created by MarkIgnored for
	// files that could not be read.
	HasHash   bool
	ModTime   time.Time
	Size      int64
	Ignored   bool
	UpdatedAt time.Time
}

// Matches reports whether the record still describes the file behind info:
// modification time (to the nanosecond) and size must both be identical.
func (r Record) Matches(info fs.FileInfo) bool {
	if info == nil {
		return false
	}
	return r.ModTime.UnixNano() == info.ModTime().UnixNano() && r.Size == info.Size()
}

const recordColumns = "path, hash, mtime_ns, size, ignored, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		path      string
		hashRaw   sql.NullString
		mtimeNS   int64
		size      int64
		ignored   int64
		updatedAt sql.NullString
	)
	if err := scanner.Scan(&path, &hashRaw, &mtimeNS, &size, &ignored, &updatedAt); err != nil {
		return Record{}, err
	}
	rec := Record{
		Path:      path,
		ModTime:   time.Unix(0, mtimeNS),
		Size:      size,
		Ignored:   ignored != 0,
		UpdatedAt: parseTime(updatedAt),
	}
	if hashRaw.Valid && hashRaw.String != "" {
		hash, err := fingerprint.Parse(hashRaw.String)
		if err != nil {
			return Record{}, fmt.Errorf("record %s: %w", path, err)
		}
		rec.Hash = hash
		rec.HasHash = true
	}
	return rec, nil
}

// Get returns the record stored for path.
func (s *Store) Get(ctx context.Context, path string) (Record, bool, error) {
	if s == nil {
		return Record{}, false, nil
	}
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM image_records WHERE path = ?`, path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get record: %w", err)
	}
	return rec, true, nil
}

// Put upserts the fingerprint, mtime and size for rec.Path. An existing
// row keeps its ignored flag unless rec.Ignored sets it; Put never clears it.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(rec.Path) == "" {
		return errors.New("record path is empty")
	}
	var hash any
	if rec.HasHash {
		hash = rec.Hash.String()
	}
	now := formatTime(time.Now())
	return s.write(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO image_records (path, hash, mtime_ns, size, ignored, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)
             ON CONFLICT(path) DO UPDATE SET
                 hash = excluded.hash,
                 mtime_ns = excluded.mtime_ns,
                 size = excluded.size,
                 ignored = MAX(image_records.ignored, excluded.ignored),
                 updated_at = excluded.updated_at`,
			rec.Path, hash, rec.ModTime.UnixNano(), rec.Size, boolToInt(rec.Ignored), now,
		)
		if err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		return nil
	})
}

// MarkIgnored flags every path as ignored. Readable files get their current
// mtime and size; unreadable or missing ones get a placeholder row with no
// fingerprint and zeroed stats. All paths are written in one transaction.
func (s *Store) MarkIgnored(ctx context.Context, paths []string) error {
	if s == nil || len(paths) == 0 {
		return nil
	}
	now := formatTime(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, path := range paths {
			var mtimeNS, size int64
			if info, err := os.Stat(path); err == nil {
				mtimeNS = info.ModTime().UnixNano()
				size = info.Size()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO image_records (path, hash, mtime_ns, size, ignored, updated_at)
                 VALUES (?, NULL, ?, ?, 1, ?)
                 ON CONFLICT(path) DO UPDATE SET
                     mtime_ns = excluded.mtime_ns,
                     size = excluded.size,
                     ignored = 1,
                     updated_at = excluded.updated_at`,
				path, mtimeNS, size, now,
			)
			if err != nil {
				return fmt.Errorf("mark ignored %s: %w", path, err)
			}
		}
		return nil
	})
}

// PruneMissing deletes every record whose path is not in current and returns
// how many rows were removed.
func (s *Store) PruneMissing(ctx context.Context, current []string) (int, error) {
	if s == nil {
		return 0, nil
	}
	keep := make(map[string]struct{}, len(current))
	for _, path := range current {
		keep[path] = struct{}{}
	}

	removed := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		removed = 0
		rows, err := tx.QueryContext(ctx, `SELECT path FROM image_records`)
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}
		var stale []string
		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				rows.Close()
				return fmt.Errorf("scan record path: %w", err)
			}
			if _, ok := keep[path]; !ok {
				stale = append(stale, path)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate records: %w", err)
		}
		rows.Close()

		for _, path := range stale {
			res, err := tx.ExecContext(ctx, `DELETE FROM image_records WHERE path = ?`, path)
			if err != nil {
				return fmt.Errorf("delete record %s: %w", path, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				removed += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
