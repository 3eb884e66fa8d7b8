package hashing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"dupicheck/internal/fingerprint"
	"dupicheck/internal/logging"
	"dupicheck/internal/store"
)

// Cache is the subset of the fingerprint store used while hashing.
type Cache interface {
	Get(ctx context.Context, path string) (store.Record, bool, error)
	Put(ctx context.Context, rec store.Record) error
	PruneMissing(ctx context.Context, current []string) (int, error)
}

// ProgressFunc is notified before each path is processed with a 1-based
// index. It runs on the calling goroutine and must not block for long.
type ProgressFunc func(index, total int, path string)

// Options tunes a Compute call.
type Options struct {
	// ForceRebuild ignores cached fingerprints; results are still written back.
	ForceRebuild bool
	// Workers bounds concurrent decodes. 0 means one per CPU, 1 is sequential.
	Workers    int
	OnProgress ProgressFunc
	Logger     *slog.Logger
}

// Result holds the fingerprints and bookkeeping of one Compute call.
type Result struct {
	Fingerprints   *fingerprint.Set
	CacheHits      int
	Decoded        int
	StatFailures   int
	DecodeFailures int
	Pruned         int
}

// Skipped reports how many paths contributed no fingerprint.
func (r Result) Skipped() int {
	return r.StatFailures + r.DecodeFailures
}

type job struct {
	index int
	path  string
	info  os.FileInfo
}

type outcome struct {
	hash fingerprint.Hash
	ok   bool
}

// collect assembles the successful outcomes in input order.
func collect(paths []string, outcomes []outcome) *fingerprint.Set {
	set := fingerprint.NewSet(len(paths))
	for i, out := range outcomes {
		if out.ok {
			set.Put(paths[i], out.hash)
		}
	}
	return set
}

// Compute fingerprints paths in input order. Unreadable or undecodable files
// are skipped. A cached record is reused only when its mtime and size match
// the file and it is not flagged ignored. Fresh fingerprints are written back
// to cache, and once every path has been visited records for paths outside
// the input set are pruned. cache may be nil. Store failures are logged and
// never fail the batch; only context cancellation returns an error, together
// with the fingerprints finished before it.
func Compute(ctx context.Context, paths []string, cache Cache, hasher fingerprint.Fingerprinter, opts Options) (Result, error) {
	if hasher == nil {
		return Result{}, errors.New("compute fingerprints: nil fingerprinter")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewComponentLogger(opts.Logger, "hashing")
	if isNilCache(cache) {
		cache = nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result := Result{}
	outcomes := make([]outcome, len(paths))
	seen := make(map[string]struct{}, len(paths))

	var writeMu sync.Mutex
	var countMu sync.Mutex
	decode := func(j job) {
		hash, err := hasher.Fingerprint(j.path)
		if err != nil {
			logging.WarnWithContext(logger, "failed to fingerprint image", "decode_failed",
				logging.String(logging.FieldPath, j.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "file may be corrupt or not an image"),
				logging.String(logging.FieldImpact, "image skipped for this scan"),
			)
			countMu.Lock()
			result.DecodeFailures++
			countMu.Unlock()
			return
		}
		outcomes[j.index] = outcome{hash: hash, ok: true}
		countMu.Lock()
		result.Decoded++
		countMu.Unlock()

		if cache == nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		rec := store.Record{
			Path:    j.path,
			Hash:    hash,
			HasHash: true,
			ModTime: j.info.ModTime(),
			Size:    j.info.Size(),
		}
		if err := cache.Put(ctx, rec); err != nil {
			logging.WarnWithContext(logger, "failed to cache fingerprint", "cache_write_failed",
				logging.String(logging.FieldPath, j.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the store file"),
				logging.String(logging.FieldImpact, "image will be decoded again next scan"),
			)
		}
	}

	var group *errgroup.Group
	if workers > 1 {
		group = &errgroup.Group{}
		group.SetLimit(workers)
	}

	total := len(paths)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			if group != nil {
				_ = group.Wait()
			}
			result.Fingerprints = collect(paths, outcomes)
			return result, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total, path)
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		info, err := os.Stat(path)
		if err != nil {
			logger.Debug("skipping unreadable path",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "stat_failed"),
			)
			result.StatFailures++
			continue
		}

		if hash, ok := cachedHash(ctx, logger, cache, path, info, opts.ForceRebuild); ok {
			outcomes[i] = outcome{hash: hash, ok: true}
			result.CacheHits++
			continue
		}

		j := job{index: i, path: path, info: info}
		if group == nil {
			decode(j)
			continue
		}
		group.Go(func() error {
			decode(j)
			return nil
		})
	}
	if group != nil {
		_ = group.Wait()
	}

	result.Fingerprints = collect(paths, outcomes)

	if cache != nil {
		pruned, err := cache.PruneMissing(ctx, paths)
		if err != nil {
			logging.WarnWithContext(logger, "failed to prune fingerprint store", "cache_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the store file"),
				logging.String(logging.FieldImpact, "stale records remain until the next scan"),
			)
		}
		result.Pruned = pruned
	}

	logger.Debug("fingerprints computed",
		logging.Int("paths", total),
		logging.Int("cache_hits", result.CacheHits),
		logging.Int("decoded", result.Decoded),
		logging.Int("skipped", result.Skipped()),
		logging.Int("pruned", result.Pruned),
	)
	return result, nil
}

func cachedHash(ctx context.Context, logger *slog.Logger, cache Cache, path string, info os.FileInfo, rebuild bool) (fingerprint.Hash, bool) {
	if cache == nil || rebuild {
		return 0, false
	}
	rec, found, err := cache.Get(ctx, path)
	if err != nil {
		logger.Debug("fingerprint cache lookup failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cache_read_failed"),
		)
		return 0, false
	}
	if !found || rec.Ignored || !rec.HasHash || !rec.Matches(info) {
		return 0, false
	}
	return rec.Hash, true
}

func isNilCache(cache Cache) bool {
	if cache == nil {
		return true
	}
	s, ok := cache.(*store.Store)
	return ok && s == nil
}
