package fileutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// WalkOptions filters a WalkImages call.
type WalkOptions struct {
	// Extensions are lower-case with a leading dot.
	Extensions []string
	// SkipDirs are absolute directories not descended into.
	SkipDirs []string
	// SkipFiles are absolute files left out of the result.
	SkipFiles []string
}

// WalkImages returns every regular file under root whose extension matches,
// case-insensitively, sorted lexically. Unreadable subdirectories are
// skipped rather than failing the walk.
func WalkImages(root string, opts WalkOptions) ([]string, error) {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	skipDirs := make(map[string]struct{}, len(opts.SkipDirs))
	for _, dir := range opts.SkipDirs {
		skipDirs[filepath.Clean(dir)] = struct{}{}
	}
	skipFiles := make(map[string]struct{}, len(opts.SkipFiles))
	for _, file := range opts.SkipFiles {
		skipFiles[filepath.Clean(file)] = struct{}{}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[filepath.Clean(path)]; skip && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, skip := skipFiles[filepath.Clean(path)]; skip {
			return nil
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
