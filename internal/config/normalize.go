package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeScan()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.Extensions = NormalizeExtensions(c.Scan.Extensions)
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), DefaultExtensions...)
	}
}

// NormalizeExtensions lower-cases extensions, adds a leading dot, and drops
// blanks and duplicates while preserving order.
func NormalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeCache() error {
	c.Cache.FileName = strings.TrimSpace(c.Cache.FileName)
	if c.Cache.FileName == "" {
		c.Cache.FileName = defaultCacheFileName
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = ""
		return nil
	}
	var err error
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	name := strings.TrimSpace(c.Paths.ManualDirName)
	if name == "" {
		name = defaultManualDirName
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("paths.manual_dir_name must be a single directory name, got %q", name)
	}
	c.Paths.ManualDirName = name
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}
