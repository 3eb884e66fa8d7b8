package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxUniqueAttempts bounds the suffix search in UniquePath.
const maxUniqueAttempts = 100000

// UniquePath returns dir/name, or dir/stem_N.ext with the smallest N >= 1
// that does not exist yet.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Lstat(candidate); os.IsNotExist(err) {
		return candidate, nil
	} else if err != nil {
		return "", fmt.Errorf("check %s: %w", candidate, err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxUniqueAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}
