package quarantine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	unitPrefix   = "pair_"
	maxUnitIndex = 999999
)

// UnitName renders the directory name of the index'th unit.
func UnitName(index int) string {
	return fmt.Sprintf("%s%03d", unitPrefix, index)
}

// AllocateUnit creates the first free pair_NNN directory under root,
// starting at 1, and returns its path. root is created when missing.
func AllocateUnit(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine root: %w", err)
	}
	for i := 1; i <= maxUnitIndex; i++ {
		dir := filepath.Join(root, UnitName(i))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create unit %s: %w", dir, err)
		}
	}
	return "", fmt.Errorf("no free unit under %s", root)
}

// ListUnits returns every subdirectory of root sorted by name. Directories
// that were renamed by hand are still treated as units.
func ListUnits(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var units []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		units = append(units, filepath.Join(root, entry.Name()))
	}
	sort.Strings(units)
	return units, nil
}
