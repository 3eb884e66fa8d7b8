package quarantine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NoteFileName is the metadata file written into every unit.
const NoteFileName = "pair_info.txt"

const (
	keyOriginal1 = "original_1"
	keyOriginal2 = "original_2"
	keyStored1   = "stored_1"
	keyStored2   = "stored_2"
	keyDistance  = "distance"
)

// Note records where the two files of a unit came from.
type Note struct {
	Original1 string `json:"original_1"`
	Original2 string `json:"original_2"`
	// Stored1 and Stored2 are the file names inside the unit, which differ
	// from the original basenames after collision renaming.
	Stored1  string `json:"stored_1,omitempty"`
	Stored2  string `json:"stored_2,omitempty"`
	Distance int    `json:"distance"`
}

// Originals returns the two original paths.
func (n Note) Originals() []string {
	return []string{n.Original1, n.Original2}
}

// WriteNote writes note into unitDir.
func WriteNote(unitDir string, note Note) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", keyOriginal1, note.Original1)
	fmt.Fprintf(&b, "%s: %s\n", keyOriginal2, note.Original2)
	if note.Stored1 != "" {
		fmt.Fprintf(&b, "%s: %s\n", keyStored1, note.Stored1)
	}
	if note.Stored2 != "" {
		fmt.Fprintf(&b, "%s: %s\n", keyStored2, note.Stored2)
	}
	fmt.Fprintf(&b, "%s: %d\n", keyDistance, note.Distance)
	path := filepath.Join(unitDir, NoteFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}

// ReadNote parses the note in unitDir. Unknown keys are ignored; ok is false
// when the note does not exist.
func ReadNote(unitDir string) (Note, bool, error) {
	f, err := os.Open(filepath.Join(unitDir, NoteFileName))
	if os.IsNotExist(err) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, fmt.Errorf("open note: %w", err)
	}
	defer f.Close()

	var note Note
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case keyOriginal1:
			note.Original1 = value
		case keyOriginal2:
			note.Original2 = value
		case keyStored1:
			note.Stored1 = value
		case keyStored2:
			note.Stored2 = value
		case keyDistance:
			if d, err := strconv.Atoi(value); err == nil {
				note.Distance = d
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Note{}, false, fmt.Errorf("read note: %w", err)
	}
	return note, true, nil
}
