package fingerprint

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Bits is the fingerprint width; distances range from 0 to Bits.
const Bits = 64

// Hash is a 64-bit perceptual fingerprint.
type Hash uint64

// Distance returns the Hamming distance between two fingerprints. It is
// symmetric and zero only for bit-identical fingerprints.
func (h Hash) Distance(other Hash) int {
	return bits.OnesCount64(uint64(h ^ other))
}

// String renders the fingerprint as 16 lower-case hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Parse reads a fingerprint produced by Hash.String.
func Parse(value string) (Hash, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("parse fingerprint: empty value")
	}
	parsed, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", value, err)
	}
	return Hash(parsed), nil
}

// Entry pairs a file identity with its fingerprint.
type Entry struct {
	Path string `json:"path"`
	Hash Hash   `json:"hash"`
}

// Set maps paths to fingerprints and remembers insertion order, so pairwise
// enumeration over it is reproducible.
type Set struct {
	entries []Entry
	index   map[string]int
}

// NewSet returns an empty set sized for capacity entries.
func NewSet(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// Put stores the fingerprint for path. The first Put for a path fixes its
// position; later calls replace the value in place.
func (s *Set) Put(path string, hash Hash) {
	if i, ok := s.index[path]; ok {
		s.entries[i].Hash = hash
		return
	}
	s.index[path] = len(s.entries)
	s.entries = append(s.entries, Entry{Path: path, Hash: hash})
}

// Get returns the fingerprint for path.
func (s *Set) Get(path string) (Hash, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[path]
	if !ok {
		return 0, false
	}
	return s.entries[i].Hash, true
}

// Len reports the number of distinct paths.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}
