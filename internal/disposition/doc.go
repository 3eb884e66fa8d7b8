// Package disposition acts on matched pairs: bulk moves of duplicates, or
// size-based deletion with a quarantine escape hatch for matches that are
// close but not close enough to resolve automatically.
package disposition
