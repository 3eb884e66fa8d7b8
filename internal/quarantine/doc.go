// Package quarantine manages manual-review units: numbered pair_NNN
// directories that hold the two files of an uncertain match plus a
// pair_info.txt note naming their original locations.
//
// Reintegrate is the way back out. It restores files next to their
// originals and, when both files of a unit come back, records the pair in
// the ignore-list so the matcher never proposes it again.
package quarantine
