// Package preflight validates the folders an operation will read or write
// before any file is touched, so invalid input never leaves partial side
// effects behind.
package preflight
