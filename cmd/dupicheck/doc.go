// Package main provides the dupicheck command-line interface.
//
// The CLI wraps the workflows in internal/api: scanning a folder tree for
// visually duplicate images, moving or deleting the duplicates, restoring
// review folders and maintaining the ignore-list. Commands print human
// readable output by default and structured JSON with --json.
package main
