// Package api holds the workflows the CLI runs: scan a folder, move or
// delete its duplicates, reintegrate a review folder, report store status,
// and manage the ignore-list.
//
// Each workflow validates its input and runs preflight checks before any
// file is touched. Per-item failures come back inside the result types;
// only invalid input and unusable folders are returned as errors.
//
// # Store degradation
//
// Scan and Reintegrate open the fingerprint store with OpenStoreOrDegrade.
// When the store cannot be opened (permissions, a concurrent invocation
// holding the lock, an old schema) the workflow continues without it and
// reports the reason in a warning string instead of failing.
package api
