// Package store persists fingerprint records and the ignored-pair list in a
// SQLite database (modernc.org/sqlite, WAL, synchronous=FULL).
//
// Every mutating call commits before returning. Writers are serialized by a
// mutex inside the process and by an exclusive "<db>.lock" file across
// processes; Open returns ErrLocked when another invocation owns the store.
// A nil *Store is a valid empty store so callers can run uncached without
// branching.
package store
