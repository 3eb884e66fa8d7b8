// Package hashing turns a list of image paths into fingerprints, reusing
// cached fingerprints from the store whenever a file's mtime and size are
// unchanged.
//
// Decodes may run on a bounded errgroup; store writes are always serialized
// and the resulting set keeps input order regardless of worker count.
package hashing
