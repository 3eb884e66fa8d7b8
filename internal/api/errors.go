package api

import "errors"

var (
	ErrNoFolder         = errors.New("no folder selected")
	ErrNoImages         = errors.New("no images found")
	ErrInvalidThreshold = errors.New("threshold must be a non-negative integer")
	ErrNoTarget         = errors.New("no target directory selected")
	ErrNoManualDir      = errors.New("no manual review directory selected")
	ErrStoreDisabled    = errors.New("fingerprint store is disabled")
	ErrEntryOutOfRange  = errors.New("entry number out of range")
)
