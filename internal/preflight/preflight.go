package preflight

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFailed is wrapped by Err when a check did not pass.
var ErrFailed = errors.New("preflight check failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Request names the paths an operation is about to touch.
type Request struct {
	// Folder is the scanned tree. It must always be readable.
	Folder string
	// Mutating operations also need Folder writable.
	Mutating bool
	// Target is the bulk-move destination, created if needed.
	Target string
	// QuarantineRoot is where review units go, created if needed.
	QuarantineRoot string
}

// RunAll executes the checks that apply to req.
func RunAll(req Request) []Result {
	var results []Result
	if req.Folder != "" {
		results = append(results, CheckDirectoryAccess("Folder", req.Folder, req.Mutating))
	}
	if req.Target != "" {
		results = append(results, CheckCreatable("Target directory", req.Target))
	}
	if req.QuarantineRoot != "" {
		results = append(results, CheckCreatable("Manual review directory", req.QuarantineRoot))
	}
	return results
}

// Err joins every failed result into one error wrapping ErrFailed, or
// returns nil when all passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, "; "))
}
