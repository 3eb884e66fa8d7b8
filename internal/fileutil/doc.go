// Package fileutil holds the filesystem helpers shared by disposition and
// reintegration: image discovery, collision-free naming, and moves that
// survive crossing filesystems.
package fileutil
