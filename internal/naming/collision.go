// Package naming computes conversion destination paths: collision-free
// final names and hidden temp paths for in-place repairs.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Resolver allocates collision-free destination paths for one run. It checks
// both the filesystem and paths already claimed by earlier files in the same
// run (two sources can otherwise race for "track.flac" before either exists).
type Resolver struct {
	claimed map[string]bool
	exists  func(string) bool
}

// NewResolver creates a resolver using the given existence check
// (os-backed in production, injectable for tests).
func NewResolver(exists func(string) bool) *Resolver {
	return &Resolver{
		claimed: make(map[string]bool),
		exists:  exists,
	}
}

// Unique returns target if it is free, otherwise the first "stem (N).ext"
// variant (N starting at 2) that neither exists on disk nor has been claimed
// this run. The returned path is recorded as claimed.
func (r *Resolver) Unique(target string) string {
	if !r.taken(target) {
		r.claimed[target] = true
		return target
	}

	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !r.taken(candidate) {
			r.claimed[candidate] = true
			return candidate
		}
	}
}

func (r *Resolver) taken(path string) bool {
	return r.claimed[path] || r.exists(path)
}

// TempRepairPath returns a hidden sibling path for re-encoding src in place.
// The uuid fragment keeps concurrent tooling (file watchers, sync clients)
// from colliding with a predictable name; the leading dot keeps media
// scanners from indexing the work file.
func TempRepairPath(src string) string {
	dir := filepath.Dir(src)
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.repair-%s%s", stem, uuid.NewString()[:8], ext))
}
