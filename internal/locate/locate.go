// Package locate resolves report candidates to actual files under the root
// directory. Resolution is exact-path first, then a case-insensitive filename
// match against root's immediate entries. No recursive search.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a candidate resolves to no file under root.
// It is a per-file condition, never fatal to the run.
var ErrNotFound = errors.New("file not found under root")

// Resolve maps a raw candidate string to an absolute path of an existing
// regular file under root.
//
// Order: (1) the candidate as a path (absolute, or joined to root), accepted
// only when it resolves inside root; (2) the candidate's basename matched
// case-insensitively against root's direct children.
func Resolve(candidate, root string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	if p, ok := tryExactPath(candidate, rootAbs); ok {
		return p, nil
	}
	if p, ok := tryBasenameMatch(candidate, rootAbs); ok {
		return p, nil
	}
	return "", fmt.Errorf("%q: %w", candidate, ErrNotFound)
}

// tryExactPath joins relative candidates onto root, then accepts the result
// if it is a regular file inside root.
func tryExactPath(candidate, rootAbs string) (string, bool) {
	p := filepath.FromSlash(candidate)
	if !filepath.IsAbs(p) {
		p = filepath.Join(rootAbs, p)
	}
	p = filepath.Clean(p)
	if !isUnder(p, rootAbs) {
		return "", false
	}
	if !isRegularFile(p) {
		return "", false
	}
	return p, true
}

// tryBasenameMatch scans root's immediate entries for a case-insensitive
// filename match. Spreadsheet exports often carry paths from another machine,
// so only the basename is trustworthy.
func tryBasenameMatch(candidate, rootAbs string) (string, bool) {
	base := filepath.Base(filepath.FromSlash(candidate))
	// Windows-origin paths keep backslashes on other platforms; take the
	// last component manually.
	if i := strings.LastIndexAny(base, `\`); i >= 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." {
		return "", false
	}

	entries, err := os.ReadDir(rootAbs)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), base) {
			p := filepath.Join(rootAbs, e.Name())
			if isRegularFile(p) {
				return p, true
			}
		}
	}
	return "", false
}

// isUnder reports whether child is root or inside root (lexically, after
// cleaning; symlinks are not chased, root itself is operator-supplied).
func isUnder(child, root string) bool {
	rel, err := filepath.Rel(root, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
