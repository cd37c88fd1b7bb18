// Package planner classifies resolved files into convert, repair, or skip
// and computes the destination paths for the two active actions.
package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"flacfix/internal/naming"
)

// Extensions eligible for lossless conversion to FLAC.
var convertExtensions = map[string]bool{
	".m4a": true,
	".mp4": true,
}

const flacExt = ".flac"

// NeedsDecodeCheck reports whether path must pass a full-decode integrity
// test before planning: only existing .flac files are probed, since their
// action hinges on whether they decode cleanly.
func NeedsDecodeCheck(path string) bool {
	return strings.EqualFold(filepath.Ext(path), flacExt)
}

// BuildPlan is the decision matrix for one resolved file:
//
//   - .m4a/.mp4 → convert to a collision-free .flac sibling
//   - .flac that failed the decode check → repair in place via temp file
//   - .flac that decodes cleanly → skip (nothing to fix)
//   - anything else → skip (unsupported extension)
//
// flacDecodeOK is only consulted when [NeedsDecodeCheck] is true for source.
func BuildPlan(source string, flacDecodeOK bool, resolver *naming.Resolver) *FilePlan {
	ext := strings.ToLower(filepath.Ext(source))

	switch {
	case convertExtensions[ext]:
		dest := resolver.Unique(withFlacExt(source))
		return &FilePlan{
			Action: ActionConvert,
			Source: source,
			Dest:   dest,
			Work:   dest,
			Note:   fmt.Sprintf("%s → flac", strings.TrimPrefix(ext, ".")),
		}

	case ext == flacExt && !flacDecodeOK:
		return &FilePlan{
			Action: ActionRepair,
			Source: source,
			Dest:   source,
			Work:   naming.TempRepairPath(source),
			Note:   "re-encode flac",
		}

	case ext == flacExt:
		return &FilePlan{
			Action:     ActionSkip,
			Source:     source,
			SkipReason: "already valid",
		}

	default:
		return &FilePlan{
			Action:     ActionSkip,
			Source:     source,
			SkipReason: fmt.Sprintf("unsupported extension %s", ext),
		}
	}
}

// withFlacExt swaps the extension of path for ".flac".
func withFlacExt(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + flacExt
}
