// Package report extracts candidate file paths from the skipped-files xlsx
// export. It tolerates arbitrary sheet layouts: path-like columns are found
// by header keyword, with a full-cell scan as fallback.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Audio extensions a candidate cell may end with (lowercase, with dot).
var audioExtensions = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp4":  true,
}

// Header keywords (lowercase substrings) marking a column as path-like.
var pathColumnKeywords = []string{
	"path", "file", "location", "filename", "track file", "file path",
	"source", "fullpath", "url",
}

// minCandidateLen filters out junk cells like "mp4" or "-".
const minCandidateLen = 5

// ReadCandidates opens the workbook at path and returns candidate path
// strings from every sheet, in encounter order, deduplicated by raw string.
// A workbook that cannot be opened or read is a fatal run error.
func ReadCandidates(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open report %q: %w", path, err)
	}
	defer f.Close()

	var candidates []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		candidates = append(candidates, extractFromRows(rows)...)
	}
	return dedupe(candidates), nil
}

// extractFromRows pulls candidates from one sheet. The first row is treated
// as the header; cells in path-like columns are considered first, and when no
// path-like column exists every cell is scanned.
func extractFromRows(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	cols := pathColumns(rows[0])
	var out []string
	if len(cols) > 0 {
		for _, row := range rows[1:] {
			for _, c := range cols {
				if c < len(row) && LooksLikeAudioPath(row[c]) {
					out = append(out, strings.TrimSpace(row[c]))
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	// Fallback: no path-like header (or it held nothing usable), so scan all
	// cells, header row included, since the export layout is unknown.
	for _, row := range rows {
		for _, cell := range row {
			if LooksLikeAudioPath(cell) {
				out = append(out, strings.TrimSpace(cell))
			}
		}
	}
	return out
}

// pathColumns returns the indexes of header cells containing a path keyword.
func pathColumns(header []string) []int {
	var cols []int
	for i, h := range header {
		lh := strings.ToLower(strings.TrimSpace(h))
		for _, kw := range pathColumnKeywords {
			if strings.Contains(lh, kw) {
				cols = append(cols, i)
				break
			}
		}
	}
	return cols
}

// LooksLikeAudioPath reports whether a cell value plausibly names an audio
// file: long enough, and ending in a supported extension. Bare filenames
// without separators are accepted; the locator resolves them against root.
func LooksLikeAudioPath(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < minCandidateLen {
		return false
	}
	lower := strings.ToLower(s)
	for ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// dedupe removes duplicate strings preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
