package ffmpeg

import (
	"regexp"
	"strconv"
)

// Pre-compiled regexes for the progress fields ffmpeg -stats writes to
// stderr, e.g. "size=    1024KiB time=00:03:21.52 bitrate= ... speed=41.2x".
var (
	reTime  = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
	reSpeed = regexp.MustCompile(`speed=\s*([0-9.]+x)`)
)

// Progress is one parsed stderr stats line.
type Progress struct {
	Seconds float64 // Position in the output stream.
	Speed   string  // e.g. "41.2x"; empty when absent.
}

// ParseProgress extracts the time (and, when present, speed) field from one
// stderr line. ok is false for lines without a parsable time field.
func ParseProgress(line string) (p Progress, ok bool) {
	m := reTime.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}

	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.ParseFloat(m[3], 64)
	p.Seconds = float64(h)*3600 + float64(min)*60 + sec

	if sm := reSpeed.FindStringSubmatch(line); sm != nil {
		p.Speed = sm[1]
	}
	return p, true
}
