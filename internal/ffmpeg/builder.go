package ffmpeg

import (
	"strconv"

	"flacfix/internal/config"
)

// BuildConvertArgs constructs the ffmpeg argument slice (binary included)
// for a lossless re-encode of src into FLAC at dst. All source metadata tags
// are preserved and only the first audio stream is mapped; cover art and
// other side streams do not survive into the FLAC container.
func BuildConvertArgs(cfg *config.Config, src, dst string) []string {
	args := []string{
		cfg.FfmpegBin, "-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		// -stats keeps time=/speed= progress lines on stderr even at
		// error loglevel.
		"-stats", "-stats_period", "1",
		"-i", src,
		"-map_metadata", "0",
		"-map", "0:a:0",
		"-c:a", "flac",
		"-compression_level", strconv.Itoa(cfg.CompressionLevel),
		dst,
	}
	return args
}

// BuildDecodeTestArgs constructs the ffmpeg argument slice for a full decode
// of path to the null muxer. -xerror makes any decoding error fatal so a
// non-zero exit reliably signals corruption.
func BuildDecodeTestArgs(cfg *config.Config, path string) []string {
	return []string{
		cfg.FfmpegBin, "-hide_banner", "-nostdin",
		"-v", "error", "-xerror",
		"-i", path,
		"-f", "null", "-",
	}
}
