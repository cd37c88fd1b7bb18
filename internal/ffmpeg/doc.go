// Package ffmpeg builds and executes the external transcoding commands:
// the FLAC re-encode itself, and the full-decode integrity test used to
// detect corrupt FLAC files. Conversion stderr is streamed line by line so
// progress (time=/speed=) can be rendered live.
package ffmpeg
