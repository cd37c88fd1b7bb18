package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/schollz/progressbar/v3"

	"flacfix/internal/config"
	"flacfix/internal/term"
)

// stderrTailLines is how many trailing stderr lines survive into error
// details; ffmpeg repeats itself and only the tail carries the cause.
const stderrTailLines = 6

// DecodeResult holds the outcome of a full-decode integrity test.
type DecodeResult struct {
	OK     bool
	Detail string // Tail of stderr when decoding failed.
}

// DecodeTest fully decodes path to the null muxer and reports whether the
// file decodes cleanly. Used to distinguish valid from corrupt FLAC files.
// The error return is reserved for invocation problems (binary missing);
// a corrupt file is OK=false with a nil error.
func DecodeTest(ctx context.Context, cfg *config.Config, path string) (DecodeResult, error) {
	args := BuildDecodeTestArgs(cfg, path)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err == nil {
		return DecodeResult{OK: true}, nil
	}
	if _, isExit := err.(*exec.ExitError); !isExit {
		return DecodeResult{}, fmt.Errorf("run %s: %w", cfg.FfmpegBin, err)
	}
	return DecodeResult{OK: false, Detail: stderrTail(stderrBuf.String())}, nil
}

// Convert runs the src → dst FLAC re-encode. Stderr is consumed line by
// line: stats lines drive a live progress bar (TTY only, apply mode) scaled
// against durationSec, and everything is retained for error reporting.
// On failure the tail of stderr is folded into the returned error.
func Convert(ctx context.Context, cfg *config.Config, src, dst string, durationSec float64) error {
	args := BuildConvertArgs(cfg, src, dst)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = nil

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cfg.FfmpegBin, err)
	}

	bar := newProgressBar(cfg, src, durationSec)
	var captured []string

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanCRLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if p, ok := ParseProgress(line); ok {
			updateBar(bar, p, durationSec)
			continue
		}
		captured = append(captured, line)
		if cfg.Verbose {
			fmt.Fprintln(os.Stderr, "  "+line)
		}
	}
	finishBar(bar)

	if err := cmd.Wait(); err != nil {
		detail := stderrTail(strings.Join(captured, "\n"))
		if detail == "" {
			return fmt.Errorf("%s: %w", cfg.FfmpegBin, err)
		}
		return fmt.Errorf("%s: %w: %s", cfg.FfmpegBin, err, detail)
	}
	return nil
}

// newProgressBar returns a live bar when progress display is enabled, stdout
// is a TTY, and the source duration is known; nil otherwise.
func newProgressBar(cfg *config.Config, src string, durationSec float64) *progressbar.ProgressBar {
	if !cfg.ShowProgress || durationSec <= 0 || !term.IsTerminal(os.Stdout) {
		return nil
	}
	// Track in centiseconds so short tracks still render smooth steps.
	total := int64(durationSec * 100)
	name := shortName(src)
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func updateBar(bar *progressbar.ProgressBar, p Progress, durationSec float64) {
	if bar == nil {
		return
	}
	cur := int64(p.Seconds * 100)
	if max := int64(durationSec * 100); cur > max {
		cur = max
	}
	_ = bar.Set64(cur)
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	_ = bar.Finish()
}

// shortName truncates long basenames so the bar fits a normal terminal.
func shortName(path string) string {
	base := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		base = path[i+1:]
	}
	if len(base) > 40 {
		base = base[:37] + "..."
	}
	return base
}

// stderrTail returns the last few lines of ffmpeg stderr output.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return strings.Join(lines, "\n")
}

// scanCRLines is a bufio.SplitFunc that treats both \n and \r as line
// terminators. ffmpeg redraws its stats line with bare carriage returns, so
// plain line scanning would sit on one giant token until the process exits.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
