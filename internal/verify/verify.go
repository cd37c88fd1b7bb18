// Package verify checks conversion outputs before the original may be
// deleted: the produced file must probe cleanly, contain at least one audio
// stream, and report a strictly positive duration.
package verify

import (
	"context"
	"errors"
	"fmt"

	"flacfix/internal/config"
	"flacfix/internal/probe"
)

// Failure causes, wrapped into the error returned by [Output].
var (
	ErrNoAudioStream = errors.New("no audio stream in output")
	ErrZeroDuration  = errors.New("output duration is not positive")
)

// Output probes path and returns nil only when both checks pass. Any error
// here means the original file must be preserved.
func Output(ctx context.Context, cfg *config.Config, path string) error {
	pr, err := probe.Probe(ctx, cfg.FfprobeBin, path)
	if err != nil {
		return fmt.Errorf("verify %q: %w", path, err)
	}
	return Check(pr)
}

// Check applies the two verification rules to an already-probed result.
// Split from Output so the rules are testable without ffprobe.
func Check(pr *probe.Result) error {
	if !pr.HasAudio() {
		return ErrNoAudioStream
	}
	if pr.Duration() <= 0 {
		return ErrZeroDuration
	}
	return nil
}
