package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"flacfix/internal/config"
	"flacfix/internal/display"
	"flacfix/internal/ffmpeg"
	"flacfix/internal/locate"
	"flacfix/internal/logging"
	"flacfix/internal/naming"
	"flacfix/internal/planner"
	"flacfix/internal/probe"
	"flacfix/internal/report"
	"flacfix/internal/runlog"
	"flacfix/internal/verify"
)

// lockName is the apply-mode run lock created in the root directory. Two
// apply runs on the same library must never interleave deletions.
const lockName = ".flacfix.lock"

// tools groups the external-process touchpoints so tests can run the full
// pipeline without ffmpeg/ffprobe installed.
type tools struct {
	decodeTest func(ctx context.Context, cfg *config.Config, path string) (ffmpeg.DecodeResult, error)
	convert    func(ctx context.Context, cfg *config.Config, src, dst string, durationSec float64) error
	probeFile  func(ctx context.Context, bin, path string) (*probe.Result, error)
	verifyOut  func(ctx context.Context, cfg *config.Config, path string) error
}

func defaultTools() tools {
	return tools{
		decodeTest: ffmpeg.DecodeTest,
		convert:    ffmpeg.Convert,
		probeFile:  probe.Probe,
		verifyOut:  verify.Output,
	}
}

// Run is the top-level entry point: it reads the report, processes every
// candidate sequentially, and returns aggregate stats. The returned error is
// reserved for fatal conditions (unreadable report, inaccessible root, held
// apply lock); per-file failures only show up in the stats and CSV log.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	return run(ctx, cfg, log, defaultTools())
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger, t tools) (RunStats, error) {
	var stats RunStats

	rootAbs, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return stats, fmt.Errorf("resolve root: %w", err)
	}
	fi, err := os.Stat(rootAbs)
	if err != nil {
		return stats, fmt.Errorf("root directory: %w", err)
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("root is not a directory: %s", rootAbs)
	}

	candidates, err := report.ReadCandidates(cfg.ReportPath)
	if err != nil {
		return stats, err
	}
	stats.Candidates = len(candidates)

	if cfg.Apply() {
		lock := flock.New(filepath.Join(rootAbs, lockName))
		ok, err := lock.TryLock()
		if err != nil {
			return stats, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return stats, fmt.Errorf("another apply run is already active on %s", rootAbs)
		}
		defer func() { _ = lock.Unlock() }()
	}

	logw, err := runlog.Create(filepath.Join(rootAbs, cfg.LogName()))
	if err != nil {
		// The CSV log is reporting, not safety; warn and carry on.
		log.Warn("CSV log unavailable: %v", err)
		logw = nil
	} else {
		defer func() {
			if err := logw.Close(); err != nil {
				log.Warn("Closing CSV log: %v", err)
			}
		}()
	}

	logRunHeader(cfg, log, &stats, rootAbs)

	r := &runState{
		cfg:      cfg,
		log:      log,
		tools:    t,
		logw:     logw,
		rootAbs:  rootAbs,
		resolver: naming.NewResolver(fileExists),
		seen:     make(map[string]bool),
		stats:    &stats,
	}

	for i, cand := range candidates {
		if ctx.Err() != nil {
			log.Warn("Interrupted, stopping before next file")
			break
		}
		r.quiet = i >= cfg.PreviewListLimit
		r.processCandidate(ctx, cand, i+1, len(candidates))
	}

	if !cfg.Apply() && len(r.planRows) > 0 {
		fmt.Println()
		fmt.Println(display.RenderPlanTable(r.planRows))
	}

	logSummary(cfg, log, &stats)
	if logw != nil {
		log.Info("Log written to: %s", logw.Path())
	}
	return stats, nil
}

// runState carries the per-run mutable state through candidate processing.
type runState struct {
	cfg      *config.Config
	log      *logging.Logger
	tools    tools
	logw     *runlog.Writer
	rootAbs  string
	resolver *naming.Resolver
	seen     map[string]bool // resolved path → already processed
	stats    *RunStats
	planRows []display.PlanRow
	quiet    bool // listing cap reached; suppress per-file chatter
}

// processCandidate drives one candidate through the state machine:
// locate → plan → report (preview) or execute (apply).
func (r *runState) processCandidate(ctx context.Context, cand string, idx, total int) {
	src, err := locate.Resolve(cand, r.rootAbs)
	if err != nil {
		r.stats.NotFound++
		if !r.quiet {
			r.log.Warn("[%d/%d] Not found: %s", idx, total, cand)
		}
		r.record(runlog.Record{Source: cand, Outcome: runlog.OutcomeNotFound, Err: err.Error()})
		return
	}

	if r.seen[src] {
		r.stats.Duplicates++
		r.log.Debug("[%d/%d] Duplicate row for %s", idx, total, src)
		r.record(runlog.Record{Source: cand, Outcome: runlog.OutcomeSkipped, Err: "duplicate of earlier row"})
		return
	}
	r.seen[src] = true

	// Only existing .flac files need the decode probe; their action hinges
	// on whether they decode cleanly.
	decodeOK := true
	if planner.NeedsDecodeCheck(src) {
		res, err := r.tools.decodeTest(ctx, r.cfg, src)
		if err != nil {
			r.stats.Failed++
			r.log.Error("[%d/%d] Decode check failed to run: %v", idx, total, err)
			r.record(runlog.Record{Source: src, Outcome: runlog.OutcomeFailure, Err: err.Error()})
			return
		}
		decodeOK = res.OK
	}

	plan := planner.BuildPlan(src, decodeOK, r.resolver)

	if plan.Action == planner.ActionSkip {
		r.stats.Skipped++
		if !r.quiet {
			r.log.Info("[%d/%d] Skip (%s): %s", idx, total, plan.SkipReason, filepath.Base(src))
		}
		r.record(runlog.Record{Source: src, Action: "skip", Outcome: runlog.OutcomeSkipped, Err: plan.SkipReason})
		return
	}

	r.stats.Planned++

	if !r.cfg.Apply() {
		if !r.quiet {
			r.log.Info("[%d/%d] Would %s: %s -> %s", idx, total,
				plan.Action, filepath.Base(plan.Source), filepath.Base(plan.Dest))
		}
		r.planRows = append(r.planRows, display.PlanRow{
			Action: plan.Action.String(),
			Source: plan.Source,
			Dest:   plan.Dest,
			Note:   plan.Note,
		})
		r.record(runlog.Record{
			Source: plan.Source, Action: plan.Action.String(),
			Destination: plan.Dest, Outcome: runlog.OutcomePlanned,
		})
		return
	}

	r.executePlan(ctx, plan, idx, total)
}

// executePlan runs the apply path: convert → verify → commit. The original
// is touched only after verification passes.
func (r *runState) executePlan(ctx context.Context, plan *planner.FilePlan, idx, total int) {
	action := plan.Action.String()

	srcSize := int64(0)
	if fi, err := os.Stat(plan.Source); err == nil {
		srcSize = fi.Size()
	}

	// Source duration scales the progress bar; unknown duration only costs
	// the live percentage, so probe errors are not fatal here.
	durationSec := 0.0
	if pr, err := r.tools.probeFile(ctx, r.cfg.FfprobeBin, plan.Source); err == nil {
		durationSec = pr.Duration()
	}

	r.log.Info("[%d/%d] %s: %s -> %s (%s)", idx, total, action,
		filepath.Base(plan.Source), filepath.Base(plan.Dest),
		display.FormatDuration(durationSec))

	if err := r.tools.convert(ctx, r.cfg, plan.Source, plan.Work, durationSec); err != nil {
		// Partial output is useless; the original is the only good copy.
		removeIfExists(plan.Work)
		r.stats.Failed++
		r.log.Error("Conversion failed: %v", err)
		r.record(runlog.Record{
			Source: plan.Source, Action: action, Destination: plan.Dest,
			Outcome: runlog.OutcomeFailure, Err: err.Error(),
		})
		return
	}

	if err := r.tools.verifyOut(ctx, r.cfg, plan.Work); err != nil {
		// Kept on disk for inspection; the original stays authoritative.
		r.stats.Failed++
		r.log.Error("Verification failed (%v); output kept at %s", err, plan.Work)
		r.record(runlog.Record{
			Source: plan.Source, Action: action, Destination: plan.Work,
			Outcome: runlog.OutcomeFailure, Err: "verification: " + err.Error(),
		})
		return
	}

	// Verified: the replacement is good, commit it.
	if err := r.commit(plan); err != nil {
		r.stats.Partial++
		r.log.Warn("Replacement verified but cleanup failed: %v", err)
		r.record(runlog.Record{
			Source: plan.Source, Action: action, Destination: plan.Dest,
			Outcome: runlog.OutcomePartial, Err: err.Error(),
		})
		return
	}

	switch plan.Action {
	case planner.ActionConvert:
		r.stats.Converted++
	case planner.ActionRepair:
		r.stats.Repaired++
	}
	r.stats.BytesReplaced += srcSize
	if fi, err := os.Stat(plan.Dest); err == nil {
		r.stats.BytesDelta += fi.Size() - srcSize
	}

	r.log.Success("Done: %s -> %s", filepath.Base(plan.Source), filepath.Base(plan.Dest))
	r.record(runlog.Record{
		Source: plan.Source, Action: action, Destination: plan.Dest,
		Outcome: runlog.OutcomeSuccess,
	})
}

// commit performs the destructive step for a verified replacement:
// convert deletes the original, repair renames the temp over it.
func (r *runState) commit(plan *planner.FilePlan) error {
	switch plan.Action {
	case planner.ActionConvert:
		if err := os.Remove(plan.Source); err != nil {
			return fmt.Errorf("remove original: %w", err)
		}
	case planner.ActionRepair:
		if err := os.Rename(plan.Work, plan.Dest); err != nil {
			return fmt.Errorf("replace original (re-encoded copy kept at %s): %w", plan.Work, err)
		}
	}
	return nil
}

// record appends a CSV row, surfacing (but not propagating) write failures.
func (r *runState) record(rec runlog.Record) {
	if r.logw == nil {
		return
	}
	if err := r.logw.Append(rec); err != nil {
		r.log.Warn("CSV log write failed: %v", err)
	}
}

// --- Logging helpers ---

func logRunHeader(cfg *config.Config, log *logging.Logger, stats *RunStats, rootAbs string) {
	if cfg.Apply() {
		log.Info("=== APPLY MODE ===")
	} else {
		log.Info("=== PREVIEW MODE (pass --apply to execute) ===")
	}
	log.Info("Report: %s", cfg.ReportPath)
	log.Info("Root:   %s", rootAbs)
	log.Info("Rows parsed: %d", stats.Candidates)
	log.Info("FLAC compression level: %d", cfg.CompressionLevel)
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	fmt.Println()
	log.Info("==============================")
	if cfg.Apply() {
		log.Info("Done: %d converted, %d repaired, %d skipped, %d not found, %d failed",
			stats.Converted, stats.Repaired, stats.Skipped, stats.NotFound, stats.Failed)
		if stats.Partial > 0 {
			log.Warn("  %d verified replacements need manual cleanup", stats.Partial)
		}
		if stats.Succeeded() > 0 {
			log.Success("  Originals replaced: %s (size change %s)",
				display.FormatBytes(stats.BytesReplaced),
				display.FormatBytesWithSign(stats.BytesDelta))
		}
	} else {
		log.Info("Planned: %d actions, %d skipped, %d not found (no changes made)",
			stats.Planned, stats.Skipped, stats.NotFound)
	}
	if stats.Duplicates > 0 {
		log.Info("  Duplicate report rows collapsed: %d", stats.Duplicates)
	}
}

// --- small helpers ---

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func removeIfExists(path string) {
	if fileExists(path) {
		if err := os.Remove(path); err != nil {
			// Best effort; a stale partial file is annoying but harmless.
			fmt.Fprintf(os.Stderr, "flacfix: could not remove partial output %s: %v\n", path, err)
		}
	}
}
