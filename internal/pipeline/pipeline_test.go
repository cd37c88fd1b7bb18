package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"flacfix/internal/config"
	"flacfix/internal/ffmpeg"
	"flacfix/internal/logging"
	"flacfix/internal/probe"
	"flacfix/internal/runlog"
)

// writeReport builds a real xlsx workbook with a single "File Path" column.
func writeReport(t *testing.T, dir string, paths ...string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"File Path"}); err != nil {
		t.Fatalf("SetSheetRow header: %v", err)
	}
	for i, p := range paths {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{p}); err != nil {
			t.Fatalf("SetSheetRow %d: %v", i, err)
		}
	}
	path := filepath.Join(dir, "skipped.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func testConfig(report, root string, mode config.Mode) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ReportPath = report
	cfg.RootDir = root
	cfg.Mode = mode
	cfg.ColorMode = config.ColorNever
	cfg.ShowProgress = false
	return &cfg
}

func testLogger(t *testing.T, cfg *config.Config) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return log
}

// okTools is a toolset where every external call succeeds: decode checks
// pass, conversion writes a small valid-looking file, verification accepts.
func okTools() tools {
	return tools{
		decodeTest: func(_ context.Context, _ *config.Config, _ string) (ffmpeg.DecodeResult, error) {
			return ffmpeg.DecodeResult{OK: true}, nil
		},
		convert: func(_ context.Context, _ *config.Config, _, dst string, _ float64) error {
			return os.WriteFile(dst, []byte("fLaC-test-output"), 0o644)
		},
		probeFile: func(_ context.Context, _, _ string) (*probe.Result, error) {
			return &probe.Result{
				Format:       probe.FormatInfo{Duration: 180},
				AudioStreams: []probe.AudioStream{{Codec: "flac", Channels: 2}},
			}, nil
		},
		verifyOut: func(_ context.Context, _ *config.Config, _ string) error {
			return nil
		},
	}
}

// readLog parses the CSV log written into root for the given mode.
func readLog(t *testing.T, cfg *config.Config, root string) []runlog.Record {
	t.Helper()
	f, err := os.Open(filepath.Join(root, cfg.LogName()))
	if err != nil {
		t.Fatalf("open csv log: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv log: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("csv log has no header")
	}
	var recs []runlog.Record
	for _, row := range rows[1:] {
		recs = append(recs, runlog.Record{
			Source: row[0], Action: row[1], Destination: row[2],
			Outcome: row[3], Err: row[4],
		})
	}
	return recs
}

func TestRun_PreviewMakesNoChanges(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "song.m4a")
	writeFile(t, src, "m4a-bytes")
	report := writeReport(t, t.TempDir(), "song.m4a")

	cfg := testConfig(report, root, config.ModePreview)
	tl := okTools()
	tl.convert = func(_ context.Context, _ *config.Config, _, _ string, _ float64) error {
		t.Fatal("preview mode must not convert")
		return nil
	}

	stats, err := run(context.Background(), cfg, testLogger(t, cfg), tl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Planned != 1 {
		t.Errorf("Planned = %d, want 1", stats.Planned)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original was touched in preview mode: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "song.flac")); !os.IsNotExist(err) {
		t.Error("preview mode created an output file")
	}

	recs := readLog(t, cfg, root)
	if len(recs) != 1 || recs[0].Outcome != runlog.OutcomePlanned || recs[0].Action != "convert" {
		t.Errorf("log = %+v, want one planned convert row", recs)
	}
}

func TestRun_ApplyConvertSuccess(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "song.m4a")
	writeFile(t, src, "m4a-bytes")
	report := writeReport(t, t.TempDir(), src)

	cfg := testConfig(report, root, config.ModeApply)
	stats, err := run(context.Background(), cfg, testLogger(t, cfg), okTools())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Converted != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 1 converted / 0 failed", stats)
	}
	if stats.BytesReplaced == 0 {
		t.Error("BytesReplaced = 0, want source size")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("original not removed after verified conversion")
	}
	if _, err := os.Stat(filepath.Join(root, "song.flac")); err != nil {
		t.Errorf("converted output missing: %v", err)
	}

	recs := readLog(t, cfg, root)
	if len(recs) != 1 || recs[0].Outcome != runlog.OutcomeSuccess {
		t.Errorf("log = %+v, want one success row", recs)
	}
}

func TestRun_ApplyConvertFailureRemovesPartial(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "song.m4a")
	writeFile(t, src, "m4a-bytes")
	report := writeReport(t, t.TempDir(), "song.m4a")

	cfg := testConfig(report, root, config.ModeApply)
	tl := okTools()
	tl.convert = func(_ context.Context, _ *config.Config, _, dst string, _ float64) error {
		writeFile(t, dst, "truncated")
		return errors.New("encoder exploded")
	}

	stats, err := run(context.Background(), cfg, testLogger(t, cfg), tl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Failed != 1 || stats.Converted != 0 {
		t.Errorf("stats = %+v, want 1 failed", stats)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original must survive a failed conversion: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "song.flac")); !os.IsNotExist(err) {
		t.Error("partial output not cleaned up")
	}
}

func TestRun_ApplyVerifyFailureKeepsBoth(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "song.m4a")
	writeFile(t, src, "m4a-bytes")
	report := writeReport(t, t.TempDir(), "song.m4a")

	cfg := testConfig(report, root, config.ModeApply)
	tl := okTools()
	tl.verifyOut = func(_ context.Context, _ *config.Config, _ string) error {
		return errors.New("no audio stream in output")
	}

	stats, err := run(context.Background(), cfg, testLogger(t, cfg), tl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original must survive a failed verification: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "song.flac")); err != nil {
		t.Errorf("unverified output should be kept for inspection: %v", err)
	}

	recs := readLog(t, cfg, root)
	if len(recs) != 1 || !strings.Contains(recs[0].Err, "verification") {
		t.Errorf("log = %+v, want failure row mentioning verification", recs)
	}
}

func TestRun_ApplyRepairCorruptFlac(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "broken.flac")
	writeFile(t, src, "not really flac")
	report := writeReport(t, t.TempDir(), "broken.flac")

	cfg := testConfig(report, root, config.ModeApply)
	tl := okTools()
	tl.decodeTest = func(_ context.Context, _ *config.Config, _ string) (ffmpeg.DecodeResult, error) {
		return ffmpeg.DecodeResult{OK: false, Detail: "invalid frame header"}, nil
	}

	stats, err := run(context.Background(), cfg, testLogger(t, cfg), tl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Repaired != 1 {
		t.Errorf("Repaired = %d, want 1", stats.Repaired)
	}
	got, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("repaired file missing: %v", err)
	}
	if string(got) != "fLaC-test-output" {
		t.Errorf("repaired content = %q, want the re-encoded bytes", got)
	}

	// No hidden temp files may survive a successful repair.
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") && strings.Contains(e.Name(), ".repair-") {
			t.Errorf("stale repair temp left behind: %s", e.Name())
		}
	}
}

func TestRun_ValidFlacSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fine.flac"), "fLaC...")
	report := writeReport(t, t.TempDir(), "fine.flac")

	cfg := testConfig(report, root, config.ModeApply)
	stats, err := run(context.Background(), cfg, testLogger(t, cfg), okTools())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Skipped != 1 || stats.Planned != 0 {
		t.Errorf("stats = %+v, want 1 skipped / 0 planned", stats)
	}
	recs := readLog(t, cfg, root)
	if len(recs) != 1 || recs[0].Outcome != runlog.OutcomeSkipped || recs[0].Err != "already valid" {
		t.Errorf("log = %+v, want skipped row with reason", recs)
	}
}

func TestRun_DuplicateRowsCollapsed(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "song.m4a")
	writeFile(t, src, "m4a-bytes")
	// Same file under two spellings: bare name and absolute path. The report
	// reader only dedupes identical strings, so both reach the pipeline.
	report := writeReport(t, t.TempDir(), "song.m4a", src)

	cfg := testConfig(report, root, config.ModePreview)
	stats, err := run(context.Background(), cfg, testLogger(t, cfg), okTools())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Planned != 1 || stats.Duplicates != 1 {
		t.Errorf("stats = %+v, want 1 planned / 1 duplicate", stats)
	}
}

func TestRun_NotFoundRecorded(t *testing.T) {
	root := t.TempDir()
	report := writeReport(t, t.TempDir(), "gone.m4a")

	cfg := testConfig(report, root, config.ModePreview)
	stats, err := run(context.Background(), cfg, testLogger(t, cfg), okTools())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.NotFound != 1 {
		t.Errorf("NotFound = %d, want 1", stats.NotFound)
	}
	recs := readLog(t, cfg, root)
	if len(recs) != 1 || recs[0].Outcome != runlog.OutcomeNotFound {
		t.Errorf("log = %+v, want one not-found row", recs)
	}
}

func TestRun_ApplyLockHeld(t *testing.T) {
	root := t.TempDir()
	report := writeReport(t, t.TempDir(), "song.m4a")

	held := flock.New(filepath.Join(root, lockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("could not pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	cfg := testConfig(report, root, config.ModeApply)
	_, err = run(context.Background(), cfg, testLogger(t, cfg), okTools())
	if err == nil || !strings.Contains(err.Error(), "already active") {
		t.Errorf("err = %v, want lock contention error", err)
	}
}

func TestRun_MissingRootFatal(t *testing.T) {
	report := writeReport(t, t.TempDir(), "song.m4a")
	cfg := testConfig(report, filepath.Join(t.TempDir(), "nope"), config.ModePreview)
	if _, err := run(context.Background(), cfg, testLogger(t, cfg), okTools()); err == nil {
		t.Error("expected error for missing root directory")
	}
}

func TestRun_UnreadableReportFatal(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(filepath.Join(root, "missing.xlsx"), root, config.ModePreview)
	if _, err := run(context.Background(), cfg, testLogger(t, cfg), okTools()); err == nil {
		t.Error("expected error for unreadable report")
	}
}

func TestRun_CancelledContextStops(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.m4a"), "x")
	writeFile(t, filepath.Join(root, "b.m4a"), "x")
	report := writeReport(t, t.TempDir(), "a.m4a", "b.m4a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(report, root, config.ModeApply)
	stats, err := run(ctx, cfg, testLogger(t, cfg), okTools())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Converted != 0 {
		t.Errorf("Converted = %d, want 0 after pre-cancelled context", stats.Converted)
	}
}
