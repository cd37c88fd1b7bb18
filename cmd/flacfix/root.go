package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flacfix/internal/check"
	"flacfix/internal/config"
	"flacfix/internal/display"
	"flacfix/internal/logging"
	"flacfix/internal/pipeline"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// cliFlags collects the raw flag values; they are folded into the Config
// after the optional config file has been applied, so flags always win.
type cliFlags struct {
	report     string
	root       string
	apply      bool
	configPath string
	logFile    string
	verbose    bool
	color      string
	noColor    bool
	noProgress bool
	level      int
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:   "flacfix --report skipped.xlsx --root /music",
	Short: "Convert and repair audio files listed in a skipped-files export",
	Long: `flacfix reads an xlsx export of files an importer refused, finds them
under the root directory, and plans one action per file:

  convert   .m4a/.mp4 into a new .flac alongside the original
  repair    re-encode a .flac that fails a full decode test, in place
  skip      valid .flac files and unsupported extensions

By default nothing is touched (preview). With --apply each planned file is
converted with ffmpeg, the output is verified with ffprobe, and only then
is the original removed. Every candidate is recorded in a CSV log written
into the root directory.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFix(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "TOML config file (optional)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&flags.color, "color", "", "color output: auto, always, never")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable color output (same as --color never)")
	pf.StringVar(&flags.logFile, "log", "", "also write a plain-text log to this file")

	f := rootCmd.Flags()
	f.StringVarP(&flags.report, "report", "r", "", "skipped-files xlsx export (required)")
	f.StringVarP(&flags.root, "root", "d", "", "directory containing the listed files (required)")
	f.BoolVar(&flags.apply, "apply", false, "execute planned actions (default is preview)")
	f.BoolVar(&flags.noProgress, "no-progress", false, "disable the live conversion progress bar")
	f.IntVar(&flags.level, "compression-level", -1, "FLAC compression level 0-12 (default 8)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// buildConfig layers defaults, the optional config file, and CLI flags.
func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		if err := config.LoadFile(&cfg, flags.configPath); err != nil {
			return nil, err
		}
	}

	cfg.ReportPath = flags.report
	cfg.RootDir = config.NormalizeDirArg(flags.root)
	if flags.apply {
		cfg.Mode = config.ModeApply
	}
	cfg.Verbose = flags.verbose
	cfg.LogFile = flags.logFile
	if flags.color != "" {
		cfg.ColorMode = config.ColorMode(flags.color)
	}
	if flags.noColor {
		cfg.ColorMode = config.ColorNever
	}
	if flags.noProgress {
		cfg.ShowProgress = false
	}
	if flags.level >= 0 {
		cfg.CompressionLevel = flags.level
	}
	return &cfg, nil
}

func runFix(ctx context.Context) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner()

	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		log.Error("Run 'flacfix check' for diagnostics")
		return err
	}

	// Ctrl-C cancels the context: the in-flight ffmpeg is killed, its
	// partial output cleaned up, and the run stops before the next file.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d file(s) failed; see %s", stats.Failed, cfg.LogName())
	}
	return nil
}
