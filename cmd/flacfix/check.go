package main

import (
	"errors"

	"github.com/spf13/cobra"

	"flacfix/internal/check"
	"flacfix/internal/config"
	"flacfix/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify ffmpeg, ffprobe, and the FLAC encoder are usable",
	Long: `check looks up ffmpeg and ffprobe on PATH, reports their versions,
runs a short FLAC test encode, and (when --root is given) verifies the
root directory is writable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if flags.configPath != "" {
			if err := config.LoadFile(&cfg, flags.configPath); err != nil {
				return err
			}
		}
		cfg.Verbose = flags.verbose
		cfg.RootDir = config.NormalizeDirArg(flags.root)
		if flags.color != "" {
			cfg.ColorMode = config.ColorMode(flags.color)
		}
		if flags.noColor {
			cfg.ColorMode = config.ColorNever
		}

		log, err := logging.NewLogger(&cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		if !check.RunCheck(&cfg, log) {
			return errors.New("one or more checks failed")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&flags.root, "root", "d", "", "root directory to test for writability")
	rootCmd.AddCommand(checkCmd)
}
