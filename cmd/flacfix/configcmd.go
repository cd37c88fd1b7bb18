package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flacfix/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an annotated sample config file",
	Long: `config prints a commented TOML config file with every setting at its
default value. Redirect it somewhere and pass the path via --config:

  flacfix config > ~/.config/flacfix.toml
  flacfix --config ~/.config/flacfix.toml --report skipped.xlsx --root /music`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.SampleConfig())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
