package display

import (
	"fmt"
	"os"

	"flacfix/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` _____ _            _____ _
|  ___| | __ _  ___|  ___(_)_  __
| |_  | |/ _`+"`"+` |/ __| |_  | \ \/ /
|  _| | | (_| | (__|  _| | |>  <
|_|   |_|\__,_|\___|_|   |_/_/\_\
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
