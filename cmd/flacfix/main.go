// Command flacfix reads a skipped-files xlsx export, locates the listed
// audio files under a root directory, and converts or repairs them to
// clean FLAC. Preview is the default; nothing is modified without --apply.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "flacfix: %v\n", err)
		os.Exit(1)
	}
}
