package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sfzplayer",
	Short: "An SFZ sample player",
	Long: `sfzplayer loads an SFZ instrument definition and plays it from MIDI input.

The render subcommand drives the instrument from a Standard MIDI File and
writes a stereo WAV; the play subcommand plays the same stream through the
system audio output.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
