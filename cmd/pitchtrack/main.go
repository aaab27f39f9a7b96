// Package main is the entry point for the pitchtrack CLI.
//
// Usage:
//
//	pitchtrack [flags] <command> [args]
//
// Commands:
//
//	detect   - Track pitch over WAV files and print the contour
//	match    - Score reference clips at the frames of a pitch file
//	streaks  - Group pitch frames into voiced streaks
//	regions  - Cut the frames around pitch triggers into WAV files
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-pitch/cmd/pitchtrack/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
