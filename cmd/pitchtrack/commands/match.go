package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/match"
	"github.com/cwbudde/algo-pitch/dsp/segment"
)

func newMatchCmd(a *app) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "match [flags] src.wav pitchfile pattern.wav...",
		Short: "Score reference clips at the frames of a pitch file",
		Long: `For every "frame pitch" line of the pitch file, cut one pitch period
from the source at that frame and score every pattern against it.

Prints "frame score pattern" for each pattern scoring above the threshold.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, a, args[0], args[1], args[2:], threshold)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", -1, "minimum score to print")
	return cmd
}

func runMatch(cmd *cobra.Command, a *app, srcPath, pitchPath string, patterns []string, threshold float64) error {
	src, err := openMono(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	points, err := loadPoints(pitchPath)
	if err != nil {
		return err
	}

	lib, err := match.NewLibrary(src.SampleRate(), match.WithThreshold(threshold))
	if err != nil {
		return err
	}
	for _, path := range patterns {
		if err := addPattern(lib, path); err != nil {
			return err
		}
	}
	for _, p := range lib.Patterns() {
		a.logger.Debug("pattern loaded", "label", p.Label, "frames", len(p.Samples))
	}
	a.logger.Debug("matching", "patterns", lib.Len(), "points", len(points), "threshold", lib.Threshold())

	out := cmd.OutOrStdout()
	var excerpt []float64
	for _, p := range points {
		if p.Pitch <= 0 || p.Frame < 0 || p.Frame >= src.Frames() {
			continue
		}
		if err := src.Seek(p.Frame); err != nil {
			return err
		}
		samples, err := src.ReadPCM16(int(float64(src.SampleRate()) / p.Pitch))
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			continue
		}
		excerpt = core.EnsureLen(excerpt, len(samples))
		core.PCM16ToFloat(excerpt, samples)

		results, err := lib.Match(excerpt, 0, len(excerpt))
		if err != nil {
			return err
		}
		for _, r := range results {
			if _, err := fmt.Fprintf(out, "%d %.4f %s\n", p.Frame, r.Score, r.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

func addPattern(lib *match.Library, path string) error {
	r, err := openMono(path)
	if err != nil {
		return err
	}
	defer r.Close()
	samples, err := r.ReadPCM16(r.Frames())
	if err != nil {
		return err
	}
	return lib.AddPCM16(path, samples, r.SampleRate())
}

func loadPoints(path string) ([]segment.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := segment.ReadPitchFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}
