package commands

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/segment"
	"github.com/cwbudde/algo-pitch/internal/wavio"
)

// namedRegion is the YAML form of a picked region.
type namedRegion struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

func newStreaksCmd(a *app) *cobra.Command {
	var (
		base         string
		outer, inner float64
		asYAML       bool
	)

	cmd := &cobra.Command{
		Use:   "streaks [flags] src.wav pitchfile...",
		Short: "Group pitch frames into voiced streaks",
		Long: `Group the frames of pitch files into streaks. A gap of at least the
inner window starts a new streak; every streak is widened by the outer
window on both sides and clipped to the source.

Prints "nameNNNN start end" per streak.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := wavio.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			w0 := int(outer * float64(src.SampleRate()))
			w1 := int(inner * float64(src.SampleRate()))
			var out []namedRegion
			for _, path := range args[1:] {
				points, err := loadPoints(path)
				if err != nil {
					return err
				}
				regions := segment.Clamp(segment.PickStreaks(segment.Triggers(points), w0, w1), src.Frames())
				for _, r := range regions {
					out = append(out, namedRegion{Name: fmt.Sprintf("%s%04d", base, len(out)), Start: r.Start, End: r.End})
				}
			}
			a.logger.Debug("streaks picked", "count", len(out))
			return writeRegions(cmd.OutOrStdout(), out, asYAML)
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "out", "name prefix")
	cmd.Flags().Float64VarP(&outer, "outer", "w", 0.1, "margin added around each streak in seconds")
	cmd.Flags().Float64VarP(&inner, "inner", "W", 0.1, "gap that splits streaks in seconds")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print regions as YAML")
	return cmd
}

func newRegionsCmd(a *app) *cobra.Command {
	var (
		pattern     string
		left, right float64
		asYAML      bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "regions [flags] src.wav pitchfile...",
		Short: "Cut the frames around pitch triggers into WAV files",
		Long: `Cover every frame of the pitch files with [frame-left, frame+right),
merge overlapping covers and write each region of the source to its own
WAV file named after the --base pattern.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := wavio.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			w0 := int(left * float64(src.SampleRate()))
			w1 := int(right * float64(src.SampleRate()))
			var out []namedRegion
			for _, path := range args[1:] {
				points, err := loadPoints(path)
				if err != nil {
					return err
				}
				regions := segment.Clamp(segment.PickFrames(segment.Triggers(points), w0, w1), src.Frames())
				for _, r := range regions {
					name := fmt.Sprintf(pattern, len(out))
					if !dryRun {
						if err := exportRegion(src, r, name); err != nil {
							return err
						}
					}
					out = append(out, namedRegion{Name: name, Start: r.Start, End: r.End})
				}
			}
			a.logger.Debug("regions picked", "count", len(out), "exported", !dryRun)
			return writeRegions(cmd.OutOrStdout(), out, asYAML)
		},
	}
	cmd.Flags().StringVarP(&pattern, "base", "b", "out%05d.wav", "output path pattern")
	cmd.Flags().Float64VarP(&left, "left", "L", 0.1, "frames kept before each trigger, in seconds")
	cmd.Flags().Float64VarP(&right, "right", "R", 0.1, "frames kept after each trigger, in seconds")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print regions as YAML")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "only print the regions")
	return cmd
}

func exportRegion(src *wavio.Reader, r segment.Region, path string) error {
	if err := src.Seek(r.Start); err != nil {
		return err
	}
	_, raw, err := src.ReadFrames(r.Len())
	if err != nil {
		return err
	}
	return wavio.WriteFile(path, src.Format(), raw)
}

func writeRegions(w io.Writer, regions []namedRegion, asYAML bool) error {
	if asYAML {
		if len(regions) == 0 {
			return nil
		}
		data, err := yaml.Marshal(regions)
		if err != nil {
			return fmt.Errorf("encode regions: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	for _, r := range regions {
		if _, err := fmt.Fprintf(w, "%s %d %d\n", r.Name, r.Start, r.End); err != nil {
			return err
		}
	}
	return nil
}
