package commands

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
	"github.com/cwbudde/algo-pitch/measure/pitchtrack"
)

func newDetectCmd(a *app) *cobra.Command {
	var (
		flags      analysisFlags
		similarity bool
		smooth     bool
		precision  int
	)

	cmd := &cobra.Command{
		Use:   "detect [flags] file.wav...",
		Short: "Track pitch over WAV files and print the contour",
		Long: `Track pitch over mono 16-bit WAV files.

Every voiced analysis step prints one line: the frame index followed by the
ranked pitch estimates in Hz. A blank line ends each voiced streak.

With --smooth, a single smoothed pitch is printed per voiced step instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := detectFile(cmd, a, &flags, path, similarity, smooth, precision); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&similarity, "similarity", "s", false, "print frequency:similarity pairs")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "print one smoothed pitch per step")
	cmd.Flags().IntVar(&precision, "precision", 1, "decimals printed for frequencies")
	return cmd
}

func detectFile(cmd *cobra.Command, a *app, flags *analysisFlags, path string, similarity, smooth bool, precision int) error {
	src, err := openMono(path)
	if err != nil {
		return err
	}
	defer src.Close()

	cfg, chunk, err := flags.config(cmd, a, src.SampleRate())
	if err != nil {
		return err
	}
	a.logger.Debug("analyzing", "path", path, "frames", src.Frames(), "rate", src.SampleRate())

	opts := []pitchtrack.Option{pitchtrack.WithChunkFrames(chunk), pitchtrack.WithLogger(a.logger)}
	if smooth {
		sink := pitchtrack.NewSmoothTextSink(cmd.OutOrStdout())
		_, err := pitchtrack.RunSmoothed(cmd.Context(), src, sink, cfg, pitch.DefaultSmootherConfig(cfg.SampleRate), opts...)
		if ferr := sink.Flush(); err == nil {
			err = ferr
		}
		return err
	}

	textOpts := []pitchtrack.TextOption{pitchtrack.WithPrecision(precision)}
	if similarity {
		textOpts = append(textOpts, pitchtrack.WithSimilarity())
	}
	sink := pitchtrack.NewTextSink(cmd.OutOrStdout(), textOpts...)
	_, err = pitchtrack.Run(cmd.Context(), src, sink, cfg, opts...)
	if ferr := sink.Flush(); err == nil {
		err = ferr
	}
	return err
}
