package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	verbose     bool
	profilePath string

	profile *pitch.Profile
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pitchtrack",
		Short: "Pitch contour extraction and template matching for speech recordings",
		Long: `pitchtrack - autocorrelation pitch tracking for mono 16-bit WAV files.

Examples:
  # Print the pitch contour of a male voice
  pitchtrack detect -M voice.wav > voice.pitch

  # Group the contour into streaks with 0.1 s margins
  pitchtrack streaks voice.wav voice.pitch

  # Score reference clips at every pitch frame
  pitchtrack match voice.wav voice.pitch a.wav i.wav u.wav`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&a.profilePath, "profile", "", "YAML tuning profile")

	rootCmd.AddCommand(
		newDetectCmd(a),
		newMatchCmd(a),
		newStreaksCmd(a),
		newRegionsCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.profilePath != "" {
		p, err := pitch.LoadProfile(a.profilePath)
		if err != nil {
			return err
		}
		a.profile = p
		a.logger.Debug("profile loaded", "path", a.profilePath)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
