package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/corr"
	"github.com/cwbudde/algo-pitch/dsp/pitch"
	"github.com/cwbudde/algo-pitch/internal/wavio"
)

// analysisFlags are the tuning flags of the commands that run the tracker.
type analysisFlags struct {
	male, female bool
	pitchMin     float64
	pitchMax     float64
	thresholdSim float64
	thresholdMag float64
	maxItems     int
	window       float64
	ratio        float64
	method       string
	chunk        int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	def := pitch.DefaultConfig(1)
	fs := cmd.Flags()
	fs.BoolVarP(&f.male, "male", "M", false, "male voice preset (75-200 Hz)")
	fs.BoolVarP(&f.female, "female", "F", false, "female voice preset (150-300 Hz)")
	fs.Float64VarP(&f.pitchMin, "pitchmin", "n", def.PitchMin, "lowest pitch in Hz")
	fs.Float64VarP(&f.pitchMax, "pitchmax", "m", def.PitchMax, "highest pitch in Hz")
	fs.Float64VarP(&f.thresholdSim, "threshold", "t", def.ThresholdSim, "similarity threshold")
	fs.Float64Var(&f.thresholdMag, "threshold-mag", def.ThresholdMag, "magnitude threshold")
	fs.IntVar(&f.maxItems, "max-items", def.MaxItems, "candidates per step")
	fs.Float64Var(&f.window, "window", 0.01, "thread expiry gap in seconds")
	fs.Float64Var(&f.ratio, "ratio", def.Ratio, "thread merge ratio in (0, 1)")
	fs.StringVar(&f.method, "method", corr.MethodAuto.String(), "correlation backend: auto, direct or fft")
	fs.IntVar(&f.chunk, "chunk", core.DefaultStreamConfig().ChunkFrames, "frames per read")
	cmd.MarkFlagsMutuallyExclusive("male", "female")
}

// config builds the analysis config for a stream at rate. Precedence is
// defaults, then the profile, then presets, then explicit flags.
func (f *analysisFlags) config(cmd *cobra.Command, a *app, rate int) (pitch.Config, int, error) {
	cfg := pitch.DefaultConfig(rate)
	chunk := f.chunk
	if a.profile != nil {
		opts, err := a.profile.Options()
		if err != nil {
			return pitch.Config{}, 0, err
		}
		for _, opt := range opts {
			opt(&cfg)
		}
		if a.profile.ChunkFrames > 0 {
			chunk = a.profile.ChunkFrames
		}
	}

	switch {
	case f.male:
		pitch.WithPreset("male")(&cfg)
	case f.female:
		pitch.WithPreset("female")(&cfg)
	}

	fs := cmd.Flags()
	if fs.Changed("pitchmin") {
		cfg.PitchMin = f.pitchMin
	}
	if fs.Changed("pitchmax") {
		cfg.PitchMax = f.pitchMax
	}
	if fs.Changed("threshold") {
		cfg.ThresholdSim = f.thresholdSim
	}
	if fs.Changed("threshold-mag") {
		cfg.ThresholdMag = f.thresholdMag
	}
	if fs.Changed("max-items") {
		cfg.MaxItems = f.maxItems
	}
	if fs.Changed("window") {
		pitch.WithWindowDuration(f.window)(&cfg)
	}
	if fs.Changed("ratio") {
		cfg.Ratio = f.ratio
	}
	if fs.Changed("method") {
		m, err := corr.ParseMethod(f.method)
		if err != nil {
			return pitch.Config{}, 0, fmt.Errorf("%w: %w", pitch.ErrConfig, err)
		}
		cfg.Method = m
	}
	if fs.Changed("chunk") {
		chunk = f.chunk
	}

	if err := cfg.Validate(); err != nil {
		return pitch.Config{}, 0, err
	}
	if chunk <= 0 {
		return pitch.Config{}, 0, fmt.Errorf("%w: chunk must be positive: %d", pitch.ErrConfig, chunk)
	}
	return cfg, chunk, nil
}

// openMono opens a WAV file and checks it is mono 16-bit.
func openMono(path string) (*wavio.Reader, error) {
	r, err := wavio.Open(path)
	if err != nil {
		return nil, err
	}
	if err := pitch.CheckFormat(r.Channels(), r.SampleWidth()); err != nil {
		r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
