package pitchtrack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

// Source is a mono 16-bit PCM frame source. ReadFrames returns zero frames
// at the end of the stream.
type Source interface {
	Channels() int
	SampleWidth() int
	SampleRate() int
	ReadFrames(limit int) (n int, raw []byte, err error)
}

// Sink receives tracker output in stream order.
type Sink interface {
	Emit(pitch.Emission) error
	CloseStreak(pitch.Streak) error
}

// SmoothSink receives one smoothed pitch per analysis step; 0 means unvoiced.
type SmoothSink interface {
	Pitch(frame int, hz float64) error
}

// Stats summarizes a run.
type Stats struct {
	Chunks  int
	Frames  int
	Steps   int
	Voiced  int
	Streaks int
}

// Option configures a run.
type Option func(*options)

type options struct {
	stream []core.StreamOption
	logger *slog.Logger
}

// WithChunkFrames sets the number of frames requested per read.
func WithChunkFrames(frames int) Option {
	return func(o *options) { o.stream = append(o.stream, core.WithChunkFrames(frames)) }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(src Source, opts []Option) (core.StreamConfig, *slog.Logger) {
	o := options{stream: []core.StreamOption{core.WithSampleRate(src.SampleRate())}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return core.ApplyStreamOptions(o.stream...), o.logger
}

func checkSource(src Source, cfg pitch.Config) error {
	if err := pitch.CheckFormat(src.Channels(), src.SampleWidth()); err != nil {
		return err
	}
	if src.SampleRate() != cfg.SampleRate {
		return fmt.Errorf("%w: source rate %d does not match config rate %d",
			pitch.ErrConfig, src.SampleRate(), cfg.SampleRate)
	}
	return cfg.Validate()
}

// chunks reads src until a zero-frame read and calls fn with each chunk.
func chunks(ctx context.Context, src Source, stream core.StreamConfig, stats *Stats, fn func([]int16) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, raw, err := src.ReadFrames(stream.ChunkFrames)
		if err != nil {
			return fmt.Errorf("pitchtrack: read: %w", err)
		}
		if n == 0 {
			return nil
		}
		stats.Chunks++
		stats.Frames += n
		if err := fn(core.DecodePCM16LE(raw)); err != nil {
			return err
		}
	}
}

// Run tracks pitch over src and reports to sink. Configuration and format
// problems are reported before anything reaches the sink.
func Run(ctx context.Context, src Source, sink Sink, cfg pitch.Config, opts ...Option) (Stats, error) {
	var stats Stats
	if err := checkSource(src, cfg); err != nil {
		return stats, err
	}
	stream, logger := newOptions(src, opts)

	ex, err := pitch.NewExtractor(cfg)
	if err != nil {
		return stats, err
	}
	tr, err := pitch.NewTracker(cfg)
	if err != nil {
		return stats, err
	}

	wmin, wmax := cfg.LagRange()
	logger.Debug("pitch tracking started",
		"rate", cfg.SampleRate, "wmin", wmin, "wmax", wmax,
		"step", ex.StepSize(), "method", ex.Method(), "chunk", stream.ChunkFrames)

	closeStreak := func(s pitch.Streak) error {
		stats.Streaks++
		logger.Debug("streak closed", "start", s.Start(), "end", s.End(), "steps", len(s))
		return sink.CloseStreak(s)
	}

	err = chunks(ctx, src, stream, &stats, func(samples []int16) error {
		for st := range ex.Feed(samples) {
			stats.Steps++
			up := tr.Observe(st)
			if up.Emission.Voiced() {
				stats.Voiced++
				if err := sink.Emit(up.Emission); err != nil {
					return err
				}
			}
			if up.Closed != nil {
				if err := closeStreak(up.Closed); err != nil {
					return err
				}
			}
		}
		return ex.Err()
	})
	if err != nil {
		return stats, err
	}

	if s := tr.Flush(); s != nil {
		if err := closeStreak(s); err != nil {
			return stats, err
		}
	}

	logger.Info("pitch tracking finished",
		"frames", stats.Frames, "chunks", stats.Chunks, "steps", stats.Steps,
		"voiced", stats.Voiced, "streaks", stats.Streaks)
	return stats, nil
}

// RunSmoothed reports one smoothed pitch per analysis step to sink.
func RunSmoothed(ctx context.Context, src Source, sink SmoothSink, cfg pitch.Config, scfg pitch.SmootherConfig, opts ...Option) (Stats, error) {
	var stats Stats
	if err := checkSource(src, cfg); err != nil {
		return stats, err
	}
	stream, logger := newOptions(src, opts)

	// The smoother applies its own thresholds to the best candidate of
	// every step, so the search keeps every non-negative peak.
	ex, err := pitch.NewExtractor(cfg.Unthresholded())
	if err != nil {
		return stats, err
	}
	sm, err := pitch.NewSmoother(scfg)
	if err != nil {
		return stats, err
	}

	err = chunks(ctx, src, stream, &stats, func(samples []int16) error {
		for st := range ex.Feed(samples) {
			stats.Steps++
			hz := sm.Observe(st)
			if hz > 0 {
				stats.Voiced++
			}
			if err := sink.Pitch(st.Frame, hz); err != nil {
				return err
			}
		}
		return ex.Err()
	})
	if err != nil {
		return stats, err
	}

	logger.Info("smoothed pitch finished",
		"frames", stats.Frames, "steps", stats.Steps, "voiced", stats.Voiced)
	return stats, nil
}
