package core

// StreamConfig defines how a PCM source is consumed by a streaming analysis.
type StreamConfig struct {
	SampleRate  int
	ChunkFrames int
}

// StreamOption mutates a StreamConfig.
type StreamOption func(*StreamConfig)

// DefaultStreamConfig returns defaults suited to offline file analysis.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SampleRate:  44100,
		ChunkFrames: 10000,
	}
}

// WithSampleRate sets the stream sample rate.
func WithSampleRate(sampleRate int) StreamOption {
	return func(cfg *StreamConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithChunkFrames sets the number of frames requested per source read.
func WithChunkFrames(frames int) StreamOption {
	return func(cfg *StreamConfig) {
		if frames > 0 {
			cfg.ChunkFrames = frames
		}
	}
}

// ApplyStreamOptions applies zero or more options to the default config.
func ApplyStreamOptions(opts ...StreamOption) StreamConfig {
	cfg := DefaultStreamConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
