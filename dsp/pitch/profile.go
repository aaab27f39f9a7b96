package pitch

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/algo-pitch/dsp/corr"
)

// Profile is a tuning file. Unset fields keep the value of the Config the
// profile is applied to.
//
//	preset: male
//	threshold_sim: 0.85
//	window_size: 0.02   # seconds
//	method: fft
type Profile struct {
	Preset       string   `yaml:"preset,omitempty"`
	PitchMin     *float64 `yaml:"pitchmin,omitempty"`
	PitchMax     *float64 `yaml:"pitchmax,omitempty"`
	ThresholdSim *float64 `yaml:"threshold_sim,omitempty"`
	ThresholdMag *float64 `yaml:"threshold_mag,omitempty"`
	MaxItems     *int     `yaml:"max_items,omitempty"`
	WindowSize   *float64 `yaml:"window_size,omitempty"`
	Ratio        *float64 `yaml:"ratio,omitempty"`
	Method       string   `yaml:"method,omitempty"`
	ChunkFrames  int      `yaml:"chunk_frames,omitempty"`
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pitch: read profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: parse profile: %w", ErrConfig, err)
	}
	return &p, nil
}

// Options converts the profile into config options. The preset, when set,
// is applied before explicit pitch bounds so the bounds can refine it.
func (p *Profile) Options() ([]Option, error) {
	var opts []Option
	if p.Preset != "" {
		if _, _, err := PresetRange(p.Preset); err != nil {
			return nil, err
		}
		opts = append(opts, WithPreset(p.Preset))
	}
	if p.PitchMin != nil {
		v := *p.PitchMin
		opts = append(opts, func(c *Config) { c.PitchMin = v })
	}
	if p.PitchMax != nil {
		v := *p.PitchMax
		opts = append(opts, func(c *Config) { c.PitchMax = v })
	}
	if p.ThresholdSim != nil {
		v := *p.ThresholdSim
		opts = append(opts, func(c *Config) { c.ThresholdSim = v })
	}
	if p.ThresholdMag != nil {
		v := *p.ThresholdMag
		opts = append(opts, func(c *Config) { c.ThresholdMag = v })
	}
	if p.MaxItems != nil {
		opts = append(opts, WithMaxItems(*p.MaxItems))
	}
	if p.WindowSize != nil {
		opts = append(opts, WithWindowDuration(*p.WindowSize))
	}
	if p.Ratio != nil {
		opts = append(opts, WithRatio(*p.Ratio))
	}
	if p.Method != "" {
		m, err := corr.ParseMethod(p.Method)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		opts = append(opts, WithMethod(m))
	}
	return opts, nil
}

// Apply applies the profile on top of cfg and validates the result.
func (p *Profile) Apply(cfg Config) (Config, error) {
	opts, err := p.Options()
	if err != nil {
		return Config{}, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
