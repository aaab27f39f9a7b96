package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pitch/dsp/corr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(44100)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.PitchMin != 70 || cfg.PitchMax != 400 {
		t.Fatalf("pitch range = [%v, %v], want [70, 400]", cfg.PitchMin, cfg.PitchMax)
	}
	if cfg.ThresholdSim != 0.9 || cfg.ThresholdMag != 0.01 {
		t.Fatalf("thresholds = %v/%v, want 0.9/0.01", cfg.ThresholdSim, cfg.ThresholdMag)
	}
	if cfg.WindowSize != 441 {
		t.Fatalf("WindowSize = %d, want 441", cfg.WindowSize)
	}
	wmin, wmax := cfg.LagRange()
	if wmin != 110 || wmax != 630 {
		t.Fatalf("LagRange() = [%d, %d], want [110, 630]", wmin, wmax)
	}
	if got := cfg.StepSize(); got != 55 {
		t.Fatalf("StepSize() = %d, want 55", got)
	}
}

func TestNewConfigOptions(t *testing.T) {
	cfg, err := NewConfig(8000,
		WithPitchRange(100, 200),
		WithThresholds(0.8, 0.05),
		WithMaxItems(5),
		WithWindowDuration(0.05),
		WithRatio(0.8),
		WithDuplicateFraction(0.1),
		WithMethod(corr.MethodFFT),
	)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.PitchMin != 100 || cfg.PitchMax != 200 || cfg.ThresholdSim != 0.8 || cfg.ThresholdMag != 0.05 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.MaxItems != 5 || cfg.WindowSize != 400 || cfg.Ratio != 0.8 || cfg.DuplicateFraction != 0.1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Method != corr.MethodFFT {
		t.Fatalf("Method = %v, want fft", cfg.Method)
	}
}

func TestConfigUnthresholded(t *testing.T) {
	cfg := DefaultConfig(8000)
	got := cfg.Unthresholded()
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.ThresholdSim != 0 || cfg.ThresholdSim != 0.9 {
		t.Fatalf("ThresholdSim = %v (original %v), want 0 (0.9)", got.ThresholdSim, cfg.ThresholdSim)
	}
	if opts := got.periodOptions(); opts.Threshold != 0 || opts.MaxItems != cfg.MaxItems {
		t.Fatalf("periodOptions() = %+v", opts)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "inverted range", opt: WithPitchRange(400, 70)},
		{name: "equal range", opt: WithPitchRange(200, 200)},
		{name: "zero pitch", opt: WithPitchRange(0, 400)},
		{name: "nan pitch", opt: WithPitchRange(math.NaN(), 400)},
		{name: "pitch above nyquist", opt: WithPitchRange(70, 6000)},
		{name: "similarity above one", opt: WithThresholds(1.5, 0.01)},
		{name: "negative similarity", opt: WithThresholds(-0.1, 0.01)},
		{name: "negative magnitude", opt: WithThresholds(0.9, -1)},
		{name: "zero max items", opt: WithMaxItems(0)},
		{name: "zero window", opt: WithWindowSize(0)},
		{name: "ratio one", opt: WithRatio(1)},
		{name: "ratio zero", opt: WithRatio(0)},
		{name: "duplicate fraction one", opt: WithDuplicateFraction(1)},
		{name: "unknown method", opt: WithMethod(corr.Method(42))},
		{name: "unknown preset", opt: WithPreset("child")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(8000, tt.opt)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("NewConfig() error = %v, want ErrConfig", err)
			}
		})
	}

	if _, err := NewConfig(0); !errors.Is(err, ErrConfig) {
		t.Fatalf("NewConfig(0) error = %v, want ErrConfig", err)
	}
}

func TestPresetRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  float64
		wantErr bool
	}{
		{name: "male", lo: 75, hi: 200},
		{name: "M", lo: 75, hi: 200},
		{name: "female", lo: 150, hi: 300},
		{name: " f ", lo: 150, hi: 300},
		{name: "robot", wantErr: true},
	}

	for _, tt := range tests {
		lo, hi, err := PresetRange(tt.name)
		if (err != nil) != tt.wantErr {
			t.Fatalf("PresetRange(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if !tt.wantErr && (lo != tt.lo || hi != tt.hi) {
			t.Fatalf("PresetRange(%q) = [%v, %v], want [%v, %v]", tt.name, lo, hi, tt.lo, tt.hi)
		}
	}

	cfg, err := NewConfig(16000, WithPreset("female"))
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.PitchMin != 150 || cfg.PitchMax != 300 {
		t.Fatalf("preset range = [%v, %v]", cfg.PitchMin, cfg.PitchMax)
	}
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		channels, width int
		wantErr         bool
	}{
		{channels: 1, width: 2},
		{channels: 2, width: 2, wantErr: true},
		{channels: 1, width: 1, wantErr: true},
		{channels: 1, width: 3, wantErr: true},
	}

	for _, tt := range tests {
		err := CheckFormat(tt.channels, tt.width)
		if (err != nil) != tt.wantErr {
			t.Fatalf("CheckFormat(%d, %d) error = %v, wantErr %v", tt.channels, tt.width, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrConfig) {
			t.Fatalf("CheckFormat(%d, %d) error = %v, want ErrConfig", tt.channels, tt.width, err)
		}
	}
}
