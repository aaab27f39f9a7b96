package pitch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-pitch/dsp/corr"
)

func TestParseProfileApply(t *testing.T) {
	data := []byte(`
preset: male
pitchmax: 180
threshold_sim: 0.85
max_items: 2
window_size: 0.05
ratio: 0.8
method: direct
chunk_frames: 4096
`)
	p, err := ParseProfile(data)
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if p.ChunkFrames != 4096 {
		t.Fatalf("ChunkFrames = %d, want 4096", p.ChunkFrames)
	}

	cfg, err := p.Apply(DefaultConfig(8000))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.PitchMin != 75 || cfg.PitchMax != 180 {
		t.Fatalf("pitch range = [%v, %v], want [75, 180]", cfg.PitchMin, cfg.PitchMax)
	}
	if cfg.ThresholdSim != 0.85 || cfg.ThresholdMag != 0.01 {
		t.Fatalf("thresholds = %v/%v", cfg.ThresholdSim, cfg.ThresholdMag)
	}
	if cfg.MaxItems != 2 || cfg.WindowSize != 400 || cfg.Ratio != 0.8 || cfg.Method != corr.MethodDirect {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseProfileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown key", data: "pitchmn: 80\n"},
		{name: "bad type", data: "max_items: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProfile([]byte(tt.data)); !errors.Is(err, ErrConfig) {
				t.Fatalf("ParseProfile() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestProfileApplyRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown preset", data: "preset: robot\n"},
		{name: "unknown method", data: "method: wavelet\n"},
		{name: "inverted range", data: "pitchmin: 300\npitchmax: 100\n"},
		{name: "ratio", data: "ratio: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProfile([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseProfile() error = %v", err)
			}
			if _, err := p.Apply(DefaultConfig(8000)); !errors.Is(err, ErrConfig) {
				t.Fatalf("Apply() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.yaml")
	if err := os.WriteFile(path, []byte("preset: female\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.Preset != "female" {
		t.Fatalf("Preset = %q, want female", p.Preset)
	}

	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadProfile() expected error for missing file")
	}
}
