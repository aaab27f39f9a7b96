package pitch

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-pitch/dsp/corr"
	"github.com/cwbudde/algo-pitch/internal/testutil"
)

func newTestSmoother(t *testing.T, window int) *Smoother {
	t.Helper()
	cfg := DefaultSmootherConfig(testRate)
	cfg.Window = window
	s, err := NewSmoother(cfg)
	if err != nil {
		t.Fatalf("NewSmoother() error = %v", err)
	}
	return s
}

func TestSmootherConfigValidate(t *testing.T) {
	cfg := DefaultSmootherConfig(testRate)
	if cfg.Window != 80 {
		t.Fatalf("Window = %d, want 80", cfg.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	bad := cfg
	bad.Window = 0
	if err := bad.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("Validate() error = %v, want ErrConfig", err)
	}
	bad = cfg
	bad.SimMin = 0.95
	if err := bad.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("Validate() error = %v, want ErrConfig", err)
	}
}

func TestSmootherWindow(t *testing.T) {
	s := newTestSmoother(t, 20)

	steps := []struct {
		sim, mag, pitch float64
		want            float64
	}{
		{sim: 0.95, mag: 0.1, pitch: 100, want: 100},
		{sim: 0.95, mag: 0.1, pitch: 110, want: 105},
		// The window still holds the 110 Hz entry.
		{sim: 0, mag: 0, pitch: 0, want: 110},
		{sim: 0, mag: 0, pitch: 0, want: 0},
		// Voiced by similarity but too quiet.
		{sim: 0.95, mag: 0.02, pitch: 120, want: 0},
	}
	for i, st := range steps {
		if got := s.Feed(10, st.sim, st.mag, st.pitch); got != st.want {
			t.Fatalf("step %d: Feed() = %v, want %v", i, got, st.want)
		}
	}
}

func TestSmootherIgnoresWeakEntries(t *testing.T) {
	s := newTestSmoother(t, 1000)
	s.Feed(10, 0.95, 0.1, 200)
	// Below simmin: does not widen the pitch range.
	if got := s.Feed(10, 0.5, 0.1, 80); got != 200 {
		t.Fatalf("Feed() = %v, want 200", got)
	}
	s.Reset()
	if got := s.Feed(10, 0.5, 0.1, 80); got != 0 {
		t.Fatalf("after Reset: Feed() = %v, want 0", got)
	}
}

func TestSmootherObserve(t *testing.T) {
	cfg, err := NewConfig(testRate)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	s := newTestSmoother(t, DefaultSmootherConfig(testRate).Window)

	var got float64
	for st := range e.Feed(testutil.PCM16Periodic(80, 0.5, 1000)) {
		got = s.Observe(st)
	}
	testutil.RequireNear(t, "pitch", got, 100, 1.5)

	if p := s.Observe(Step{Size: 10, Candidates: []corr.Candidate{}}); p == 0 {
		t.Fatal("single unvoiced step cleared a full voiced window")
	}
}
