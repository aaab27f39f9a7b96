package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: -1, max: 1, expected: 0.5},
		{name: "below", value: -1.5, min: -1, max: 1, expected: -1},
		{name: "above", value: 1 + 1e-15, min: -1, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: -1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsFinitePositive(t *testing.T) {
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if IsFinitePositive(v) {
			t.Fatalf("IsFinitePositive(%v) = true, want false", v)
		}
	}
	if !IsFinitePositive(44100) {
		t.Fatal("IsFinitePositive(44100) = false, want true")
	}
}

func TestEnsureLenReusesCapacity(t *testing.T) {
	buf := make([]float64, 4, 16)
	got := EnsureLen(buf, 10)
	if len(got) != 10 || &got[0] != &buf[0] {
		t.Fatalf("EnsureLen() did not reuse capacity: len=%d", len(got))
	}
	if got := EnsureLen(buf, 32); len(got) != 32 {
		t.Fatalf("EnsureLen() len = %d, want 32", len(got))
	}
	if got := EnsureLen(buf, 0); len(got) != 0 {
		t.Fatalf("EnsureLen(0) len = %d, want 0", len(got))
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	raw := EncodePCM16LE(samples)
	if len(raw) != 2*len(samples) {
		t.Fatalf("encoded length = %d, want %d", len(raw), 2*len(samples))
	}
	got := DecodePCM16LE(append(raw, 0x7f))
	if len(got) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestPCM16ToFloat(t *testing.T) {
	dst := make([]float64, 3)
	n := PCM16ToFloat(dst, []int16{-32768, 0, 16384, 99})
	if n != 3 {
		t.Fatalf("PCM16ToFloat() n = %d, want 3", n)
	}
	want := []float64{-1, 0, 0.5}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFloatToPCM16Saturates(t *testing.T) {
	dst := make([]int16, 4)
	FloatToPCM16(dst, []float64{2, -2, 0.5, 0})
	want := []int16{32767, -32768, 16384, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}
