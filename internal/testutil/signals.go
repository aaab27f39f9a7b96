package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return PeriodicSine(sampleRate/freqHz, amplitude, length)
}

// PeriodicSine generates a sine wave whose period is exactly period samples.
func PeriodicSine(period, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi / period
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// PulseTrain generates a band-rich periodic signal: a decaying pulse repeated
// every period samples. Its autocorrelation peaks at multiples of period.
func PulseTrain(period int, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		k := i % period
		out[i] = amplitude * math.Exp(-float64(k)/float64(period)*6) * math.Cos(2*math.Pi*3*float64(k)/float64(period))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// PCM16 converts a float signal in [-1, 1] to signed 16-bit samples.
func PCM16(x []float64) []int16 {
	out := make([]int16, len(x))
	core.FloatToPCM16(out, x)
	return out
}

// PCM16Periodic generates 16-bit sine samples with an exact period in samples.
func PCM16Periodic(period, amplitude float64, length int) []int16 {
	return PCM16(PeriodicSine(period, amplitude, length))
}

// Silence returns length zero-valued 16-bit samples.
func Silence(length int) []int16 {
	return make([]int16, length)
}

// Join concatenates sample segments.
func Join(parts ...[]int16) []int16 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]int16, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Chunks splits samples into consecutive slices of at most size samples.
func Chunks(samples []int16, size int) [][]int16 {
	if size <= 0 {
		return nil
	}
	var out [][]int16
	for len(samples) > 0 {
		n := min(size, len(samples))
		out = append(out, samples[:n])
		samples = samples[n:]
	}
	return out
}
