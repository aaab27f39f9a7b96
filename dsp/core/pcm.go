package core

import "encoding/binary"

// PCM16Scale maps signed 16-bit samples onto [-1, 1).
const PCM16Scale = 1.0 / 32768.0

// PCM16ToFloat converts src into dst, scaling by PCM16Scale.
// Only min(len(dst), len(src)) samples are converted; the count is returned.
func PCM16ToFloat(dst []float64, src []int16) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i]) * PCM16Scale
	}
	return n
}

// FloatToPCM16 converts src into dst with saturation at the int16 limits.
func FloatToPCM16(dst []int16, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		v := src[i] * 32768.0
		switch {
		case v >= 32767:
			dst[i] = 32767
		case v <= -32768:
			dst[i] = -32768
		default:
			dst[i] = int16(v)
		}
	}
	return n
}

// DecodePCM16LE decodes little-endian interleaved 16-bit samples.
// A trailing odd byte is ignored.
func DecodePCM16LE(raw []byte) []int16 {
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return out
}

// EncodePCM16LE encodes samples as little-endian 16-bit PCM.
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
