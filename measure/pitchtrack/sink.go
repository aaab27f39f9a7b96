package pitchtrack

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cwbudde/algo-pitch/dsp/pitch"
)

// TextSink writes one line per voiced emission: the frame index followed by
// the ranked frequencies, or frequency:similarity pairs. A closed streak is
// marked by a blank line. Call Flush when done.
type TextSink struct {
	w          *bufio.Writer
	similarity bool
	precision  int
}

// TextOption configures a TextSink.
type TextOption func(*TextSink)

// WithSimilarity appends ":similarity" to every frequency.
func WithSimilarity() TextOption {
	return func(s *TextSink) { s.similarity = true }
}

// WithPrecision sets the number of decimals printed for frequencies.
func WithPrecision(digits int) TextOption {
	return func(s *TextSink) {
		if digits >= 0 {
			s.precision = digits
		}
	}
}

// NewTextSink returns a TextSink writing to w.
func NewTextSink(w io.Writer, opts ...TextOption) *TextSink {
	s := &TextSink{w: bufio.NewWriter(w), precision: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Emit writes the emission line.
func (s *TextSink) Emit(em pitch.Emission) error {
	buf := strconv.AppendInt(nil, int64(em.Frame), 10)
	for _, e := range em.Estimates {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, e.Frequency, 'f', s.precision, 64)
		if s.similarity {
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, e.Similarity, 'f', 3, 64)
		}
	}
	buf = append(buf, '\n')
	_, err := s.w.Write(buf)
	return err
}

// CloseStreak writes the streak separator.
func (s *TextSink) CloseStreak(pitch.Streak) error {
	return s.w.WriteByte('\n')
}

// Flush flushes buffered output.
func (s *TextSink) Flush() error { return s.w.Flush() }

// SmoothTextSink writes "frame pitch" for voiced steps and one blank line
// when a voiced run ends.
type SmoothTextSink struct {
	w         *bufio.Writer
	voiced    bool
	precision int
}

// NewSmoothTextSink returns a SmoothTextSink writing to w.
func NewSmoothTextSink(w io.Writer) *SmoothTextSink {
	return &SmoothTextSink{w: bufio.NewWriter(w), precision: 1}
}

// Pitch writes one smoothed value.
func (s *SmoothTextSink) Pitch(frame int, hz float64) error {
	if hz <= 0 {
		if !s.voiced {
			return nil
		}
		s.voiced = false
		return s.w.WriteByte('\n')
	}
	s.voiced = true
	buf := strconv.AppendInt(nil, int64(frame), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendFloat(buf, hz, 'f', s.precision, 64)
	buf = append(buf, '\n')
	_, err := s.w.Write(buf)
	return err
}

// Flush flushes buffered output.
func (s *SmoothTextSink) Flush() error { return s.w.Flush() }
