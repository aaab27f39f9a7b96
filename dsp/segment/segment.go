// Package segment turns sparse trigger frames, such as the frames of a pitch
// contour, into contiguous frame regions.
package segment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed pitch file lines.
var ErrSyntax = errors.New("segment: syntax error")

// Region is the half-open frame range [Start, End).
type Region struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Len returns the number of frames covered.
func (r Region) Len() int { return max(r.End-r.Start, 0) }

// Point is one line of a pitch file.
type Point struct {
	Frame int
	Pitch float64
}

// PickStreaks groups ascending trigger frames into streaks. A new streak
// starts when a trigger is at least inner frames after the previous one.
// Each streak spans its first to last trigger, widened by outer frames on
// both sides.
func PickStreaks(triggers []int, outer, inner int) []Region {
	if len(triggers) == 0 {
		return nil
	}
	var out []Region
	first, last := triggers[0], triggers[0]
	for _, t := range triggers[1:] {
		if last <= t-inner {
			out = append(out, Region{Start: first - outer, End: last + outer})
			first = t
		}
		last = t
	}
	return append(out, Region{Start: first - outer, End: last + outer})
}

// PickFrames covers every trigger t with [t-left, t+right) and merges
// covers that overlap.
func PickFrames(triggers []int, left, right int) []Region {
	if len(triggers) == 0 {
		return nil
	}
	var out []Region
	cur := Region{Start: triggers[0] - left, End: triggers[0] + right}
	for _, t := range triggers[1:] {
		if cur.End <= t-left {
			out = append(out, cur)
			cur = Region{Start: t - left, End: t + right}
			continue
		}
		cur.End = max(cur.End, t+right)
	}
	return append(out, cur)
}

// Clamp clips regions to [0, total] and drops the ones left empty.
func Clamp(regions []Region, total int) []Region {
	out := regions[:0:0]
	for _, r := range regions {
		r.Start = max(r.Start, 0)
		r.End = min(r.End, total)
		if r.Start < r.End {
			out = append(out, r)
		}
	}
	return out
}

// Triggers returns the frames of points.
func Triggers(points []Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Frame
	}
	return out
}

// ReadPitchFile parses "frame value ..." lines. Text after '#' is ignored,
// blank lines are skipped and only the first value is kept. A value written
// as "pitch:similarity" yields the pitch.
func ReadPitchFile(r io.Reader) ([]Point, error) {
	var out []Point
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		frame, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: frame %q", ErrSyntax, lineNo, fields[0])
		}
		p := Point{Frame: frame}
		if len(fields) > 1 {
			v, _, _ := strings.Cut(fields[1], ":")
			p.Pitch, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: value %q", ErrSyntax, lineNo, fields[1])
			}
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("segment: read pitch file: %w", err)
	}
	return out, nil
}
