package pitch

import (
	"iter"

	"github.com/cwbudde/algo-pitch/dsp/buffer"
	"github.com/cwbudde/algo-pitch/dsp/corr"
)

// Step is the outcome of one analysis stop.
type Step struct {
	// Frame is the absolute index of the first sample of the analysis window.
	Frame int
	// Size is the number of frames the analysis advanced past this stop.
	Size int
	// Candidates are ranked by descending similarity. Magnitudes are filled in.
	Candidates []corr.Candidate
}

// Extractor turns an unbounded sample stream into a sequence of Steps.
//
// Samples are buffered until a full search span is available. After every
// run of steps the consumed prefix is discarded, so the retained backlog stays
// below Span()+StepSize().
type Extractor struct {
	cfg     Config
	scanner *corr.Scanner
	buf     *buffer.Buffer

	step   int
	span   int
	cursor int // next analysis offset inside buf
	base   int // absolute frame index of buf[0]
	err    error
}

// NewExtractor validates cfg and returns an Extractor positioned at frame 0.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scanner, err := corr.NewScanner(cfg.periodOptions())
	if err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:     cfg,
		scanner: scanner,
		buf:     buffer.New(2 * scanner.Span()),
		step:    cfg.StepSize(),
		span:    scanner.Span(),
	}, nil
}

// StepSize returns the hop between analysis stops in frames.
func (e *Extractor) StepSize() int { return e.step }

// Span returns the number of buffered frames one analysis stop needs.
func (e *Extractor) Span() int { return e.span }

// Buffered returns the number of frames currently retained.
func (e *Extractor) Buffered() int { return e.buf.Len() }

// Position returns the absolute frame index of the next analysis stop.
func (e *Extractor) Position() int { return e.base + e.cursor }

// Method returns the correlation backend in use.
func (e *Extractor) Method() corr.Method { return e.scanner.Method() }

// Err returns the first search error encountered, if any. Searches only fail
// on internal inconsistencies; a validated config never produces one.
func (e *Extractor) Err() error { return e.err }

// Feed appends samples and returns the steps that became available.
//
// The samples are buffered immediately; the analysis itself runs lazily while
// the returned sequence is ranged over. Stopping early is allowed: the steps
// not yet produced are picked up by the next Feed. Candidate slices are owned
// by the caller.
func (e *Extractor) Feed(samples []int16) iter.Seq[Step] {
	e.buf.AppendPCM16(samples)
	return e.steps
}

// Collect feeds samples and gathers every resulting step.
func (e *Extractor) Collect(samples []int16) []Step {
	var out []Step
	for st := range e.Feed(samples) {
		out = append(out, st)
	}
	return out
}

// Reset drops all buffered samples and restarts the frame count at zero.
func (e *Extractor) Reset() {
	e.buf.Reset()
	e.cursor = 0
	e.base = 0
	e.err = nil
}

func (e *Extractor) steps(yield func(Step) bool) {
	defer e.compact()
	for e.err == nil && e.cursor+e.span <= e.buf.Len() {
		x := e.buf.Samples()
		cands, err := e.scanner.Scan(x, e.cursor)
		if err != nil {
			e.err = err
			return
		}
		for i := range cands {
			cands[i].Magnitude = corr.Magnitude(x, e.cursor, cands[i].Lag)
		}
		st := Step{Frame: e.base + e.cursor, Size: e.step, Candidates: cands}
		e.cursor += e.step
		if !yield(st) {
			return
		}
	}
}

func (e *Extractor) compact() {
	if e.cursor == 0 {
		return
	}
	n := min(e.cursor, e.buf.Len())
	e.buf.Discard(n)
	e.base += n
	e.cursor -= n
}
