package pitch

import (
	"sort"

	"github.com/cwbudde/algo-pitch/dsp/corr"
)

// ThreadID identifies a pitch thread for its whole lifetime. IDs are never
// reused within a Tracker.
type ThreadID int

// Thread is a persistent pitch hypothesis.
type Thread struct {
	ID ThreadID
	// Lag is the current period estimate in samples.
	Lag int
	// Similarity is the coefficient of the latest matched candidate.
	Similarity float64
	// Score accumulates the similarity of every matched candidate.
	Score float64
	// Born and LastSeen are stream times in frames.
	Born     int
	LastSeen int
	// Hits counts matched steps, including the spawning one.
	Hits int
}

// Estimate is one alive thread as reported for a step.
type Estimate struct {
	Thread     ThreadID
	Frequency  float64
	Lag        int
	Similarity float64
	Score      float64
}

// Emission lists the alive threads after one step, best first.
type Emission struct {
	Frame     int
	Size      int
	Estimates []Estimate
}

// Voiced reports whether any thread was alive.
func (e Emission) Voiced() bool { return len(e.Estimates) > 0 }

// Streak is a maximal run of consecutive voiced emissions.
type Streak []Emission

// Start returns the first frame covered by the streak.
func (s Streak) Start() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Frame
}

// End returns the frame just past the streak.
func (s Streak) End() int {
	if len(s) == 0 {
		return 0
	}
	last := s[len(s)-1]
	return last.Frame + last.Size
}

// Update is the result of feeding one step to a Tracker.
type Update struct {
	Emission Emission
	// Closed holds the streak this step terminated, or nil.
	Closed Streak
}

// Tracker stitches per-step candidates into pitch threads.
//
// Each Feed runs, in order: admission filter, one-to-one pairing of
// candidates with threads inside the ratio band, thread updates, spawning for
// candidates with no thread in band, expiry, emission and streak bookkeeping.
// Given the same input sequence the output is identical.
type Tracker struct {
	cfg Config

	slots  []slot
	free   []int
	nextID ThreadID
	now    int
	streak Streak

	admitted []corr.Candidate
	pairs    []pairing
	takenC   []bool
	takenS   []bool
	inBand   []bool
}

type slot struct {
	Thread
	alive bool
}

type pairing struct {
	cand int
	slot int
	diff int
}

// NewTracker validates cfg and returns an empty Tracker at time 0.
func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg}, nil
}

// Now returns the current stream time in frames.
func (t *Tracker) Now() int { return t.now }

// Threads returns a snapshot of the alive threads ordered by ID.
func (t *Tracker) Threads() []Thread {
	var out []Thread
	for i := range t.slots {
		if t.slots[i].alive {
			out = append(out, t.slots[i].Thread)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Observe feeds an extractor step.
func (t *Tracker) Observe(st Step) Update {
	return t.Feed(st.Size, st.Candidates)
}

// Feed advances the tracker by one step of size frames.
func (t *Tracker) Feed(size int, candidates []corr.Candidate) Update {
	frame := t.now

	t.admitted = t.admitted[:0]
	for _, c := range candidates {
		if c.Similarity > t.cfg.ThresholdSim && c.Magnitude > t.cfg.ThresholdMag && c.Lag > 0 {
			t.admitted = append(t.admitted, c)
		}
	}

	t.pair()

	for ci, c := range t.admitted {
		if !t.inBand[ci] {
			t.spawn(c)
		}
	}

	for i := range t.slots {
		s := &t.slots[i]
		if s.alive && t.now-s.LastSeen >= t.cfg.WindowSize {
			t.release(i)
		}
	}

	em := Emission{Frame: frame, Size: size, Estimates: t.estimates()}
	up := Update{Emission: em}
	if em.Voiced() {
		t.streak = append(t.streak, em)
	} else if len(t.streak) > 0 {
		up.Closed = t.streak
		t.streak = nil
	}

	t.now += max(size, 0)
	return up
}

// Flush closes the open streak, if any, and returns it. Call it once the
// stream has ended.
func (t *Tracker) Flush() Streak {
	s := t.streak
	t.streak = nil
	return s
}

// Reset expires every thread and rewinds time to zero. IDs keep increasing.
func (t *Tracker) Reset() {
	t.slots = t.slots[:0]
	t.free = t.free[:0]
	t.streak = nil
	t.now = 0
}

// pair matches admitted candidates to alive threads and updates the matched
// threads. Candidates in band of some thread are flagged in t.inBand even when
// they lose the pairing.
func (t *Tracker) pair() {
	n := len(t.admitted)
	t.takenC = resetBools(t.takenC, n)
	t.inBand = resetBools(t.inBand, n)
	t.takenS = resetBools(t.takenS, len(t.slots))

	t.pairs = t.pairs[:0]
	for ci, c := range t.admitted {
		for si := range t.slots {
			s := &t.slots[si]
			if !s.alive || !t.withinBand(c.Lag, s.Lag) {
				continue
			}
			t.inBand[ci] = true
			t.pairs = append(t.pairs, pairing{cand: ci, slot: si, diff: absInt(c.Lag - s.Lag)})
		}
	}
	if len(t.pairs) == 0 {
		return
	}

	sort.Slice(t.pairs, func(i, j int) bool {
		a, b := t.pairs[i], t.pairs[j]
		sa, sb := t.admitted[a.cand].Similarity, t.admitted[b.cand].Similarity
		if sa != sb {
			return sa > sb
		}
		if a.diff != b.diff {
			return a.diff < b.diff
		}
		if ida, idb := t.slots[a.slot].ID, t.slots[b.slot].ID; ida != idb {
			return ida < idb
		}
		return a.cand < b.cand
	})

	for _, p := range t.pairs {
		if t.takenC[p.cand] || t.takenS[p.slot] {
			continue
		}
		s := &t.slots[p.slot]
		t.takenC[p.cand] = true
		t.takenS[p.slot] = true
		c := t.admitted[p.cand]
		if c.Similarity > s.Similarity {
			s.Lag = c.Lag
		}
		s.Similarity = c.Similarity
		s.Score += c.Similarity
		s.LastSeen = t.now
		s.Hits++
	}
}

func (t *Tracker) spawn(c corr.Candidate) {
	th := Thread{
		ID:         t.nextID,
		Lag:        c.Lag,
		Similarity: c.Similarity,
		Score:      c.Similarity,
		Born:       t.now,
		LastSeen:   t.now,
		Hits:       1,
	}
	t.nextID++
	if n := len(t.free); n > 0 {
		i := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[i] = slot{Thread: th, alive: true}
		return
	}
	t.slots = append(t.slots, slot{Thread: th, alive: true})
}

func (t *Tracker) release(i int) {
	t.slots[i].alive = false
	t.free = append(t.free, i)
}

func (t *Tracker) withinBand(lag, ref int) bool {
	l, r := float64(lag), float64(ref)
	return l >= r*t.cfg.Ratio && l <= r/t.cfg.Ratio
}

func (t *Tracker) estimates() []Estimate {
	var out []Estimate
	for i := range t.slots {
		s := &t.slots[i]
		if !s.alive {
			continue
		}
		out = append(out, Estimate{
			Thread:     s.ID,
			Frequency:  float64(t.cfg.SampleRate) / float64(s.Lag),
			Lag:        s.Lag,
			Similarity: s.Similarity,
			Score:      s.Score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Lag != b.Lag {
			return a.Lag < b.Lag
		}
		return a.Thread < b.Thread
	})
	return out
}

func resetBools(b []bool, n int) []bool {
	if cap(b) < n {
		return make([]bool, n)
	}
	b = b[:n]
	clear(b)
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
