// Package pitch extracts a continuous fundamental-frequency contour from a
// mono 16-bit sample stream.
//
// The pipeline has two stateful stages:
//   - Extractor: buffers incoming samples and runs a period search every
//     MinLag/2 frames, yielding one Step of ranked lag candidates per stop.
//   - Tracker: stitches the per-step candidates into persistent pitch threads,
//     emits the alive threads ranked by accumulated score, and groups
//     contiguous voiced emissions into streaks.
//
// Smoother is a lighter alternative to Tracker that reduces every step to a
// single pitch value (or 0 when unvoiced) over a short sliding window.
//
// All three are constructed per audio source from a validated [Config] and are
// not safe for concurrent use.
package pitch
