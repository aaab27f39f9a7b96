// Package pitchtrack drives a pitch analysis over an audio source.
//
// Run reads the source chunk by chunk until a read returns zero frames,
// feeds the samples through a pitch.Extractor and a pitch.Tracker and hands
// every emission and closed streak to a Sink. RunSmoothed does the same with
// a pitch.Smoother in place of the tracker. TextSink and SmoothTextSink write
// the line format consumed by plotting and region-picking tools.
package pitchtrack
