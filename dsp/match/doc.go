// Package match scores short reference clips against points of a longer
// recording with the normalized correlation of package corr.
//
// A Library holds labelled patterns at the source sample rate; patterns
// recorded at another rate are resampled when added. Match is a pure
// function of its arguments and the library contents.
package match
