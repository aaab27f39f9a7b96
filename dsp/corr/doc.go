// Package corr scores periodicities and alignments with the normalized
// correlation coefficient.
//
// The coefficient of two equal-length windows a and b is
//
//	r = sum(a[i]*b[i]) / (||a|| * ||b||)
//
// clipped to [-1, 1]. A window with zero energy yields 0, never NaN.
//
// # Period search
//
// [FindPeriods] compares the window starting at an offset with copies of
// itself shifted by every lag in [MinLag, MaxLag]. Only local maxima of r over
// the lag axis survive; they are ranked by descending coefficient, filtered by
// a threshold, thinned so no two candidates sit within a fraction of MinLag of
// each other, and capped at MaxItems:
//
//	cands, err := corr.FindPeriods(x, offset, corr.PeriodOptions{
//		MinLag: 110, MaxLag: 630, Window: 55,
//		Threshold: 0.9, MaxItems: 3,
//	})
//
// For repeated searches with the same options, create a [Scanner], which
// keeps its FFT plan and scratch buffers between calls.
//
// # Method selection
//
// The lag scan is computed either directly (O(Window*Lags)) or via FFT
// cross-correlation of the window against the whole lag span. [MethodAuto]
// picks the cheaper of the two from the option sizes.
//
// # Template matching
//
// [MatchTemplate] applies the same coefficient to two distinct buffers for
// one-shot alignment scoring, and [BestSplice] searches the overlap length at
// which the tail of one buffer best continues into the head of another.
package corr
