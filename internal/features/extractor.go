// Package features computes the fixed statistical feature vector the
// classifier is trained on. The training batch pipeline and the single-window
// inference path both call Extract; the two must never diverge, because a
// divergence does not fail loudly, it silently degrades every prediction.
package features

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
)

// Count is the feature vector length: 6 statistics per axis plus mean and
// standard deviation of the per-sample magnitude.
const Count = 3*6 + 2

// Extract computes the feature vector for one window.
//
// Layout, in order: for each axis (x, y, z) the mean, population standard
// deviation, min, max, median and interquartile range of that axis' column,
// then the mean and population standard deviation of the per-sample Euclidean
// magnitude. The output always has exactly Count elements and never contains
// NaN or ±Inf; degenerate values are replaced with 0.
func Extract(w activity.Window) []float64 {
	feats := make([]float64, 0, Count)

	for k := 0; k < 3; k++ {
		col := w.Axis(k)
		feats = append(feats,
			safeStat(stats.Mean, col),
			safeStat(stats.StandardDeviationPopulation, col),
			safeStat(stats.Min, col),
			safeStat(stats.Max, col),
			safeStat(stats.Median, col),
			iqr(col),
		)
	}

	mag := Magnitudes(w)
	feats = append(feats,
		safeStat(stats.Mean, mag),
		safeStat(stats.StandardDeviationPopulation, mag),
	)

	for i, v := range feats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			feats[i] = 0
		}
	}
	return feats
}

// Magnitudes returns the per-sample Euclidean magnitude sqrt(x²+y²+z²).
func Magnitudes(w activity.Window) []float64 {
	mag := make([]float64, len(w))
	for i, s := range w {
		mag[i] = math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	}
	return mag
}

// Percentile computes the p-th percentile (0..100) of a using linear
// interpolation between closest ranks. The stats package's Percentile uses
// nearest-rank interpolation, which yields different IQR values on small
// windows, so the interpolating variant lives here.
func Percentile(a []float64, p float64) float64 {
	if len(a) == 0 {
		return 0
	}
	sorted := make([]float64, len(a))
	copy(sorted, a)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func iqr(a []float64) float64 {
	return Percentile(a, 75) - Percentile(a, 25)
}

// safeStat evaluates one stats function, mapping the library's empty-input
// error to 0.
func safeStat(fn func(stats.Float64Data) (float64, error), a []float64) float64 {
	v, err := fn(a)
	if err != nil {
		return 0
	}
	return v
}
