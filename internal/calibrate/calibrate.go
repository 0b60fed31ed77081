// Package calibrate bridges the unit/scale gap between live client windows
// and the distribution the classifier was trained on (WISDM: m/s² with
// gravity resting on the z-axis). Client pipelines do not declare their unit
// convention, so it is inferred from the window's own statistics. The
// inference is best-effort: an unusually calm m/s² window can be mistaken
// for g-units and vice versa.
package calibrate

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
	"github.com/konkalaitzidis/digital-health-app/internal/features"
)

// Thresholds tuned against the reference dataset's distribution. Changing any
// of these shifts what the detector classifies as already-calibrated input.
const (
	gravity = 9.81 // g -> m/s² conversion factor

	zMeanLow  = 7.0  // z-axis mean band for gravity-aligned m/s² input
	zMeanHigh = 12.0
	abs95Min  = 5.0 // 95th percentile of |values| above this implies m/s² scale

	lowMotionStd   = 0.25 // magnitude std below this in calibrated input gets a mild boost
	lowMotionScale = 0.75
	flatStd        = 0.3 // magnitude std below this after conversion gets a stronger boost

	zRecenterBand   = 3.0 // converted z-mean within (-band, band) means gravity sits near zero
	zRecenterOffset = 9.0

	stdFloor = 1e-6 // keeps boost scales finite on constant or all-zero windows
)

// Calibrate returns a window in the training distribution's units. The input
// is never mutated and the result always has the same shape; degenerate
// input (all zeros, constant samples) is handled by the stdFloor guard and
// never errors.
//
// Detection order matters: the z-mean band and the combined-axis 95th
// percentile are checked first, and only windows failing both are treated as
// g-unit input.
func Calibrate(w activity.Window) activity.Window {
	out := w.Clone()
	if len(out) == 0 {
		return out
	}

	zMean := mean(out.Axis(2))
	if (zMean >= zMeanLow && zMean <= zMeanHigh) || abs95(out) > abs95Min {
		// Already in target units. Calm windows still get a mild amplitude
		// boost so near-still input does not collapse below the feature
		// scale the model saw in training.
		if std := magnitudeStd(out); std < lowMotionStd {
			scaleAll(out, clamp(lowMotionScale/math.Max(std, stdFloor), 1, 2))
		}
		return out
	}

	// g-unit input: convert, then re-center gravity onto z if the converted
	// baseline sits near zero. The re-centering assumes the device is held in
	// the orientation the mobile client prescribes; it is a heuristic, not a
	// physical law.
	scaleAll(out, gravity)

	if zMean = mean(out.Axis(2)); zMean > -zRecenterBand && zMean < zRecenterBand {
		for i := range out {
			out[i].Z += zRecenterOffset
		}
	}

	if std := magnitudeStd(out); std < flatStd {
		scaleAll(out, clamp(1/math.Max(std, stdFloor), 1, 3))
	}
	return out
}

// abs95 computes the 95th percentile of the absolute values of all three
// axes' samples combined.
func abs95(w activity.Window) float64 {
	all := make([]float64, 0, 3*len(w))
	for _, s := range w {
		all = append(all, math.Abs(s.X), math.Abs(s.Y), math.Abs(s.Z))
	}
	return features.Percentile(all, 95)
}

func magnitudeStd(w activity.Window) float64 {
	v, err := stats.StandardDeviationPopulation(features.Magnitudes(w))
	if err != nil {
		return 0
	}
	return v
}

func mean(a []float64) float64 {
	v, err := stats.Mean(a)
	if err != nil {
		return 0
	}
	return v
}

func scaleAll(w activity.Window, factor float64) {
	for i := range w {
		w[i].X *= factor
		w[i].Y *= factor
		w[i].Z *= factor
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
