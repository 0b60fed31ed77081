package features

import (
	"math"
	"testing"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
)

const epsilon = 1e-9

func TestExtractLength(t *testing.T) {
	windows := []activity.Window{
		make(activity.Window, 1),
		make(activity.Window, 100),
		{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 0.5, Z: 9.81}},
	}

	for _, w := range windows {
		feats := Extract(w)
		if len(feats) != Count {
			t.Fatalf("Expected %d features, got %d", Count, len(feats))
		}
		for i, v := range feats {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("Feature %d is not finite: %v", i, v)
			}
		}
	}
}

func TestExtractConstantWindow(t *testing.T) {
	w := make(activity.Window, 50)
	for i := range w {
		w[i] = activity.Sample{X: 1.5, Y: -2.0, Z: 9.81}
	}

	feats := Extract(w)

	// Per-axis layout: mean, std, min, max, median, IQR.
	expectAxis := func(axis int, value float64) {
		base := axis * 6
		if got := feats[base]; math.Abs(got-value) > epsilon {
			t.Errorf("Axis %d mean: got %v, expected %v", axis, got, value)
		}
		if got := feats[base+1]; got != 0 {
			t.Errorf("Axis %d std of constant column: got %v, expected 0", axis, got)
		}
		for off, name := range map[int]string{2: "min", 3: "max", 4: "median"} {
			if got := feats[base+off]; math.Abs(got-value) > epsilon {
				t.Errorf("Axis %d %s: got %v, expected %v", axis, name, got, value)
			}
		}
		if got := feats[base+5]; got != 0 {
			t.Errorf("Axis %d IQR of constant column: got %v, expected 0", axis, got)
		}
	}
	expectAxis(0, 1.5)
	expectAxis(1, -2.0)
	expectAxis(2, 9.81)

	wantMag := math.Sqrt(1.5*1.5 + 2.0*2.0 + 9.81*9.81)
	if got := feats[18]; math.Abs(got-wantMag) > epsilon {
		t.Errorf("Magnitude mean: got %v, expected %v", got, wantMag)
	}
	if got := feats[19]; got != 0 {
		t.Errorf("Magnitude std of constant window: got %v, expected 0", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	build := func() activity.Window {
		w := make(activity.Window, 100)
		for i := range w {
			w[i] = activity.Sample{
				X: math.Sin(float64(i) * 0.3),
				Y: math.Cos(float64(i) * 0.7),
				Z: 9.81 + math.Sin(float64(i)*1.1)*0.5,
			}
		}
		return w
	}

	a := Extract(build())
	b := Extract(build())
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Feature %d differs between equal-valued windows: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractKnownValues(t *testing.T) {
	// x column 1..4 with y=z=0: mean 2.5, population std sqrt(1.25),
	// median 2.5, IQR (linear interpolation) = 3.25 - 1.75 = 1.5.
	w := activity.Window{
		{X: 1}, {X: 2}, {X: 3}, {X: 4},
	}
	feats := Extract(w)

	checks := []struct {
		name string
		idx  int
		want float64
	}{
		{"x mean", 0, 2.5},
		{"x std", 1, math.Sqrt(1.25)},
		{"x min", 2, 1},
		{"x max", 3, 4},
		{"x median", 4, 2.5},
		{"x IQR", 5, 1.5},
		{"magnitude mean", 18, 2.5},
	}
	for _, c := range checks {
		if got := feats[c.idx]; math.Abs(got-c.want) > epsilon {
			t.Errorf("%s: got %v, expected %v", c.name, got, c.want)
		}
	}
}

func TestPercentileLinearInterpolation(t *testing.T) {
	testCases := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		{"median odd", []float64{3, 1, 2}, 50, 2},
		{"median even", []float64{4, 1, 3, 2}, 50, 2.5},
		{"p75 of 1..4", []float64{1, 2, 3, 4}, 75, 3.25},
		{"p25 of 1..4", []float64{1, 2, 3, 4}, 25, 1.75},
		{"p0", []float64{5, 1, 9}, 0, 1},
		{"p100", []float64{5, 1, 9}, 100, 9},
		{"single value", []float64{7}, 95, 7},
		{"empty", nil, 50, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percentile(tc.data, tc.p); math.Abs(got-tc.want) > epsilon {
				t.Errorf("Percentile(%v, %v): got %v, expected %v", tc.data, tc.p, got, tc.want)
			}
		})
	}
}
