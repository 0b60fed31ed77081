package features

import (
	"runtime"
	"sort"
	"sync"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
	"github.com/konkalaitzidis/digital-health-app/internal/window"
)

// Dataset is the training-boundary output: one feature vector and one
// majority-vote class per window, in window order.
type Dataset struct {
	X [][]float64 // Feature matrix, rows = windows, columns = Count features
	Y []string    // Majority class per window, parallel to X
}

// ExtractDataset slides windows over the full labeled sample sequence and
// computes one feature vector and one majority label per window. Windows are
// processed by a bounded worker pool; results are materialized in window
// order, so the output is identical to a sequential pass and any seeded
// split downstream stays reproducible.
//
// Ties in the majority vote break lexicographically, smallest class name
// first, so the assignment does not depend on input ordering.
func ExtractDataset(samples []activity.LabeledSample, p window.Params) (*Dataset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	win, step := p.Win(), p.Step()
	n := len(samples)
	count := window.Count(n, win, step)

	ds := &Dataset{
		X: make([][]float64, count),
		Y: make([]string, count),
	}
	if count == 0 {
		return ds, nil
	}

	type job struct {
		index      int
		start, end int
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	workers := min(runtime.GOMAXPROCS(0), count)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				seg := toWindow(samples[j.start:j.end])
				ds.X[j.index] = Extract(seg)
				ds.Y[j.index] = majorityClass(samples[j.start:j.end])
			}
		}()
	}

	i := 0
	for start, end := range window.Iter(n, win, step) {
		jobs <- job{index: i, start: start, end: end}
		i++
	}
	close(jobs)
	wg.Wait()

	return ds, nil
}

func toWindow(samples []activity.LabeledSample) activity.Window {
	w := make(activity.Window, len(samples))
	for i, s := range samples {
		w[i] = activity.Sample{X: s.X, Y: s.Y, Z: s.Z}
	}
	return w
}

func majorityClass(samples []activity.LabeledSample) string {
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Class]++
	}

	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	best := classes[0]
	for _, c := range classes[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
