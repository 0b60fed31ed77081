// Package window derives sliding-window boundaries over a sample sequence.
// Both the training pipeline and the inference path size their windows through
// this package so the two can never disagree on window geometry.
package window

import (
	"fmt"
	"iter"
	"math"
)

// Params holds the windowing configuration the classifier was (or will be)
// trained with. Window length and step are derived, never stored, so a loaded
// artifact and a fresh configuration go through the same arithmetic.
type Params struct {
	FS      float64 // Sampling frequency in Hz
	WinSec  float64 // Window duration in seconds
	Overlap float64 // Fraction of a window shared with its successor, [0, 1)
}

// Validate checks the parameters before any window arithmetic is done.
// An overlap of 1.0 or more would derive a zero or negative step and loop
// forever, so it is rejected here rather than guarded downstream.
func (p Params) Validate() error {
	if p.FS <= 0 {
		return fmt.Errorf("sampling frequency must be positive, got %g", p.FS)
	}
	if p.WinSec <= 0 {
		return fmt.Errorf("window duration must be positive, got %gs", p.WinSec)
	}
	if p.Overlap < 0 || p.Overlap >= 1 {
		return fmt.Errorf("overlap must be in [0, 1), got %g", p.Overlap)
	}
	if p.Win() < 1 {
		return fmt.Errorf("window of %gs at %gHz is shorter than one sample", p.WinSec, p.FS)
	}
	return nil
}

// Win returns the window length in samples: round(fs * winSec).
func (p Params) Win() int {
	return int(math.Round(p.FS * p.WinSec))
}

// Step returns the stride between consecutive window starts in samples:
// round(win * (1 - overlap)), floored at 1.
func (p Params) Step() int {
	step := int(math.Round(float64(p.Win()) * (1 - p.Overlap)))
	if step < 1 {
		step = 1
	}
	return step
}

// Iter returns a lazy sequence of half-open [start, end) index pairs covering
// n samples with windows of win samples every step samples. Starts advance as
// 0, step, 2*step, ... while start+win <= n; if n < win the sequence is empty.
// The sequence is restartable: ranging over it twice yields the same pairs.
//
// win and step must be positive; Iter panics otherwise, since both are derived
// from a validated Params and a non-positive value indicates a programming
// error, not bad input.
func Iter(n, win, step int) iter.Seq2[int, int] {
	if win <= 0 || step <= 0 {
		panic(fmt.Sprintf("window: invalid geometry win=%d step=%d", win, step))
	}
	return func(yield func(int, int) bool) {
		for start := 0; start+win <= n; start += step {
			if !yield(start, start+win) {
				return
			}
		}
	}
}

// Count returns the number of windows Iter(n, win, step) yields.
func Count(n, win, step int) int {
	if win <= 0 || step <= 0 || n < win {
		return 0
	}
	return (n-win)/step + 1
}
