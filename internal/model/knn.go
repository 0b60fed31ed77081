package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const distanceEpsilon = 1e-9

// Prototype is one stored training vector with its encoded class.
type Prototype struct {
	Features []float64 `json:"features"`
	Class    int       `json:"class"`
}

// KNN is a distance-weighted k-nearest-neighbours classifier over
// standardized feature vectors. Neighbours vote with weight 1/(distance+eps),
// so close prototypes dominate; per-class probabilities are the normalized
// vote weights. It is read-only after fitting and safe for concurrent use.
type KNN struct {
	K          int         `json:"k"`
	NumClasses int         `json:"numClasses"`
	Prototypes []Prototype `json:"prototypes"`
}

// FitKNN stores the scaled training matrix as prototypes.
func FitKNN(k int, x [][]float64, y []int, numClasses int) (*KNN, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid neighbour count: %d", k)
	}
	if len(x) == 0 {
		return nil, errors.New("no training vectors provided")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(x), len(y))
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("invalid class count: %d", numClasses)
	}

	prototypes := make([]Prototype, len(x))
	for i := range x {
		if y[i] < 0 || y[i] >= numClasses {
			return nil, fmt.Errorf("prototype %d: class %d out of range [0, %d)", i, y[i], numClasses)
		}
		prototypes[i] = Prototype{Features: x[i], Class: y[i]}
	}

	return &KNN{K: k, NumClasses: numClasses, Prototypes: prototypes}, nil
}

// Predict classifies one scaled feature vector, returning the winning class
// index and the per-class probability distribution.
func (m *KNN) Predict(features []float64) (int, []float64, error) {
	if len(m.Prototypes) == 0 {
		return 0, nil, errors.New("classifier has no prototypes")
	}
	if len(features) != len(m.Prototypes[0].Features) {
		return 0, nil, fmt.Errorf("feature length mismatch: got %d, expected %d",
			len(features), len(m.Prototypes[0].Features))
	}

	type neighbour struct {
		distance float64
		class    int
	}

	neighbours := make([]neighbour, len(m.Prototypes))
	for i, p := range m.Prototypes {
		neighbours[i] = neighbour{distance: euclidean(features, p.Features), class: p.Class}
	}
	sort.Slice(neighbours, func(i, j int) bool {
		return neighbours[i].distance < neighbours[j].distance
	})

	k := min(m.K, len(neighbours))
	weights := make([]float64, m.NumClasses)
	var total float64
	for _, nb := range neighbours[:k] {
		w := 1 / (nb.distance + distanceEpsilon)
		weights[nb.class] += w
		total += w
	}

	proba := make([]float64, m.NumClasses)
	best := 0
	for c := range weights {
		proba[c] = weights[c] / total
		if proba[c] > proba[best] {
			best = c
		}
	}
	return best, proba, nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
