package model

import (
	"fmt"
	"math/rand"
)

// Split holds a stratified train/test partition of a feature dataset.
type Split struct {
	XTrain [][]float64
	YTrain []int
	XTest  [][]float64
	YTest  []int
}

// StratifiedSplit partitions (x, y) into train and test sets, keeping each
// class' share of the test set proportional to its share of the data. The
// shuffle is driven by seed, so the same inputs always produce the same
// partition.
func StratifiedSplit(x [][]float64, y []int, testFraction float64, seed int64) (*Split, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(x), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}

	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	rng := rand.New(rand.NewSource(seed))
	s := &Split{}

	// Iterate classes in ascending order so the RNG consumption, and with it
	// the partition, is deterministic.
	maxClass := 0
	for c := range byClass {
		if c > maxClass {
			maxClass = c
		}
	}
	for c := 0; c <= maxClass; c++ {
		indices := byClass[c]
		if len(indices) == 0 {
			continue
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(float64(len(indices)) * testFraction)
		if nTest == 0 && len(indices) > 1 {
			nTest = 1
		}
		for i, idx := range indices {
			if i < nTest {
				s.XTest = append(s.XTest, x[idx])
				s.YTest = append(s.YTest, y[idx])
			} else {
				s.XTrain = append(s.XTrain, x[idx])
				s.YTrain = append(s.YTrain, y[idx])
			}
		}
	}

	if len(s.XTrain) == 0 || len(s.XTest) == 0 {
		return nil, fmt.Errorf("split produced empty partition: %d train, %d test", len(s.XTrain), len(s.XTest))
	}
	return s, nil
}

// ClassMetrics is the per-class evaluation report row.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation summarizes classifier performance on a held-out test set.
type Evaluation struct {
	Accuracy  float64
	MacroF1   float64
	PerClass  []ClassMetrics
	Confusion [][]float64 // Row-normalized: Confusion[true][predicted]
}

// Evaluate runs the classifier over the test partition and computes accuracy,
// macro-F1, a per-class report and the row-normalized confusion matrix.
func Evaluate(m *KNN, encoder *LabelEncoder, xTest [][]float64, yTest []int) (*Evaluation, error) {
	if len(xTest) == 0 {
		return nil, fmt.Errorf("empty test set")
	}

	n := len(encoder.Classes)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}

	correct := 0
	for i, features := range xTest {
		pred, _, err := m.Predict(features)
		if err != nil {
			return nil, fmt.Errorf("predicting test vector %d: %w", i, err)
		}
		counts[yTest[i]][pred]++
		if pred == yTest[i] {
			correct++
		}
	}

	eval := &Evaluation{
		Accuracy:  float64(correct) / float64(len(xTest)),
		Confusion: make([][]float64, n),
	}

	var f1Sum float64
	for c := 0; c < n; c++ {
		var tp, fp, fn int
		for o := 0; o < n; o++ {
			if o == c {
				tp = counts[c][c]
				continue
			}
			fn += counts[c][o]
			fp += counts[o][c]
		}

		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		f1Sum += f1

		eval.PerClass = append(eval.PerClass, ClassMetrics{
			Class:     encoder.Classes[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   tp + fn,
		})

		eval.Confusion[c] = make([]float64, n)
		rowTotal := tp + fn
		if rowTotal > 0 {
			for o := 0; o < n; o++ {
				eval.Confusion[c][o] = float64(counts[c][o]) / float64(rowTotal)
			}
		}
	}
	eval.MacroF1 = f1Sum / float64(n)

	return eval, nil
}
