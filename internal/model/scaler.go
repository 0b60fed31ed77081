package model

import (
	"errors"
	"fmt"
	"math"
)

// Scaler standardizes feature vectors with z-score normalization: each
// feature dimension is shifted and scaled to mean 0 and std 1 as measured on
// the training set. Without it, large-magnitude features (the gravity-loaded
// z statistics) dominate the distance metric.
type Scaler struct {
	Mean   []float64 `json:"mean"`
	Stddev []float64 `json:"stddev"`
}

// FitScaler computes scaling parameters from the training matrix. Constant
// feature dimensions get a stddev of 1 so transforming never divides by zero.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, errors.New("no training vectors provided")
	}
	dims := len(x[0])
	if dims == 0 {
		return nil, errors.New("training vectors have no features")
	}

	mean := make([]float64, dims)
	for _, row := range x {
		if len(row) != dims {
			return nil, fmt.Errorf("inconsistent feature dimensions: %d vs %d", len(row), dims)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(x))
	}

	stddev := make([]float64, dims)
	for _, row := range x {
		for i, v := range row {
			diff := v - mean[i]
			stddev[i] += diff * diff
		}
	}
	for i := range stddev {
		stddev[i] = math.Sqrt(stddev[i] / float64(len(x)))
		if stddev[i] < 1e-10 {
			stddev[i] = 1.0
		}
	}

	return &Scaler{Mean: mean, Stddev: stddev}, nil
}

// Transform returns the standardized copy of one feature vector.
func (s *Scaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("feature length mismatch: got %d, expected %d", len(features), len(s.Mean))
	}

	scaled := make([]float64, len(features))
	for i, v := range features {
		scaled[i] = (v - s.Mean[i]) / s.Stddev[i]
	}
	return scaled, nil
}

// TransformAll standardizes a whole matrix.
func (s *Scaler) TransformAll(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
