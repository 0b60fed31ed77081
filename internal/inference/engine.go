// Package inference runs the live prediction path: unit calibration, feature
// extraction, scaling and classification against a loaded artifact. The
// engine is read-only after construction and safe for concurrent use.
package inference

import (
	"errors"
	"fmt"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
	"github.com/konkalaitzidis/digital-health-app/internal/calibrate"
	"github.com/konkalaitzidis/digital-health-app/internal/features"
	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

// ErrFeatureSkew indicates the extractor produced a vector of a different
// length than the artifact declares. That means the artifact was trained by
// different pipeline code; serving it would silently return garbage, so the
// condition is surfaced as an internal error and never worked around.
var ErrFeatureSkew = errors.New("feature count does not match artifact")

// InsufficientDataError reports a window shorter than the artifact's window
// length. It is a client input problem, not a server fault.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough samples: got %d, need at least %d", e.Have, e.Need)
}

// Prediction is the outcome of classifying one window.
type Prediction struct {
	Class string
	Proba map[string]float64
}

// Engine classifies one window of raw samples at a time. The artifact is an
// explicitly passed immutable value; there is no process-global model state.
type Engine struct {
	artifact *model.Artifact
	win      int
}

// New builds an engine around a validated artifact.
func New(artifact *model.Artifact) (*Engine, error) {
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	return &Engine{
		artifact: artifact,
		win:      artifact.WindowParams().Win(),
	}, nil
}

// WindowLength returns the number of samples one prediction consumes.
func (e *Engine) WindowLength() int {
	return e.win
}

// Classes returns the class names the engine can predict.
func (e *Engine) Classes() []string {
	return e.artifact.Classes
}

// Predict classifies the most recent full window of samples. Callers may
// send more than one window's worth (rolling client buffers); only the last
// WindowLength samples are used. Returns *InsufficientDataError when fewer
// samples than one window are supplied.
func (e *Engine) Predict(samples []activity.Sample) (*Prediction, error) {
	if len(samples) < e.win {
		return nil, &InsufficientDataError{Have: len(samples), Need: e.win}
	}

	seg := calibrate.Calibrate(activity.Window(samples[len(samples)-e.win:]))

	vec := features.Extract(seg)
	if len(vec) != e.artifact.NumFeatures {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrFeatureSkew, len(vec), e.artifact.NumFeatures)
	}

	scaled, err := e.artifact.Scaler.Transform(vec)
	if err != nil {
		return nil, fmt.Errorf("scaling features: %w", err)
	}

	classIdx, proba, err := e.artifact.Classifier.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("classifying window: %w", err)
	}

	class, err := e.artifact.Encoder.Decode(classIdx)
	if err != nil {
		return nil, fmt.Errorf("decoding class: %w", err)
	}

	p := &Prediction{Class: class, Proba: make(map[string]float64, len(proba))}
	for i, v := range proba {
		name, err := e.artifact.Encoder.Decode(i)
		if err != nil {
			return nil, fmt.Errorf("decoding class: %w", err)
		}
		p.Proba[name] = v
	}
	return p, nil
}
