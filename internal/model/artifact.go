package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/konkalaitzidis/digital-health-app/internal/window"
)

// Artifact bundles everything inference needs to reconstruct the exact
// training-time pipeline: windowing parameters, feature count, the fitted
// scaler and label encoder, and the trained classifier. It is written once
// by training, loaded once at service startup and read-only after that, so
// concurrent inference calls can share a single value without locking.
type Artifact struct {
	Version     string        `json:"version"`
	FS          float64       `json:"fs"`
	WinSec      float64       `json:"winSec"`
	Overlap     float64       `json:"overlap"`
	NumFeatures int           `json:"numFeatures"`
	Classes     []string      `json:"classes"`
	Scaler      *Scaler       `json:"scaler"`
	Encoder     *LabelEncoder `json:"labelEncoder"`
	Classifier  *KNN          `json:"classifier"`
}

// WindowParams reconstructs the windowing configuration the artifact was
// trained with.
func (a *Artifact) WindowParams() window.Params {
	return window.Params{FS: a.FS, WinSec: a.WinSec, Overlap: a.Overlap}
}

// Validate checks internal consistency after loading. A mismatch here means
// the artifact was produced by different pipeline code and must never be
// served from.
func (a *Artifact) Validate() error {
	if a.Scaler == nil || a.Encoder == nil || a.Classifier == nil {
		return fmt.Errorf("artifact is incomplete")
	}
	if err := a.WindowParams().Validate(); err != nil {
		return fmt.Errorf("artifact window parameters: %w", err)
	}
	if a.NumFeatures <= 0 {
		return fmt.Errorf("artifact declares %d features", a.NumFeatures)
	}
	if got := len(a.Scaler.Mean); got != a.NumFeatures {
		return fmt.Errorf("scaler has %d dimensions, artifact declares %d", got, a.NumFeatures)
	}
	if got := len(a.Encoder.Classes); got != len(a.Classes) {
		return fmt.Errorf("label encoder has %d classes, artifact declares %d", got, len(a.Classes))
	}
	if a.Classifier.NumClasses != len(a.Classes) {
		return fmt.Errorf("classifier has %d classes, artifact declares %d", a.Classifier.NumClasses, len(a.Classes))
	}
	if len(a.Classifier.Prototypes) > 0 {
		if got := len(a.Classifier.Prototypes[0].Features); got != a.NumFeatures {
			return fmt.Errorf("classifier prototypes have %d features, artifact declares %d", got, a.NumFeatures)
		}
	}
	return nil
}

// Save writes the artifact as JSON to path.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates an artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	var a Artifact
	if err = json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if err = a.Validate(); err != nil {
		return nil, fmt.Errorf("validating artifact: %w", err)
	}
	return &a, nil
}
