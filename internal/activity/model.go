package activity

import "time"

// MET intensity classes, ordered from least to most vigorous.
const (
	Sedentary = "Sedentary"
	Light     = "Light"
	Moderate  = "Moderate"
	Vigorous  = "Vigorous"
)

// Sample represents a single triaxial accelerometer reading. Units are
// ambiguous at ingestion: depending on the client sensor pipeline the values
// may be in g or in m/s². The calibrate package resolves this before any
// feature is computed.
type Sample struct {
	X         float64  `json:"accel_x"`             // Acceleration along the X axis
	Y         float64  `json:"accel_y"`             // Acceleration along the Y axis
	Z         float64  `json:"accel_z"`             // Acceleration along the Z axis
	Timestamp *float64 `json:"timestamp,omitempty"` // Optional client timestamp (s or ms); unused by the pipeline
}

// Window is a contiguous ordered run of samples. A window handed to the
// feature extractor always has exactly the configured window length; partial
// windows are never extracted.
type Window []Sample

// Axis returns the k-th column (0=X, 1=Y, 2=Z) of the window as a new slice.
func (w Window) Axis(k int) []float64 {
	col := make([]float64, len(w))
	for i, s := range w {
		switch k {
		case 0:
			col[i] = s.X
		case 1:
			col[i] = s.Y
		default:
			col[i] = s.Z
		}
	}
	return col
}

// Clone returns a deep copy of the window.
func (w Window) Clone() Window {
	out := make(Window, len(w))
	copy(out, w)
	return out
}

// LabeledSample pairs one raw accelerometer reading with its per-sample MET
// class, as produced by the dataset loader.
type LabeledSample struct {
	User      int       // Subject identifier from the source dataset
	Activity  string    // Raw activity name (e.g. "Jogging")
	Class     string    // MET class derived from the activity
	Timestamp time.Time // Reading time, if the source row carried one
	X, Y, Z   float64   // Acceleration in m/s² (dataset convention)
}

// METClasses maps raw WISDM activity names onto coarse MET intensity classes.
// Activities not present here are dropped by the dataset loader.
var METClasses = map[string]string{
	"Sitting":    Sedentary,
	"Standing":   Light,
	"Walking":    Moderate,
	"Upstairs":   Moderate,
	"Downstairs": Moderate,
	"Jogging":    Vigorous,
}
