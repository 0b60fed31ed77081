package model

import (
	"math"
	"path/filepath"
	"testing"
)

const epsilon = 1e-9

func TestFitScaler(t *testing.T) {
	x := [][]float64{
		{1, 10, 5},
		{3, 20, 5},
	}

	s, err := FitScaler(x)
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}

	wantMean := []float64{2, 15, 5}
	wantStd := []float64{1, 5, 1} // constant dimension floors to 1
	for i := range wantMean {
		if math.Abs(s.Mean[i]-wantMean[i]) > epsilon {
			t.Errorf("Mean[%d]: got %v, expected %v", i, s.Mean[i], wantMean[i])
		}
		if math.Abs(s.Stddev[i]-wantStd[i]) > epsilon {
			t.Errorf("Stddev[%d]: got %v, expected %v", i, s.Stddev[i], wantStd[i])
		}
	}

	scaled, err := s.Transform([]float64{3, 10, 5})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	want := []float64{1, -1, 0}
	for i := range want {
		if math.Abs(scaled[i]-want[i]) > epsilon {
			t.Errorf("Scaled[%d]: got %v, expected %v", i, scaled[i], want[i])
		}
	}

	if _, err = s.Transform([]float64{1, 2}); err == nil {
		t.Error("Expected error for wrong feature length")
	}
}

func TestFitScalerErrors(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Error("Expected error for empty training set")
	}
	if _, err := FitScaler([][]float64{{1, 2}, {1}}); err == nil {
		t.Error("Expected error for inconsistent dimensions")
	}
}

func TestLabelEncoder(t *testing.T) {
	e := FitLabelEncoder([]string{"Vigorous", "Light", "Sedentary", "Light"})

	want := []string{"Light", "Sedentary", "Vigorous"}
	if len(e.Classes) != len(want) {
		t.Fatalf("Expected %d classes, got %d", len(want), len(e.Classes))
	}
	for i, c := range want {
		if e.Classes[i] != c {
			t.Errorf("Class %d: got %q, expected %q", i, e.Classes[i], c)
		}
	}

	idx, err := e.Encode("Sedentary")
	if err != nil || idx != 1 {
		t.Errorf("Encode(Sedentary): got (%d, %v), expected (1, nil)", idx, err)
	}
	name, err := e.Decode(2)
	if err != nil || name != "Vigorous" {
		t.Errorf("Decode(2): got (%q, %v), expected (Vigorous, nil)", name, err)
	}

	if _, err = e.Encode("Unknown"); err == nil {
		t.Error("Expected error for unknown class")
	}
	if _, err = e.Decode(5); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestKNNPredict(t *testing.T) {
	// Two well-separated clusters.
	x := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
	}
	y := []int{0, 0, 0, 1, 1, 1}

	m, err := FitKNN(3, x, y, 2)
	if err != nil {
		t.Fatalf("FitKNN failed: %v", err)
	}

	pred, proba, err := m.Predict([]float64{0.05, 0.05})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred != 0 {
		t.Errorf("Expected class 0, got %d", pred)
	}
	if len(proba) != 2 {
		t.Fatalf("Expected 2 probabilities, got %d", len(proba))
	}
	if proba[0] <= proba[1] {
		t.Errorf("Expected p(0) > p(1), got %v", proba)
	}
	if sum := proba[0] + proba[1]; math.Abs(sum-1) > epsilon {
		t.Errorf("Probabilities should sum to 1, got %v", sum)
	}

	pred, _, err = m.Predict([]float64{5, 5})
	if err != nil || pred != 1 {
		t.Errorf("Expected class 1, got (%d, %v)", pred, err)
	}

	if _, _, err = m.Predict([]float64{1}); err == nil {
		t.Error("Expected error for wrong feature length")
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	var x [][]float64
	var y []int
	for i := 0; i < 100; i++ {
		x = append(x, []float64{float64(i)})
		y = append(y, i%4)
	}

	a, err := StratifiedSplit(x, y, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}
	b, err := StratifiedSplit(x, y, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}

	if len(a.XTest) != 20 || len(a.XTrain) != 80 {
		t.Errorf("Expected 80/20 split, got %d/%d", len(a.XTrain), len(a.XTest))
	}
	for i := range a.XTest {
		if a.XTest[i][0] != b.XTest[i][0] {
			t.Fatalf("Split is not deterministic at test index %d", i)
		}
	}

	// Each class contributes proportionally to the test set.
	perClass := make(map[int]int)
	for _, c := range a.YTest {
		perClass[c]++
	}
	for c := 0; c < 4; c++ {
		if perClass[c] != 5 {
			t.Errorf("Class %d: expected 5 test samples, got %d", c, perClass[c])
		}
	}
}

func TestEvaluatePerfectClassifier(t *testing.T) {
	x := [][]float64{{0, 0}, {10, 10}, {0, 0.2}, {10, 10.2}}
	y := []int{0, 1, 0, 1}

	m, err := FitKNN(1, x, y, 2)
	if err != nil {
		t.Fatalf("FitKNN failed: %v", err)
	}
	encoder := FitLabelEncoder([]string{"Moderate", "Sedentary"})

	eval, err := Evaluate(m, encoder, x, y)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if eval.Accuracy != 1 {
		t.Errorf("Expected accuracy 1, got %v", eval.Accuracy)
	}
	if eval.MacroF1 != 1 {
		t.Errorf("Expected macro F1 1, got %v", eval.MacroF1)
	}
	for c := 0; c < 2; c++ {
		if eval.Confusion[c][c] != 1 {
			t.Errorf("Confusion[%d][%d]: expected 1, got %v", c, c, eval.Confusion[c][c])
		}
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	x := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	y := []int{0, 0, 1, 1}

	scaler, err := FitScaler(x)
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}
	classifier, err := FitKNN(3, x, y, 2)
	if err != nil {
		t.Fatalf("FitKNN failed: %v", err)
	}

	a := &Artifact{
		Version:     "test",
		FS:          20,
		WinSec:      5,
		Overlap:     0.5,
		NumFeatures: 2,
		Classes:     []string{"Light", "Moderate"},
		Scaler:      scaler,
		Encoder:     FitLabelEncoder([]string{"Moderate", "Light"}),
		Classifier:  classifier,
	}
	if err = a.Validate(); err != nil {
		t.Fatalf("Artifact should validate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err = a.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact failed: %v", err)
	}
	if loaded.NumFeatures != 2 || len(loaded.Classes) != 2 {
		t.Errorf("Loaded artifact differs: %+v", loaded)
	}
	if got := loaded.WindowParams().Win(); got != 100 {
		t.Errorf("Loaded window length: got %d, expected 100", got)
	}

	// Encoder index must survive the round trip.
	if idx, err := loaded.Encoder.Encode("Moderate"); err != nil || idx != 1 {
		t.Errorf("Loaded encoder Encode(Moderate): got (%d, %v)", idx, err)
	}

	// Prediction through the loaded classifier must match the original.
	wantPred, _, _ := classifier.Predict([]float64{0.5, 0.5})
	gotPred, _, err := loaded.Classifier.Predict([]float64{0.5, 0.5})
	if err != nil || gotPred != wantPred {
		t.Errorf("Loaded classifier predicts %d, original %d (err %v)", gotPred, wantPred, err)
	}
}

func TestArtifactValidateDetectsSkew(t *testing.T) {
	scaler, _ := FitScaler([][]float64{{1, 2, 3}, {4, 5, 6}})
	classifier, _ := FitKNN(1, [][]float64{{1, 2, 3}}, []int{0}, 2)

	a := &Artifact{
		Version:     "test",
		FS:          20,
		WinSec:      5,
		Overlap:     0.5,
		NumFeatures: 20, // does not match the 3-dim scaler
		Classes:     []string{"Light", "Moderate"},
		Scaler:      scaler,
		Encoder:     FitLabelEncoder([]string{"Light", "Moderate"}),
		Classifier:  classifier,
	}
	if err := a.Validate(); err == nil {
		t.Error("Expected validation error for feature count skew")
	}
}
