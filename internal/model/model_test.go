package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

const validArtifact = `{
	"format": "fraudscore-mlp",
	"version": 1,
	"features": ["Amount", "Hour_of_Day"],
	"layers": [
		{"weights": [[0.5, -0.25], [1.0, 1.0]], "bias": [0.1, 0.0], "activation": "relu"},
		{"weights": [[2.0, -1.0]], "bias": [-0.5], "activation": "sigmoid"}
	]
}`

func TestLoad_ValidArtifact(t *testing.T) {
	m, err := Load(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.InputWidth() != 2 {
		t.Errorf("InputWidth = %d, want 2", m.InputWidth())
	}
	if len(m.Layers) != 2 {
		t.Errorf("layer count = %d, want 2", len(m.Layers))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for missing file, got %v", err)
	}
}

func TestLoad_CorruptArtifact(t *testing.T) {
	_, err := Load(writeArtifact(t, `{"format": "fraudscore-mlp", "version":`))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for corrupt JSON, got %v", err)
	}
}

func TestLoad_WrongFormat(t *testing.T) {
	_, err := Load(writeArtifact(t, `{"format": "keras-h5", "version": 1, "features": ["a"], "layers": [{"weights": [[1]], "bias": [0], "activation": "sigmoid"}]}`))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for wrong format tag, got %v", err)
	}
}

func TestLoad_WrongVersion(t *testing.T) {
	_, err := Load(writeArtifact(t, `{"format": "fraudscore-mlp", "version": 2, "features": ["a"], "layers": [{"weights": [[1]], "bias": [0], "activation": "sigmoid"}]}`))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for wrong version, got %v", err)
	}
}

func TestLoad_InconsistentLayerWidths(t *testing.T) {
	// First layer expects 2 inputs but the feature list has 1.
	_, err := Load(writeArtifact(t, `{"format": "fraudscore-mlp", "version": 1, "features": ["a"], "layers": [{"weights": [[1, 2]], "bias": [0], "activation": "sigmoid"}]}`))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for bad layer widths, got %v", err)
	}
}

func TestLoad_MultiOutputFinalLayer(t *testing.T) {
	_, err := Load(writeArtifact(t, `{"format": "fraudscore-mlp", "version": 1, "features": ["a"], "layers": [{"weights": [[1], [2]], "bias": [0, 0], "activation": "sigmoid"}]}`))
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for multi-output final layer, got %v", err)
	}
}

func TestPredict_KnownWeights(t *testing.T) {
	// Single sigmoid unit: p = sigmoid(0.5*x0 - 0.25*x1 + 0.1)
	m := &Model{
		Features: []string{"x0", "x1"},
		Layers: []Layer{
			{Weights: [][]float64{{0.5, -0.25}}, Bias: []float64{0.1}, Activation: "sigmoid"},
		},
	}

	probs, err := m.Predict([][]float64{{2.0, 4.0}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	want := 1.0 / (1.0 + math.Exp(-(0.5*2.0 - 0.25*4.0 + 0.1)))
	if math.Abs(probs[0]-want) > 1e-12 {
		t.Errorf("prob = %v, want %v", probs[0], want)
	}
}

func TestPredict_RowOrderAndRange(t *testing.T) {
	m, err := Load(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	X := [][]float64{
		{0, 0},
		{1, 1},
		{-5, 10},
		{100, -100},
	}
	probs, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(probs) != len(X) {
		t.Fatalf("got %d probabilities for %d rows", len(probs), len(X))
	}
	for i, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("row %d probability %v outside [0,1]", i, p)
		}
	}
}

func TestPredict_ShapeMismatch(t *testing.T) {
	m, err := Load(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = m.Predict([][]float64{{1.0}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for narrow row, got %v", err)
	}

	_, err = m.Predict([][]float64{{1.0, 2.0, 3.0}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch for wide row, got %v", err)
	}
}

func TestPredict_EmptyMatrix(t *testing.T) {
	m, err := Load(writeArtifact(t, validArtifact))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	probs, err := m.Predict(nil)
	if err != nil {
		t.Fatalf("Predict failed on empty matrix: %v", err)
	}
	if len(probs) != 0 {
		t.Errorf("expected no probabilities for empty matrix, got %d", len(probs))
	}
}
