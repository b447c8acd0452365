// Package model loads a pre-trained MLP classifier artifact and scores
// feature matrices against it.
//
// The artifact is a JSON file exported from the training pipeline: an
// ordered feature list plus dense layers (weights, biases, activation).
// The model is loaded once per process and applied to whole batches;
// scoring never mutates the loaded parameters.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

var (
	// ErrModelLoad indicates the artifact is missing, unparsable, or
	// incompatible with this runtime.
	ErrModelLoad = errors.New("model load failed")

	// ErrShapeMismatch indicates the feature matrix width disagrees with
	// the input width the model was trained on.
	ErrShapeMismatch = errors.New("feature matrix shape mismatch")
)

// FormatTag identifies the artifact format this runtime understands.
const FormatTag = "fraudscore-mlp"

// FormatVersion is the artifact schema version this runtime accepts.
const FormatVersion = 1

// Layer is one dense layer of the network. Weights are row-major:
// Weights[i] holds the input weights of output unit i.
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"` // "relu", "sigmoid", or "linear"
}

// Model is a loaded classifier ready for batch scoring.
type Model struct {
	Format   string   `json:"format"`
	Version  int      `json:"version"`
	Features []string `json:"features"`
	Layers   []Layer  `json:"layers"`
}

// Load reads and validates a classifier artifact from disk.
// All failure modes wrap ErrModelLoad so callers can branch on the kind
// without parsing messages.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelLoad, path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelLoad, path, err)
	}

	if m.Format != FormatTag {
		return nil, fmt.Errorf("%w: unexpected format %q (want %q)", ErrModelLoad, m.Format, FormatTag)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrModelLoad, m.Version, FormatVersion)
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("%w: artifact has no layers", ErrModelLoad)
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("%w: artifact has no feature list", ErrModelLoad)
	}

	// Validate layer chaining: each layer's input width must match the
	// previous layer's output width, and the first must match the
	// feature list.
	in := len(m.Features)
	for li, layer := range m.Layers {
		if len(layer.Weights) == 0 || len(layer.Weights) != len(layer.Bias) {
			return nil, fmt.Errorf("%w: layer %d has %d weight rows and %d biases", ErrModelLoad, li, len(layer.Weights), len(layer.Bias))
		}
		for ui, row := range layer.Weights {
			if len(row) != in {
				return nil, fmt.Errorf("%w: layer %d unit %d expects %d inputs, got %d", ErrModelLoad, li, ui, in, len(row))
			}
		}
		switch layer.Activation {
		case "relu", "sigmoid", "linear":
		default:
			return nil, fmt.Errorf("%w: layer %d has unknown activation %q", ErrModelLoad, li, layer.Activation)
		}
		in = len(layer.Weights)
	}
	if in != 1 {
		return nil, fmt.Errorf("%w: final layer emits %d outputs, want 1 for binary classification", ErrModelLoad, in)
	}

	return &m, nil
}

// InputWidth returns the number of features the model was trained on.
func (m *Model) InputWidth() int {
	return len(m.Features)
}

// Predict scores a feature matrix and returns one probability per row,
// in input row order, each in [0,1]. The whole matrix is scored in a
// single call; the model is never reloaded per row.
func (m *Model) Predict(X [][]float64) ([]float64, error) {
	width := m.InputWidth()
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, model expects %d", ErrShapeMismatch, i, len(row), width)
		}
	}

	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = clamp01(m.forward(row))
	}
	return out, nil
}

// forward runs a single row through every layer.
func (m *Model) forward(row []float64) float64 {
	cur := row
	for _, layer := range m.Layers {
		next := make([]float64, len(layer.Weights))
		for u, weights := range layer.Weights {
			sum := layer.Bias[u]
			for j, w := range weights {
				sum += w * cur[j]
			}
			next[u] = activate(layer.Activation, sum)
		}
		cur = next
	}
	return cur[0]
}

func activate(kind string, x float64) float64 {
	switch kind {
	case "relu":
		if x > 0 {
			return x
		}
		return 0
	case "sigmoid":
		return 1.0 / (1.0 + math.Exp(-x))
	default:
		return x
	}
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
