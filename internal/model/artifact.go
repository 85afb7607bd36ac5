// Package model persists trained classifiers as JSON artifacts.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drivesim/internal/decision"
	"drivesim/internal/knn"
	"drivesim/internal/nn"
)

// Kind discriminates the classifier stored in an artifact
type Kind string

const (
	KindKNN Kind = "knn"
	KindMLP Kind = "mlp"
)

// ErrNotFound is returned by Load when no artifact exists at the path
var ErrNotFound = errors.New("model artifact not found")

// Artifact is the on-disk form of a trained classifier
type Artifact struct {
	Kind      Kind            `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Features  int             `json:"features"`
	Accuracy  float64         `json:"holdout_accuracy,omitempty"`
	KNN       *knn.Classifier `json:"knn,omitempty"`
	MLP       *nn.MLP         `json:"mlp,omitempty"`
}

// Classifier returns the stored model after checking it is usable
func (a *Artifact) Classifier() (decision.Classifier, error) {
	switch a.Kind {
	case KindKNN:
		if a.KNN == nil {
			return nil, errors.New("knn artifact without model payload")
		}
		if err := a.KNN.Validate(); err != nil {
			return nil, err
		}
		if a.KNN.Dim() != a.Features {
			return nil, fmt.Errorf("knn model has %d features, artifact declares %d", a.KNN.Dim(), a.Features)
		}
		return a.KNN, nil
	case KindMLP:
		if a.MLP == nil {
			return nil, errors.New("mlp artifact without model payload")
		}
		if err := a.MLP.Validate(); err != nil {
			return nil, err
		}
		if a.MLP.InputSize != a.Features {
			return nil, fmt.Errorf("mlp model has %d inputs, artifact declares %d", a.MLP.InputSize, a.Features)
		}
		return a.MLP, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

// Save writes the artifact, creating parent directories
func Save(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads an artifact and returns its classifier. features is the feature
// vector length the caller will supply; a mismatch is an error.
func Load(path string, features int) (decision.Classifier, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if a.Features != features {
		return nil, fmt.Errorf("model %s expects %d features, simulator provides %d", path, a.Features, features)
	}
	clf, err := a.Classifier()
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return clf, nil
}
