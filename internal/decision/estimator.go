package decision

import (
	"drivesim/internal/env"
)

// Classifier is a trained model that assigns class probabilities to a
// feature vector. Classes returns the labels in the order PredictProba uses.
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
	Classes() []string
}

// Estimator turns features into a probability per action
type Estimator interface {
	Probabilities(features []float64) Scores
	// Trained reports whether the estimate comes from a real model
	Trained() bool
}

// Uniform is the estimator used when no model is available
type Uniform struct{}

func (Uniform) Probabilities([]float64) Scores { return UniformScores() }
func (Uniform) Trained() bool                  { return false }

// Learned adapts a Classifier to the canonical action order
type Learned struct {
	clf     Classifier
	mapping []int // classifier column -> action index, -1 if unknown
}

// NewLearned wraps clf. Labels outside the action set are ignored.
func NewLearned(clf Classifier) *Learned {
	classes := clf.Classes()
	mapping := make([]int, len(classes))
	for i, label := range classes {
		mapping[i] = -1
		if a, err := env.ParseAction(label); err == nil {
			mapping[i] = int(a)
		}
	}
	return &Learned{clf: clf, mapping: mapping}
}

// Trained is always true for a loaded model
func (l *Learned) Trained() bool { return true }

// Probabilities never fails: an error or panic from the classifier yields
// the uniform distribution for this call.
func (l *Learned) Probabilities(features []float64) (out Scores) {
	defer func() {
		if r := recover(); r != nil {
			out = UniformScores()
		}
	}()

	proba, err := l.clf.PredictProba(features)
	if err != nil || len(proba) != len(l.mapping) {
		return UniformScores()
	}
	for i, p := range proba {
		if idx := l.mapping[i]; idx >= 0 {
			out[idx] += p
		}
	}
	return out
}

// SelectEstimator returns the learned estimator when clf is present and the
// uniform fallback otherwise.
func SelectEstimator(clf Classifier) Estimator {
	if clf == nil {
		return Uniform{}
	}
	return NewLearned(clf)
}
