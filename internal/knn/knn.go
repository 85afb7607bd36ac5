// Package knn implements a k-nearest-neighbour classifier with uniform
// neighbour weights and Euclidean distance.
package knn

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Classifier stores the training set; prediction is a neighbour vote
type Classifier struct {
	K       int         `json:"k"`
	Labels  []string    `json:"labels"`  // sorted class labels
	Samples [][]float64 `json:"samples"` // training features
	Targets []int       `json:"targets"` // index into Labels per sample
}

// Fit stores the samples and their labels
func Fit(samples [][]float64, labels []string, k int) (*Classifier, error) {
	if len(samples) == 0 {
		return nil, errors.New("knn: no training samples")
	}
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("knn: %d samples but %d labels", len(samples), len(labels))
	}
	if k < 1 || k > len(samples) {
		return nil, fmt.Errorf("knn: k=%d out of range [1, %d]", k, len(samples))
	}
	dim := len(samples[0])
	for i, s := range samples {
		if len(s) != dim {
			return nil, fmt.Errorf("knn: sample %d has %d features, want %d", i, len(s), dim)
		}
	}

	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	index := make(map[string]int, len(classes))
	for i, l := range classes {
		index[l] = i
	}

	c := &Classifier{
		K:       k,
		Labels:  classes,
		Samples: make([][]float64, len(samples)),
		Targets: make([]int, len(samples)),
	}
	for i, s := range samples {
		c.Samples[i] = append([]float64(nil), s...)
		c.Targets[i] = index[labels[i]]
	}
	return c, nil
}

// Validate checks a classifier restored from an artifact
func (c *Classifier) Validate() error {
	if len(c.Samples) == 0 || len(c.Samples) != len(c.Targets) {
		return fmt.Errorf("knn: %d samples, %d targets", len(c.Samples), len(c.Targets))
	}
	if c.K < 1 || c.K > len(c.Samples) {
		return fmt.Errorf("knn: k=%d out of range [1, %d]", c.K, len(c.Samples))
	}
	dim := len(c.Samples[0])
	for i, t := range c.Targets {
		if t < 0 || t >= len(c.Labels) {
			return fmt.Errorf("knn: target %d of sample %d out of range", t, i)
		}
		if len(c.Samples[i]) != dim {
			return fmt.Errorf("knn: sample %d has %d features, want %d", i, len(c.Samples[i]), dim)
		}
	}
	return nil
}

// Classes returns the labels in PredictProba column order
func (c *Classifier) Classes() []string {
	return c.Labels
}

// Dim returns the expected feature count
func (c *Classifier) Dim() int {
	return len(c.Samples[0])
}

// PredictProba returns the share of the k nearest neighbours per class.
// Equidistant neighbours are taken in training order.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	if len(x) != c.Dim() {
		return nil, fmt.Errorf("knn: got %d features, want %d", len(x), c.Dim())
	}
	dist := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		dist[i] = floats.Distance(s, x, 2)
	}
	order := make([]int, len(dist))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] < dist[order[b]]
	})

	proba := make([]float64, len(c.Labels))
	for _, i := range order[:c.K] {
		proba[c.Targets[i]]++
	}
	floats.Scale(1/float64(c.K), proba)
	return proba, nil
}

// Predict returns the most voted label
func (c *Classifier) Predict(x []float64) (string, error) {
	proba, err := c.PredictProba(x)
	if err != nil {
		return "", err
	}
	return c.Labels[floats.MaxIdx(proba)], nil
}
