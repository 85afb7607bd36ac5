package eval

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"drivesim/internal/decision"
)

// Report summarises a classifier on a labelled holdout split
type Report struct {
	Labels    []string
	Samples   int
	Correct   int
	Confusion *mat.Dense // rows are true labels, columns predictions
}

// Accuracy returns the share of correctly predicted samples
func (r *Report) Accuracy() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Samples)
}

// Holdout runs clf over x and compares the arg-max prediction with labels.
// Labels the classifier never saw are counted as misses.
func Holdout(clf decision.Classifier, x [][]float64, labels []string) (*Report, error) {
	if len(x) != len(labels) {
		return nil, fmt.Errorf("eval: %d samples but %d labels", len(x), len(labels))
	}
	classes := clf.Classes()
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	r := &Report{
		Labels:    classes,
		Samples:   len(x),
		Confusion: mat.NewDense(len(classes), len(classes), nil),
	}
	for i, row := range x {
		p, err := clf.PredictProba(row)
		if err != nil {
			return nil, fmt.Errorf("eval: sample %d: %w", i, err)
		}
		pred := floats.MaxIdx(p)
		truth, ok := index[labels[i]]
		if !ok {
			continue
		}
		r.Confusion.Set(truth, pred, r.Confusion.At(truth, pred)+1)
		if truth == pred {
			r.Correct++
		}
	}
	return r, nil
}

// String renders the confusion matrix as an aligned table
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy %.3f (%d/%d)\n", r.Accuracy(), r.Correct, r.Samples)
	fmt.Fprintf(&b, "%-12s", "")
	for _, l := range r.Labels {
		fmt.Fprintf(&b, "%12s", l)
	}
	b.WriteString("\n")
	for i, l := range r.Labels {
		fmt.Fprintf(&b, "%-12s", l)
		for j := range r.Labels {
			fmt.Fprintf(&b, "%12.0f", r.Confusion.At(i, j))
		}
		b.WriteString("\n")
	}
	return b.String()
}
