package nn

import (
	"fmt"
	"math"
	"math/rand"
)

// MLP is a simple feedforward classifier with float32 weights
type MLP struct {
	InputSize  int `json:"input_size"`
	Hidden1    int `json:"hidden1"`
	Hidden2    int `json:"hidden2"` // 0 means no second hidden layer
	OutputSize int `json:"output_size"`

	// Weights stored contiguously, bias first for every neuron
	Weights []float32 `json:"weights"`

	// Labels names each output neuron; InputScale divides each feature
	Labels     []string  `json:"labels"`
	InputScale []float64 `json:"input_scale,omitempty"`

	// Pre-allocated buffers for forward pass (no allocations in hot path)
	in  []float32
	h1  []float32
	h2  []float32
	out []float32
}

// NewMLP creates a new MLP with the given architecture
func NewMLP(inputSize, hidden1, hidden2, outputSize int) *MLP {
	m := &MLP{
		InputSize:  inputSize,
		Hidden1:    hidden1,
		Hidden2:    hidden2,
		OutputSize: outputSize,
	}
	m.Weights = make([]float32, m.GenomeSize())
	m.allocBuffers()
	return m
}

func (m *MLP) allocBuffers() {
	m.in = make([]float32, m.InputSize)
	m.h1 = make([]float32, m.Hidden1)
	if m.Hidden2 > 0 {
		m.h2 = make([]float32, m.Hidden2)
	}
	m.out = make([]float32, m.OutputSize)
}

// GenomeSize returns the total number of weights (including biases)
func (m *MLP) GenomeSize() int {
	return GenomeSize(m.InputSize, m.Hidden1, m.Hidden2, m.OutputSize)
}

// GenomeSize returns the weight count for the given architecture
func GenomeSize(inputSize, hidden1, hidden2, outputSize int) int {
	size := (inputSize + 1) * hidden1
	if hidden2 > 0 {
		size += (hidden1 + 1) * hidden2
		size += (hidden2 + 1) * outputSize
	} else {
		size += (hidden1 + 1) * outputSize
	}
	return size
}

// SetWeights copies genome into the network weights
func (m *MLP) SetWeights(genome []float32) {
	copy(m.Weights, genome)
}

// Validate checks an MLP restored from an artifact and prepares its buffers
func (m *MLP) Validate() error {
	if m.InputSize < 1 || m.Hidden1 < 1 || m.OutputSize < 1 || m.Hidden2 < 0 {
		return fmt.Errorf("nn: invalid architecture %d-%d-%d-%d", m.InputSize, m.Hidden1, m.Hidden2, m.OutputSize)
	}
	if len(m.Weights) != m.GenomeSize() {
		return fmt.Errorf("nn: %d weights, architecture needs %d", len(m.Weights), m.GenomeSize())
	}
	if len(m.Labels) != m.OutputSize {
		return fmt.Errorf("nn: %d labels for %d outputs", len(m.Labels), m.OutputSize)
	}
	if m.InputScale != nil && len(m.InputScale) != m.InputSize {
		return fmt.Errorf("nn: %d input scales for %d inputs", len(m.InputScale), m.InputSize)
	}
	m.allocBuffers()
	return nil
}

// Forward performs a forward pass and returns the output index with max value
func (m *MLP) Forward(input []float32) int {
	offset := 0

	// Input -> Hidden1
	for j := 0; j < m.Hidden1; j++ {
		sum := m.Weights[offset] // bias
		offset++
		for i := 0; i < m.InputSize; i++ {
			sum += input[i] * m.Weights[offset]
			offset++
		}
		m.h1[j] = relu(sum)
	}

	lastHidden := m.h1
	if m.Hidden2 > 0 {
		for j := 0; j < m.Hidden2; j++ {
			sum := m.Weights[offset] // bias
			offset++
			for i := 0; i < m.Hidden1; i++ {
				sum += m.h1[i] * m.Weights[offset]
				offset++
			}
			m.h2[j] = relu(sum)
		}
		lastHidden = m.h2
	}

	// Last hidden -> Output, no activation
	for j := 0; j < m.OutputSize; j++ {
		sum := m.Weights[offset] // bias
		offset++
		for i := range lastHidden {
			sum += lastHidden[i] * m.Weights[offset]
			offset++
		}
		m.out[j] = sum
	}

	return argmax(m.out)
}

// Classes returns the output labels
func (m *MLP) Classes() []string {
	return m.Labels
}

// PredictProba scales the features, runs a forward pass and returns the
// softmax of the outputs. Not safe for concurrent use.
func (m *MLP) PredictProba(features []float64) ([]float64, error) {
	if len(features) != m.InputSize {
		return nil, fmt.Errorf("nn: got %d features, want %d", len(features), m.InputSize)
	}
	for i, f := range features {
		if m.InputScale != nil && m.InputScale[i] != 0 {
			f /= m.InputScale[i]
		}
		m.in[i] = float32(f)
	}
	m.Forward(m.in)
	return Softmax(m.out), nil
}

// Softmax converts logits into a probability distribution
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxV := float64(logits[argmax(logits)])
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func relu(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

func argmax(vals []float32) int {
	maxIdx := 0
	maxVal := vals[0]
	for i := 1; i < len(vals); i++ {
		if vals[i] > maxVal {
			maxVal = vals[i]
			maxIdx = i
		}
	}
	return maxIdx
}

// RandomGenome generates a random genome for the network
func RandomGenome(size int, rng *rand.Rand) []float32 {
	genome := make([]float32, size)
	// Xavier-like initialization
	scale := float32(math.Sqrt(2.0 / float64(size)))
	for i := range genome {
		genome[i] = float32(rng.NormFloat64()) * scale
	}
	return genome
}

// CloneGenome makes a copy of a genome
func CloneGenome(src []float32) []float32 {
	dst := make([]float32, len(src))
	copy(dst, src)
	return dst
}
