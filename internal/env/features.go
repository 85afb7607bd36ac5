package env

import "drivesim/internal/sensor"

// FeatureExtractor builds the estimator input: ray distances followed by
// speed and acceleration
type FeatureExtractor struct {
	buffer []float64
}

// NewFeatureExtractor creates an extractor for a fan of rays sensor rays
func NewFeatureExtractor(rays int) *FeatureExtractor {
	return &FeatureExtractor{buffer: make([]float64, FeatureDim(rays))}
}

// FeatureDim returns the feature vector length for a fan of rays sensor rays
func FeatureDim(rays int) int {
	return rays + 2
}

// Extract fills the internal buffer and returns it.
// The returned slice is overwritten by the next call.
func (f *FeatureExtractor) Extract(reading sensor.Reading, speed, accel float64) []float64 {
	if len(f.buffer) != FeatureDim(len(reading)) {
		f.buffer = make([]float64, FeatureDim(len(reading)))
	}
	n := copy(f.buffer, reading)
	f.buffer[n] = speed
	f.buffer[n+1] = accel
	return f.buffer
}
