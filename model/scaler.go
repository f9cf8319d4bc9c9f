package model

import (
	"errors"
	"fmt"
	"math"
)

// StandardScaler applies (x - mean) / scale per feature with parameters
// learned at training time.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

type scalerFile struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// NewStandardScaler validates the learned parameters. A zero scale marks a
// feature that was constant during training and is treated as 1.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.New("scaler has no features")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler mean has %d values, scale has %d", len(mean), len(scale))
	}
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i := range scale {
		if math.IsNaN(mean[i]) || math.IsInf(mean[i], 0) {
			return nil, fmt.Errorf("scaler mean[%d] is not finite", i)
		}
		if math.IsNaN(scale[i]) || math.IsInf(scale[i], 0) || scale[i] < 0 {
			return nil, fmt.Errorf("scaler scale[%d] must be finite and non-negative", i)
		}
		s.scale[i] = scale[i]
		if s.scale[i] == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// Len is the number of features the scaler expects.
func (s *StandardScaler) Len() int {
	return len(s.mean)
}

// Transform returns the scaled copy of values.
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.mean) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.mean), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
