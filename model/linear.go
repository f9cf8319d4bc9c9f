package model

import (
	"errors"
	"fmt"
	"math"
)

// LinearClassifier scores every class as coef·x + intercept and returns the
// highest scoring one. Ties go to the lowest class index.
type LinearClassifier struct {
	coef      [][]float64
	intercept []float64
}

func NewLinearClassifier(coef [][]float64, intercept []float64) (*LinearClassifier, error) {
	if len(coef) < 2 {
		return nil, errors.New("linear classifier needs at least two classes")
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("linear classifier has %d coefficient rows but %d intercepts", len(coef), len(intercept))
	}
	width := len(coef[0])
	if width == 0 {
		return nil, errors.New("linear classifier has no features")
	}
	c := &LinearClassifier{
		coef:      make([][]float64, len(coef)),
		intercept: append([]float64(nil), intercept...),
	}
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("coefficient [%d][%d] is not finite", i, j)
			}
		}
		c.coef[i] = append([]float64(nil), row...)
	}
	for i, v := range intercept {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("intercept %d is not finite", i)
		}
	}
	return c, nil
}

func (c *LinearClassifier) Predict(features []float64) (int, error) {
	if len(features) != c.NumFeatures() {
		return 0, fmt.Errorf("linear classifier expects %d features, got %d", c.NumFeatures(), len(features))
	}
	best, bestScore := 0, math.Inf(-1)
	for class, row := range c.coef {
		score := c.intercept[class]
		for i, w := range row {
			score += w * features[i]
		}
		if score > bestScore {
			best, bestScore = class, score
		}
	}
	return best, nil
}

func (c *LinearClassifier) NumFeatures() int {
	return len(c.coef[0])
}

func (c *LinearClassifier) Classes() []int {
	classes := make([]int, len(c.coef))
	for i := range classes {
		classes[i] = i
	}
	return classes
}
