package model

import (
	"fmt"
)

// Classifier maps a fixed-length feature vector to a class index.
type Classifier interface {
	Predict(features []float64) (int, error)
	NumFeatures() int
	// Classes lists every class index the classifier can return.
	Classes() []int
}

const (
	ClassifierDecisionTree = "decision_tree"
	ClassifierLinear       = "linear"
)

type classifierFile struct {
	Type        string      `json:"type" yaml:"type"`
	NumFeatures int         `json:"n_features" yaml:"n_features"`
	Nodes       []TreeNode  `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Coef        [][]float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept   []float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`
}

func newClassifier(f classifierFile) (Classifier, error) {
	switch f.Type {
	case ClassifierDecisionTree:
		return NewDecisionTree(f.NumFeatures, f.Nodes)
	case ClassifierLinear:
		return NewLinearClassifier(f.Coef, f.Intercept)
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", f.Type)
	}
}
