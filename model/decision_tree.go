package model

import (
	"errors"
	"fmt"
	"sort"
)

// DecisionTree is a binary tree flattened in pre-order: a node's children
// always sit at higher indices than the node itself.
type DecisionTree struct {
	numFeatures int
	nodes       []TreeNode
	classes     []int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx" yaml:"feature_idx"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	LeftChild  int     `json:"left_child" yaml:"left_child"`
	RightChild int     `json:"right_child" yaml:"right_child"`
	ClassLabel int     `json:"class_label" yaml:"class_label"`
	IsLeaf     bool    `json:"is_leaf" yaml:"is_leaf"`
}

func NewDecisionTree(numFeatures int, nodes []TreeNode) (*DecisionTree, error) {
	if numFeatures <= 0 {
		return nil, errors.New("decision tree needs a positive feature count")
	}
	if len(nodes) == 0 {
		return nil, errors.New("decision tree has no nodes")
	}
	seen := make(map[int]struct{})
	for i, node := range nodes {
		if node.IsLeaf {
			if node.ClassLabel < 0 {
				return nil, fmt.Errorf("node %d: negative class label %d", i, node.ClassLabel)
			}
			seen[node.ClassLabel] = struct{}{}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= numFeatures {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	if len(seen) == 0 {
		return nil, errors.New("decision tree has no leaves")
	}
	classes := make([]int, 0, len(seen))
	for class := range seen {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return &DecisionTree{
		numFeatures: numFeatures,
		nodes:       append([]TreeNode(nil), nodes...),
		classes:     classes,
	}, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	if len(features) != dt.numFeatures {
		return 0, fmt.Errorf("decision tree expects %d features, got %d", dt.numFeatures, len(features))
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) NumFeatures() int {
	return dt.numFeatures
}

func (dt *DecisionTree) Classes() []int {
	return append([]int(nil), dt.classes...)
}
