package model

import (
	"errors"
	"fmt"

	"stuntify/domain"
)

// LabelDecoder maps class indices back to their labels.
type LabelDecoder struct {
	labels []string
}

type labelDecoderFile struct {
	Classes []string `json:"classes" yaml:"classes"`
}

func NewLabelDecoder(labels []string) (*LabelDecoder, error) {
	if len(labels) == 0 {
		return nil, errors.New("decoder has no classes")
	}
	seen := make(map[string]struct{}, len(labels))
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("decoder class %d is empty", i)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("decoder class %q is duplicated", label)
		}
		seen[label] = struct{}{}
	}
	return &LabelDecoder{labels: append([]string(nil), labels...)}, nil
}

// Decode returns the label for index.
func (d *LabelDecoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(d.labels) {
		return "", fmt.Errorf("%w: %d", domain.ErrUnknownClass, index)
	}
	return d.labels[index], nil
}

func (d *LabelDecoder) Len() int {
	return len(d.labels)
}

// Labels returns a copy of the label set in index order.
func (d *LabelDecoder) Labels() []string {
	return append([]string(nil), d.labels...)
}
