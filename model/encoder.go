package model

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"stuntify/domain"
)

// CategoryEncoder maps the training-time category vocabulary to integer
// codes. The code of a category is its position in the vocabulary.
type CategoryEncoder struct {
	classes []string
	codes   map[string]int
}

type categoryEncoderFile struct {
	Classes []string `json:"classes" yaml:"classes"`
}

// NewCategoryEncoder builds an encoder over classes.
func NewCategoryEncoder(classes []string) (*CategoryEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("encoder has no classes")
	}
	enc := &CategoryEncoder{
		classes: make([]string, len(classes)),
		codes:   make(map[string]int, len(classes)),
	}
	for i, class := range classes {
		key := norm.NFC.String(class)
		if key == "" {
			return nil, fmt.Errorf("encoder class %d is empty", i)
		}
		if _, dup := enc.codes[key]; dup {
			return nil, fmt.Errorf("encoder class %q is duplicated", class)
		}
		enc.classes[i] = key
		enc.codes[key] = i
	}
	return enc, nil
}

// Encode returns the code for category. Lookup is exact after NFC
// normalisation; no case folding or trimming is applied.
func (e *CategoryEncoder) Encode(category string) (int, error) {
	code, ok := e.codes[norm.NFC.String(category)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	return code, nil
}

// Classes returns a copy of the vocabulary in code order.
func (e *CategoryEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
