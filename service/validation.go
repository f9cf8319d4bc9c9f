package service

import (
	"math"

	"stuntify/domain"
)

// ValidateRequest checks presence and range of every field and returns the
// typed input. Issues are collected across all fields. Age, height and weight
// carry no upper bound. Category values are checked against the encoder
// vocabulary later, so an empty category surfaces as an unknown category.
func ValidateRequest(req domain.ConditionRequest) (domain.ConditionInput, error) {
	verr := &domain.ValidationError{}
	var input domain.ConditionInput

	if req.Category == nil {
		verr.Add(FieldCategory, "required")
	} else {
		input.Category = *req.Category
	}
	if req.Age == nil {
		verr.Add(FieldAge, "required")
	} else {
		input.Age = *req.Age
		checkAge(verr, input.Age)
	}
	if req.Height == nil {
		verr.Add(FieldHeight, "required")
	} else {
		input.Height = *req.Height
		checkPositive(verr, FieldHeight, input.Height)
	}
	if req.Weight == nil {
		verr.Add(FieldWeight, "required")
	} else {
		input.Weight = *req.Weight
		checkPositive(verr, FieldWeight, input.Weight)
	}

	if err := verr.OrNil(); err != nil {
		return domain.ConditionInput{}, err
	}
	return input, nil
}

func validateInput(input domain.ConditionInput) error {
	verr := &domain.ValidationError{}
	checkAge(verr, input.Age)
	checkPositive(verr, FieldHeight, input.Height)
	checkPositive(verr, FieldWeight, input.Weight)
	return verr.OrNil()
}

func checkAge(verr *domain.ValidationError, age int) {
	if age < 0 {
		verr.Add(FieldAge, "must be >= 0")
	}
}

func checkPositive(verr *domain.ValidationError, field string, v float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		verr.Add(field, "must be a finite number")
	case v <= 0:
		verr.Add(field, "must be > 0")
	}
}
