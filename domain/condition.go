package domain

// ConditionInput is a validated prediction request.
type ConditionInput struct {
	Category string
	Age      int
	Height   float64
	Weight   float64
}

// ConditionRequest is the wire form of ConditionInput. Pointer fields let the
// boundary tell a missing field apart from a zero value.
type ConditionRequest struct {
	Category *string  `json:"category"`
	Age      *int     `json:"age"`
	Height   *float64 `json:"height"`
	Weight   *float64 `json:"weight"`
}

// FeatureVector is the classifier input: encoded category followed by the
// scaled age, height and weight.
type FeatureVector [4]float64

type PredictionResult struct {
	Prediction string `json:"prediction"`
}
