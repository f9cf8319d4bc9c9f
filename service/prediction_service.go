package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"stuntify/domain"
	"stuntify/metrics"
	"stuntify/model"
	"stuntify/repository"
)

// PredictionService runs the encode, scale, classify and decode pipeline over
// artifacts that never change after construction. It is safe for concurrent
// use.
type PredictionService struct {
	artifacts *model.Artifacts
	cache     repository.CacheRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPredictionService creates the service. cache may be nil.
func NewPredictionService(
	artifacts *model.Artifacts,
	cache repository.CacheRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{
		artifacts: artifacts,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// Predict returns the label for input. Unknown categories fail with
// domain.ErrUnknownCategory before any scaling happens.
func (s *PredictionService) Predict(
	ctx context.Context,
	input domain.ConditionInput,
) (domain.PredictionResult, error) {

	if err := validateInput(input); err != nil {
		return domain.PredictionResult{}, err
	}

	code, err := s.artifacts.Encoder.Encode(input.Category)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	key := s.cacheKey(code, input)
	if label, ok := s.lookup(ctx, key); ok {
		return domain.PredictionResult{Prediction: label}, nil
	}

	features, err := s.features(code, input)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	class, err := s.artifacts.Classifier.Predict(features[:])
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("classify: %w", err)
	}

	label, err := s.artifacts.Decoder.Decode(class)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	s.store(ctx, key, label)
	s.metrics.ObservePrediction(label)

	s.logger.Debug("prediction served",
		zap.String("category", input.Category),
		zap.Int("age", input.Age),
		zap.Float64("height", input.Height),
		zap.Float64("weight", input.Weight),
		zap.Int("class", class),
		zap.String("label", label),
	)

	return domain.PredictionResult{Prediction: label}, nil
}

// Features builds the classifier input for input.
func (s *PredictionService) Features(input domain.ConditionInput) (domain.FeatureVector, error) {
	code, err := s.artifacts.Encoder.Encode(input.Category)
	if err != nil {
		return domain.FeatureVector{}, err
	}
	return s.features(code, input)
}

func (s *PredictionService) features(code int, input domain.ConditionInput) (domain.FeatureVector, error) {
	scaled, err := s.artifacts.Scaler.Transform([]float64{
		float64(input.Age),
		input.Height,
		input.Weight,
	})
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("scale: %w", err)
	}
	return domain.FeatureVector{float64(code), scaled[0], scaled[1], scaled[2]}, nil
}

// Categories lists the accepted category values.
func (s *PredictionService) Categories() []string {
	return s.artifacts.Encoder.Classes()
}

// Labels lists every label the service can return.
func (s *PredictionService) Labels() []string {
	return s.artifacts.Decoder.Labels()
}

func (s *PredictionService) cacheKey(code int, input domain.ConditionInput) string {
	var b strings.Builder
	b.WriteString(cacheKeyPrefix)
	b.WriteByte(':')
	b.WriteString(s.artifacts.Fingerprint)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(code))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(input.Age))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(input.Height, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(input.Weight, 'g', -1, 64))
	return b.String()
}

// lookup never fails the request: cache errors are logged and treated as a
// miss.
func (s *PredictionService) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	label, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.ObserveCache(cacheError)
		s.logger.Warn("prediction cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	case !ok:
		s.metrics.ObserveCache(cacheMiss)
		return "", false
	}
	if !s.knownLabel(label) {
		s.metrics.ObserveCache(cacheError)
		s.logger.Warn("prediction cache returned an unknown label", zap.String("key", key), zap.String("label", label))
		return "", false
	}
	s.metrics.ObserveCache(cacheHit)
	s.metrics.ObservePrediction(label)
	return label, true
}

func (s *PredictionService) store(ctx context.Context, key, label string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, label); err != nil {
		s.logger.Warn("prediction cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PredictionService) knownLabel(label string) bool {
	for _, l := range s.artifacts.Decoder.Labels() {
		if l == label {
			return true
		}
	}
	return false
}
