package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stuntify/domain"
	"stuntify/metrics"
	"stuntify/model"
	"stuntify/repository"
)

func newTestService(t *testing.T, cache repository.CacheRepository) *PredictionService {
	t.Helper()
	artifacts, err := model.LoadArtifacts(model.DefaultArtifactFiles("../artifacts"))
	require.NoError(t, err)
	return NewPredictionService(artifacts, cache, metrics.New(prometheus.NewRegistry()), zap.NewNop())
}

func TestPredict_DocumentedExample(t *testing.T) {
	svc := newTestService(t, nil)

	result, err := svc.Predict(context.Background(), domain.ConditionInput{
		Category: "Laki-laki",
		Age:      19,
		Height:   91.60,
		Weight:   13.30,
	})
	require.NoError(t, err)
	assert.Equal(t, "Severely Stunted", result.Prediction)
}

func TestPredict_Labels(t *testing.T) {
	svc := newTestService(t, nil)

	cases := []struct {
		name  string
		input domain.ConditionInput
		want  string
	}{
		{"tall", domain.ConditionInput{Category: "Perempuan", Age: 19, Height: 110, Weight: 15}, "Tall"},
		{"stunted infant", domain.ConditionInput{Category: "Laki-laki", Age: 5, Height: 60, Weight: 5}, "Stunted"},
		{"normal infant", domain.ConditionInput{Category: "Laki-laki", Age: 5, Height: 75, Weight: 7}, "Normal"},
		{"normal toddler", domain.ConditionInput{Category: "Perempuan", Age: 40, Height: 95, Weight: 20}, "Normal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Predict(context.Background(), tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Prediction)
			assert.Contains(t, svc.Labels(), result.Prediction)
		})
	}
}

func TestPredict_UnknownCategory(t *testing.T) {
	cache := repository.NewMockCache()
	svc := newTestService(t, cache)

	for _, category := range []string{"Unknown", ""} {
		_, err := svc.Predict(context.Background(), domain.ConditionInput{
			Category: category,
			Age:      19,
			Height:   91.6,
			Weight:   13.3,
		})
		assert.ErrorIs(t, err, domain.ErrUnknownCategory, "category %q", category)
	}
	assert.Zero(t, cache.GetCalls)
}

func TestPredict_InvalidInput(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Predict(context.Background(), domain.ConditionInput{
		Category: "Laki-laki",
		Age:      -1,
		Height:   0,
		Weight:   13.3,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []domain.FieldIssue{
		{Field: FieldAge, Reason: "must be >= 0"},
		{Field: FieldHeight, Reason: "must be > 0"},
	}, verr.Issues)
}

func TestPredict_Deterministic(t *testing.T) {
	svc := newTestService(t, nil)
	input := domain.ConditionInput{Category: "Perempuan", Age: 30, Height: 85.2, Weight: 11.4}

	first, err := svc.Predict(context.Background(), input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Predict(context.Background(), input)
			if err == nil {
				results[i] = res.Prediction
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, first.Prediction, got)
	}
}

func TestPredict_UsesCache(t *testing.T) {
	cache := repository.NewMockCache()
	svc := newTestService(t, cache)
	input := domain.ConditionInput{Category: "Laki-laki", Age: 19, Height: 91.6, Weight: 13.3}

	_, err := svc.Predict(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, cache.Data, 1)
	assert.Equal(t, 1, cache.SetCalls)

	// A cached label is served without re-running the classifier.
	for key := range cache.Data {
		cache.Data[key] = "Tall"
	}
	result, err := svc.Predict(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Tall", result.Prediction)
	assert.Equal(t, 1, cache.SetCalls)
}

func TestPredict_IgnoresCacheFailures(t *testing.T) {
	cache := repository.NewMockCache()
	cache.FailGet = true
	cache.FailSet = true
	svc := newTestService(t, cache)

	result, err := svc.Predict(context.Background(), domain.ConditionInput{
		Category: "Laki-laki", Age: 19, Height: 91.6, Weight: 13.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Severely Stunted", result.Prediction)
}

func TestPredict_DiscardsForeignCachedLabel(t *testing.T) {
	cache := repository.NewMockCache()
	svc := newTestService(t, cache)
	input := domain.ConditionInput{Category: "Laki-laki", Age: 19, Height: 91.6, Weight: 13.3}

	_, err := svc.Predict(context.Background(), input)
	require.NoError(t, err)
	for key := range cache.Data {
		cache.Data[key] = "Obese"
	}

	result, err := svc.Predict(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Severely Stunted", result.Prediction)
}

func TestFeatures(t *testing.T) {
	svc := newTestService(t, nil)

	fv, err := svc.Features(domain.ConditionInput{Category: "Perempuan", Age: 19, Height: 91.6, Weight: 13.3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{
		1,
		(19 - 30.0) / 17.3,
		(91.6 - 88.5) / 11.8,
		(13.3 - 12.6) / 3.4,
	}, fv[:], 1e-9)

	_, err = svc.Features(domain.ConditionInput{Category: "x", Age: 1, Height: 1, Weight: 1})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestCategories(t *testing.T) {
	svc := newTestService(t, nil)
	assert.Equal(t, []string{"Laki-laki", "Perempuan"}, svc.Categories())
}
