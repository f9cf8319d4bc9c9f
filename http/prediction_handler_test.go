package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stuntify/domain"
	"stuntify/metrics"
	"stuntify/model"
	"stuntify/repository"
	"stuntify/service"
)

func newTestPredictionHandler(t *testing.T) *PredictionHandler {
	t.Helper()
	artifacts, err := model.LoadArtifacts(model.DefaultArtifactFiles("../artifacts"))
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	svc := service.NewPredictionService(artifacts, repository.NewMockCache(), m, zap.NewNop())
	return NewPredictionHandler(svc, m, zap.NewNop())
}

func postPredict(t *testing.T, handler *PredictionHandler, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, predictPath, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.PredictStunting(w, req)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), "body: %s", w.Body.String())
	return w, payload
}

func decodeError(t *testing.T, payload map[string]json.RawMessage) errorResponse {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestPredictStunting_OK(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{
		"category": "Laki-laki",
		"age": 19,
		"height": 91.60,
		"weight": 13.30
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `"Severely Stunted"`, string(payload["prediction"]))
}

func TestPredictStunting_SameInputSameOutput(t *testing.T) {
	handler := newTestPredictionHandler(t)
	body := `{"category": "Perempuan", "age": 19, "height": 110, "weight": 15}`

	_, first := postPredict(t, handler, body)
	_, second := postPredict(t, handler, body)
	assert.Equal(t, first, second)
	assert.JSONEq(t, `"Tall"`, string(first["prediction"]))
}

func TestPredictStunting_MissingAge(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{"category": "Laki-laki", "height": 91.6, "weight": 13.3}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, payload, "prediction")
	resp := decodeError(t, payload)
	assert.Equal(t, codeValidationFailed, resp.Error)
	assert.Equal(t, []domain.FieldIssue{{Field: "age", Reason: "required"}}, resp.Fields)
}

func TestPredictStunting_NonNumericField(t *testing.T) {
	handler := newTestPredictionHandler(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"age string", `{"category": "Laki-laki", "age": "nineteen", "height": 91.6, "weight": 13.3}`, "age"},
		{"age fractional", `{"category": "Laki-laki", "age": 19.5, "height": 91.6, "weight": 13.3}`, "age"},
		{"height bool", `{"category": "Laki-laki", "age": 19, "height": true, "weight": 13.3}`, "height"},
		{"weight string", `{"category": "Laki-laki", "age": 19, "height": 91.6, "weight": "13.3"}`, "weight"},
		{"category number", `{"category": 1, "age": 19, "height": 91.6, "weight": 13.3}`, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, payload := postPredict(t, handler, tc.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.NotContains(t, payload, "prediction")
			resp := decodeError(t, payload)
			require.Len(t, resp.Fields, 1)
			assert.Equal(t, tc.field, resp.Fields[0].Field)
		})
	}
}

func TestPredictStunting_ReportsEveryBadField(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{"age": "x", "weight": "y"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, payload, "prediction")
	resp := decodeError(t, payload)
	assert.Equal(t, codeValidationFailed, resp.Error)
	assert.ElementsMatch(t, []domain.FieldIssue{
		{Field: "age", Reason: "expected integer, got string"},
		{Field: "weight", Reason: "expected number, got string"},
		{Field: "category", Reason: "required"},
		{Field: "height", Reason: "required"},
	}, resp.Fields)
}

func TestPredictStunting_TypeAndRangeIssuesTogether(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{"category": "Laki-laki", "age": -2, "height": "tall", "weight": null}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []domain.FieldIssue{
		{Field: "height", Reason: "expected number, got string"},
		{Field: "age", Reason: "must be >= 0"},
		{Field: "weight", Reason: "required"},
	}, decodeError(t, payload).Fields)
}

func TestPredictStunting_EmptyCategory(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{"category": "", "age": 19, "height": 91.6, "weight": 13.3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeUnknownCategory, decodeError(t, payload).Error)
}

func TestPredictStunting_UnknownCategory(t *testing.T) {
	handler := newTestPredictionHandler(t)

	w, payload := postPredict(t, handler, `{"category": "Unknown", "age": 19, "height": 91.6, "weight": 13.3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, payload, "prediction")
	resp := decodeError(t, payload)
	assert.Equal(t, codeUnknownCategory, resp.Error)
	assert.Contains(t, resp.Message, "Unknown")
}

func TestPredictStunting_BadRequest(t *testing.T) {
	handler := newTestPredictionHandler(t)

	valid := `{"category":"Laki-laki","age":19,"height":91.6,"weight":13.3}`
	for _, body := range []string{
		`{invalid-json}`,
		``,
		`[1, 2]`,
		valid + ` {"oops"`,
		valid + ` {}`,
		valid + valid,
	} {
		w, payload := postPredict(t, handler, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, codeInvalidBody, decodeError(t, payload).Error)
	}
}

func TestPredictStunting_BodyTooLarge(t *testing.T) {
	handler := newTestPredictionHandler(t)
	body := `{"category": "` + strings.Repeat("x", maxBodyBytes) + `"}`

	w, payload := postPredict(t, handler, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, codeBodyTooLarge, decodeError(t, payload).Error)
}

func TestPredictStunting_MethodNotAllowed(t *testing.T) {
	handler := newTestPredictionHandler(t)

	req := httptest.NewRequest(http.MethodGet, predictPath, nil)
	w := httptest.NewRecorder()
	handler.PredictStunting(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestPredictStunting_UnsupportedMediaType(t *testing.T) {
	handler := newTestPredictionHandler(t)

	req := httptest.NewRequest(http.MethodPost, predictPath, strings.NewReader("category=Laki-laki"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.PredictStunting(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
