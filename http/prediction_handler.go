package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"stuntify/domain"
	"stuntify/metrics"
	"stuntify/service"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

type PredictionHandler struct {
	service *service.PredictionService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewPredictionHandler(
	service *service.PredictionService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PredictionHandler {
	return &PredictionHandler{service: service, metrics: m, logger: logger}
}

func (h *PredictionHandler) PredictStunting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.reject(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed", nil)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		h.reject(w, http.StatusUnsupportedMediaType, codeUnsupportedMedia, "Content-Type must be application/json", nil)
		return
	}

	req, typeIssues, err := decodeConditionRequest(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	input, err := service.ValidateRequest(req)
	if err = withTypeIssues(typeIssues, err); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.service.Predict(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *PredictionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		h.reject(w, http.StatusUnprocessableEntity, codeValidationFailed, "request validation failed", verr.Issues)
	case errors.As(err, &maxErr):
		h.reject(w, http.StatusRequestEntityTooLarge, codeBodyTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), nil)
	case errors.Is(err, errInvalidBody):
		h.reject(w, http.StatusBadRequest, codeInvalidBody, err.Error(), nil)
	case errors.Is(err, domain.ErrUnknownCategory):
		h.reject(w, http.StatusBadRequest, codeUnknownCategory, err.Error(), nil)
	case errors.Is(err, domain.ErrUnknownClass):
		h.reject(w, http.StatusBadRequest, codeUnknownClass, err.Error(), nil)
	default:
		h.logger.Error("prediction failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		h.reject(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
	}
}

func (h *PredictionHandler) reject(w http.ResponseWriter, status int, code, message string, fields []domain.FieldIssue) {
	h.metrics.ObserveError(code)
	writeError(w, status, code, message, fields)
}

// decodeConditionRequest reads exactly one JSON object. Each known field is
// decoded on its own so every type mismatch is reported, not just the first.
// Mistyped fields are left nil in the returned request and listed in the
// returned ValidationError. Anything else that stops decoding is a malformed
// body.
func decodeConditionRequest(w http.ResponseWriter, r *http.Request) (domain.ConditionRequest, *domain.ValidationError, error) {
	var req domain.ConditionRequest
	typeIssues := &domain.ValidationError{}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return req, nil, bodyError(err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after JSON object")
		}
		return req, nil, bodyError(err)
	}

	req.Category = decodeField[string](fields, service.FieldCategory, typeIssues)
	req.Age = decodeField[int](fields, service.FieldAge, typeIssues)
	req.Height = decodeField[float64](fields, service.FieldHeight, typeIssues)
	req.Weight = decodeField[float64](fields, service.FieldWeight, typeIssues)
	return req, typeIssues, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

// decodeField returns nil for an absent or null field, and for a field whose
// value does not fit T, in which case the mismatch is added to issues.
func decodeField[T any](fields map[string]json.RawMessage, name string, issues *domain.ValidationError) *T {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			issues.Add(name, fmt.Sprintf("expected %s, got %s", jsonTypeName(typeErr.Type), typeErr.Value))
		} else {
			issues.Add(name, "invalid value")
		}
		return nil
	}
	return v
}

// withTypeIssues folds JSON type mismatches into the result of request
// validation. A mistyped field is nil in the request, so the "required" issue
// validation reports for it is dropped in favour of the type mismatch.
func withTypeIssues(typeIssues *domain.ValidationError, err error) error {
	if typeIssues.OrNil() == nil {
		return err
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			if !typeIssues.Has(issue.Field) {
				typeIssues.Add(issue.Field, issue.Reason)
			}
		}
	}
	return typeIssues
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return t.String()
	}
}
