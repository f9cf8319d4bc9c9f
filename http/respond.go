package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"stuntify/domain"
)

const (
	codeInvalidBody      = "invalid_body"
	codeBodyTooLarge     = "body_too_large"
	codeValidationFailed = "validation_failed"
	codeUnknownCategory  = "unknown_category"
	codeUnknownClass     = "unknown_class"
	codeMethodNotAllowed = "method_not_allowed"
	codeNotFound         = "not_found"
	codeUnsupportedMedia = "unsupported_media_type"
	codeRateLimited      = "rate_limited"
	codeInternal         = "internal_error"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []domain.FieldIssue `json:"fields,omitempty"`
}

// writeJSON encodes into a buffer first so a failed encode can still turn
// into a 500 instead of a half-written body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, `{"error":"internal_error","message":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []domain.FieldIssue) {
	writeJSON(w, status, errorResponse{Error: code, Message: message, Fields: fields})
}
