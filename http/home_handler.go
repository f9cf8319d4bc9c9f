package http

import (
	"net/http"
	"strings"

	"stuntify/service"
)

type HomeHandler struct {
	service *service.PredictionService
	version string
}

func NewHomeHandler(service *service.PredictionService, version string) *HomeHandler {
	return &HomeHandler{service: service, version: version}
}

type usageGuide struct {
	Endpoint   string            `json:"endpoint"`
	Method     string            `json:"method"`
	BodyFormat string            `json:"body_format"`
	Fields     map[string]string `json:"fields"`
	Labels     []string          `json:"labels"`
}

type homeResponse struct {
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Version    string     `json:"version"`
	UsageGuide usageGuide `json:"usage_guide"`
}

// Home describes the service and how to call it.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, homeResponse{
		Status:  "online",
		Message: "Stuntify AI API is ready to use",
		Version: h.version,
		UsageGuide: usageGuide{
			Endpoint:   predictPath,
			Method:     http.MethodPost,
			BodyFormat: "JSON",
			Fields: map[string]string{
				service.FieldCategory: "Child's sex, one of: " + strings.Join(h.service.Categories(), ", "),
				service.FieldAge:      "Age in months (integer, >= 0)",
				service.FieldHeight:   "Height in cm (number, > 0)",
				service.FieldWeight:   "Weight in kg (number, > 0)",
			},
			Labels: h.service.Labels(),
		},
	})
}

// Healthz reports ready. The server only starts listening after the
// artifacts are loaded, so reaching this handler means the service is up.
func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers every path no other route matches.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path, nil)
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed", nil)
	return false
}
