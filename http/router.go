package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stuntify/metrics"
	"stuntify/service"
)

const (
	homePath    = "/"
	healthPath  = "/healthz"
	metricsPath = "/metrics"
	predictPath = "/predict-stunting"
)

func routeLabel(path string) string {
	switch path {
	case homePath, healthPath, metricsPath, predictPath:
		return path
	default:
		return "other"
	}
}

type RouterConfig struct {
	Service  *service.PredictionService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	// Limiter guards the prediction endpoint; nil disables rate limiting.
	Limiter        *RateLimiter
	AllowedOrigins []string
	Version        string
}

// NewRouter wires every endpoint and the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	predictionHandler := NewPredictionHandler(cfg.Service, cfg.Metrics, cfg.Logger)
	homeHandler := NewHomeHandler(cfg.Service, cfg.Version)

	var predict http.Handler = http.HandlerFunc(predictionHandler.PredictStunting)
	if cfg.Limiter != nil {
		predict = RateLimitMiddleware(cfg.Limiter, cfg.Metrics, predict)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", NotFound)
	mux.HandleFunc("/{$}", homeHandler.Home)
	mux.HandleFunc(healthPath, homeHandler.Healthz)
	mux.Handle(predictPath, predict)
	mux.Handle(metricsPath, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	chain := Chain(
		RequestLogMiddleware(cfg.Logger, cfg.Metrics),
		RecoveryMiddleware(cfg.Logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)
	return chain(mux)
}
