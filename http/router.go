package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-advisor/logger"
)

type Handlers struct {
	Loan    *LoanHandler
	Dataset *DatasetHandler
	Chat    *ChatHandler
	Health  *HealthHandler
}

// NewRouter registers every route. API routes sit behind the rate limiter;
// health and metrics do not.
func NewRouter(h Handlers, limiter *RateLimiter, log logger.Logger) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/loan/analyze", h.Loan.Analyze)
	api.HandleFunc("/loan/score", h.Loan.Score)
	api.HandleFunc("/dataset/stats", h.Dataset.Stats)
	api.HandleFunc("/dataset/sample", h.Dataset.Sample)
	api.HandleFunc("/dataset/reload", h.Dataset.Reload)
	api.HandleFunc("/chat", h.Chat.Chat)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health.Healthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", RateLimitMiddleware(limiter, api))

	return RecoverMiddleware(log, LoggingMiddleware(log, mux))
}
