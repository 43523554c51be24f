package httpserver

import (
	"log"
	"net/http"

	"github.com/atxlegis/bill-analyzer/internal/http/handlers"
	"github.com/atxlegis/bill-analyzer/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	Logger         *log.Logger
	AuthToken      string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", deps.API.Health)
	mux.HandleFunc("/v1/bills/analyze", deps.API.Analyze)
	mux.HandleFunc("/v1/bills/", deps.API.InvalidateCache)
	mux.HandleFunc("/v1/jobs/", deps.API.JobStatus)

	handler := http.Handler(mux)
	handler = middleware.Auth(deps.AuthToken)(handler)
	handler = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)(handler)
	handler = middleware.Trace(deps.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
