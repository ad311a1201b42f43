package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/auth-service/docs"
)

func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.health.HealthCheck)

	setupSwaggerRoutes(a.mux)
	setupMetricsRoute(a.mux)

	a.mux.HandleFunc("POST /register", a.routes.auth.Register)
	a.mux.HandleFunc("POST /login", a.routes.auth.Login)
	a.mux.Handle("GET /me", a.m.RequireIdentity(a.routes.auth.Me))
}

// setupSwaggerRoutes serves the Swagger UI for the registered auth docs.
func setupSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName(docs.SwaggerInfoauth.InstanceName())))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
