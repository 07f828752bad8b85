package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/infopercept/rix/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)

	// Detection is the expensive endpoint; bound it per client
	matchLimiter := middleware.NewRateLimiter(120, 1*time.Minute)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Handle("/match", middleware.RateLimitMiddleware(matchLimiter)(http.HandlerFunc(s.MatchHandler.HandleMatch))).Methods(http.MethodPost)

	api.HandleFunc("/products", s.ProductHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/products/{vendor_id}/{product_id}", s.ProductHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/vendors", s.ProductHandler.HandleVendors).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.ProductHandler.HandleStats).Methods(http.MethodGet)

	// Reports
	api.HandleFunc("/reports/corpus", s.ReportHandler.HandleGenerateReport).Methods(http.MethodGet)

	// WebSocket endpoint for streaming detection
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return r
}
