package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/people", s.handlePeople)
	mux.HandleFunc("GET /api/v1/people/{id}", s.handlePersonByID)
	mux.HandleFunc("GET /api/v1/people/{id}/neighbors", s.handleNeighbors)
	mux.HandleFunc("GET /api/v1/movies/{id}", s.handleMovieByID)
	mux.HandleFunc("GET /api/v1/path", s.handlePath)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
}
