package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)
	mux.HandleFunc("/api/recommendations/", s.app.AnalysisHandler.RecommendationHandler)
	mux.HandleFunc("/api/currency-impact", s.app.AnalysisHandler.CurrencyImpactHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/health/detailed", s.app.APIHandler.DetailedHealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
