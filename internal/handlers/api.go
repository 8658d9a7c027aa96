package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
)

type APIHandler struct {
	config *common.Config
	logger arbor.ILogger
}

func NewAPIHandler(config *common.Config) *APIHandler {
	return &APIHandler{
		config: config,
		logger: common.GetLogger(),
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// DetailedHealthHandler returns per-component health. The service is
// "degraded" when the market data API key is missing (every analysis
// depends on it) or when no AI key resolves (recommendations come from
// the rule-based fallback only).
func (h *APIHandler) DetailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	marketKey, _ := common.ResolveAPIKey("market_api_key", h.config.Market.APIKey)
	claudeKey, _ := common.ResolveAPIKey("anthropic_api_key", h.config.Claude.APIKey)
	geminiKey, _ := common.ResolveAPIKey("gemini_api_key", h.config.Gemini.APIKey)

	status := "ok"
	if marketKey == "" || (claudeKey == "" && geminiKey == "") {
		status = "degraded"
	}

	components := map[string]interface{}{
		"market_data": map[string]interface{}{
			"configured": marketKey != "",
			"base_url":   h.config.Market.BaseURL,
		},
		"ai": map[string]interface{}{
			"claude_configured": claudeKey != "",
			"gemini_configured": geminiKey != "",
			"default_provider":  string(h.config.LLM.DefaultProvider),
			"fallback_only":     claudeKey == "" && geminiKey == "",
		},
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"version":     common.GetVersion(),
		"environment": h.config.Environment,
		"components":  components,
		"checked_at":  time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
