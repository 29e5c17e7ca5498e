package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"truevail/services"
)

type AnalyzerHandler struct {
	controller *services.AnalysisController
	persist    services.PersistenceClient
	standalone bool
}

func NewAnalyzerHandler(controller *services.AnalysisController, persist services.PersistenceClient, standalone bool) *AnalyzerHandler {
	return &AnalyzerHandler{
		controller: controller,
		persist:    persist,
		standalone: standalone,
	}
}

// Analyze — POST /api/analyze: один сабмит одной точки вызова.
// Ответ: {seq, kind, html, message?, result?}.
func (h *AnalyzerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	log.Printf("[HANDLER] 📥 Получен запрос: %s %s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.controller.IsPaused.Load() {
		writeError(w, http.StatusServiceUnavailable, "Analysis is temporarily paused for maintenance")
		return
	}

	var sub services.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !services.ValidCallSite(string(sub.Site)) {
		writeError(w, http.StatusBadRequest, "unknown call_site")
		return
	}

	session := currentSession(h.persist, r)
	out := h.controller.Submit(&sub, session)

	log.Printf("[HANDLER] ✅ %s → %s за %v (seq=%d)", sub.Site, out.Kind, time.Since(startTime), out.Seq)
	writeJSON(w, http.StatusOK, out)
}

// Health — GET /api/health: состояние сервиса и бэкенда.
func (h *AnalyzerHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"standalone": h.standalone,
		"paused":     h.controller.IsPaused.Load(),
		"backend":    services.GetBackendStatus(),
	})
}
