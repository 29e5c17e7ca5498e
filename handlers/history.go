package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"truevail/models"
	"truevail/services"
)

type HistoryHandler struct {
	persist services.PersistenceClient
}

func NewHistoryHandler(persist services.PersistenceClient) *HistoryHandler {
	return &HistoryHandler{persist: persist}
}

// List — GET /api/history: до 10 последних записей пользователя,
// новые сверху. Пустая история — пустой список, плейсхолдер
// "No analysis history found" рисует фронтенд.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	items, err := h.persist.GetHistory(session.UserID)
	if err != nil {
		log.Printf("[HISTORY] ❌ Ошибка чтения истории: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []models.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Delete — DELETE /api/history/{id}. Подтверждение (confirm-диалог)
// остаётся на стороне браузера.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	if err := h.persist.DeleteResult(session.UserID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("[HISTORY] ❌ Ошибка удаления %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Printf("[HISTORY] ✓ Удалена запись %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HistoryHandler) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	if h.persist == nil {
		writeError(w, http.StatusServiceUnavailable, "Analysis history requires authentication in full version")
		return nil
	}
	session := currentSession(h.persist, r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return session
}
