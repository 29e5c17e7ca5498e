package handlers

import (
	"log"
	"net/http"

	"truevail/database"
)

type SourcesHandler struct {
	store *database.Store
}

func NewSourcesHandler(store *database.Store) *SourcesHandler {
	return &SourcesHandler{store: store}
}

// Top — GET /api/sources/top: самые проверяемые источники новостей.
func (h *SourcesHandler) Top(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"sources": []database.SourceStat{}})
		return
	}
	sources, err := h.store.TopSources(20)
	if err != nil {
		log.Printf("[SOURCES] ❌ Ошибка чтения: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sources == nil {
		sources = []database.SourceStat{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": sources})
}
