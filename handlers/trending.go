package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"truevail/cache"
	"truevail/models"
	"truevail/services"
)

type TrendingHandler struct {
	backend *services.BackendClient
}

func NewTrendingHandler(backend *services.BackendClient) *TrendingHandler {
	return &TrendingHandler{backend: backend}
}

// Get — GET /api/trending-news: проксирует бэкенд, ответ отдаётся
// без изменений. Кэш в Redis на 5 минут (если Redis настроен).
func (h *TrendingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if cached, err := cache.Get(cache.TrendingKey); err == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.Write([]byte(cached))
		return
	}

	raw, err := h.backend.TrendingNews()
	if err != nil {
		log.Printf("[TRENDING] ❌ Бэкенд недоступен: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": services.TransportMessage(h.backend.BaseURL, err),
		})
		return
	}

	var parsed models.TrendingResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		log.Printf("[TRENDING] ✓ Получено новостей: %d (status=%s)", len(parsed.TrendingNews), parsed.Status)
	}

	if err := cache.Set(cache.TrendingKey, string(raw), cache.TrendingTTL); err != nil {
		log.Printf("[TRENDING] ⚠ Ошибка записи в кэш: %v", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.Write(raw)
}
