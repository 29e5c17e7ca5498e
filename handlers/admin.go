package handlers

import (
	"log"
	"net/http"

	"truevail/cache"
	"truevail/config"
	"truevail/database"
	"truevail/logger"
	"truevail/services"

	"github.com/gorilla/websocket"
)

type AdminHandler struct {
	cfg        *config.Config
	store      *database.Store
	controller *services.AnalysisController
}

func NewAdminHandler(cfg *config.Config, store *database.Store, controller *services.AnalysisController) *AdminHandler {
	return &AdminHandler{
		cfg:        cfg,
		store:      store,
		controller: controller,
	}
}

// AuthMiddleware проверяет токен администратора.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token != h.cfg.AdminToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Pause приостанавливает приём сабмитов (анализ отвечает 503).
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.controller.IsPaused.Store(true)
	log.Println("[ADMIN] ⏸ Приём анализов приостановлен администратором")
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.controller.IsPaused.Store(false)
	log.Println("[ADMIN] ▶ Приём анализов возобновлён администратором")
	w.WriteHeader(http.StatusOK)
}

// RefreshTrending принудительно сбрасывает кэш трендов:
// следующий запрос уйдёт в бэкенд, минуя 5-минутный TTL.
func (h *AdminHandler) RefreshTrending(w http.ResponseWriter, r *http.Request) {
	if err := cache.Delete(cache.TrendingKey); err != nil {
		log.Printf("[ADMIN] ⚠ Ошибка сброса кэша трендов: %v", err)
		writeError(w, http.StatusInternalServerError, "cache error")
		return
	}
	log.Println("[ADMIN] ♻ Кэш трендов сброшен администратором")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"is_paused": h.controller.IsPaused.Load(),
		"backend":   services.GetBackendStatus(),
	})
}

// GetStats — сводка по сохранённым результатам + топ источников.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		// Standalone: есть только состояние бэкенда
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"standalone": true,
			"backend":    services.GetBackendStatus(),
		})
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		log.Printf("[ADMIN] ❌ Ошибка чтения статистики: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sources, err := h.store.TopSources(10)
	if err != nil {
		log.Printf("[ADMIN] ⚠ Ошибка чтения источников: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"standalone":  false,
		"backend":     services.GetBackendStatus(),
		"results":     stats,
		"top_sources": sources,
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // админка живёт на том же хосте
	},
}

// StreamLogs — WebSocket поток логов: сначала бэклог, потом живые строки.
func (h *AdminHandler) StreamLogs(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token != h.cfg.AdminToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ADMIN] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for _, line := range logger.Instance.Recent() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}

	logsChan := logger.Instance.Subscribe()
	defer logger.Instance.Unsubscribe(logsChan)

	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case msg := <-logsChan:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
