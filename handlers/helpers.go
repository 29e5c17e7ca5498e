package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"truevail/models"
	"truevail/services"
)

const sessionCookie = "truevail_session"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sessionToken — токен из заголовка X-Session-Token или cookie.
func sessionToken(r *http.Request) string {
	if t := r.Header.Get("X-Session-Token"); t != "" {
		return t
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// currentSession возвращает сессию запроса, nil в standalone режиме,
// без токена или если токен не найден. Ошибка хранилища не валит
// запрос: анализ работает и без сессии.
func currentSession(persist services.PersistenceClient, r *http.Request) *models.Session {
	if persist == nil {
		return nil
	}
	token := sessionToken(r)
	if token == "" {
		return nil
	}
	session, err := persist.SessionByToken(token)
	if err != nil {
		log.Printf("[AUTH] ⚠ Ошибка проверки сессии: %v", err)
		return nil
	}
	return session
}
