package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"truevail/models"
	"truevail/services"
)

type AuthHandler struct {
	persist services.PersistenceClient
}

func NewAuthHandler(persist services.PersistenceClient) *AuthHandler {
	return &AuthHandler{persist: persist}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register — POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, func(c credentials) (*models.Session, error) {
		return h.persist.CreateAccount(c.Email, c.Password)
	})
}

// Login — POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, func(c credentials) (*models.Session, error) {
		return h.persist.SignIn(c.Email, c.Password)
	})
}

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request, fn func(credentials) (*models.Session, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.persist == nil {
		writeError(w, http.StatusServiceUnavailable, "Accounts are unavailable in standalone mode")
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Please enter both email and password.")
		return
	}

	session, err := fn(creds)
	if err != nil {
		var authErr *services.AuthError
		if errors.As(err, &authErr) {
			writeJSON(w, authStatus(authErr.Code), map[string]string{
				"code":  authErr.Code,
				"error": authErr.Message,
			})
			return
		}
		log.Printf("[AUTH] ❌ Внутренняя ошибка: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Токен и в cookie, и в теле: фронтенд работает с любым вариантом
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   session.Token,
		"user_id": session.UserID,
		"email":   session.Email,
	})
}

func authStatus(code string) int {
	switch code {
	case services.AuthEmailAlreadyInUse:
		return http.StatusConflict
	case services.AuthInvalidEmail, services.AuthWeakPassword:
		return http.StatusBadRequest
	default:
		return http.StatusUnauthorized
	}
}

// Logout — POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.persist != nil {
		if token := sessionToken(r); token != "" {
			if err := h.persist.SignOut(token); err != nil {
				log.Printf("[AUTH] ⚠ Ошибка выхода: %v", err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me — GET /api/auth/me: текущее состояние сессии. Фронтенд опрашивает
// его на загрузке страницы и маршрутизирует login ↔ dashboard
// (серверный аналог onAuthStateChange).
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := currentSession(h.persist, r)
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"signed_in": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"signed_in": true,
		"user_id":   session.UserID,
		"email":     session.Email,
	})
}
