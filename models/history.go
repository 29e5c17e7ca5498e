package models

import (
	"encoding/json"
	"time"
)

// HistoryItem — одна сохранённая запись анализа пользователя.
// Result хранится как сырой JSON (JSONB в Postgres).
type HistoryItem struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// User — аккаунт; PasswordHash наружу не отдаём.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session — активная сессия (токен в заголовке X-Session-Token или cookie).
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
