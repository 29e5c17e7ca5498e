package database

import (
	"database/sql"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"truevail/models"
	"truevail/services"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// historyLimit — история отдаёт максимум 10 последних записей.
const historyLimit = 10

// Store — Postgres-реализация services.PersistenceClient плюс
// шаринг результатов и статистика источников.
type Store struct {
	db *sql.DB

	mu        sync.Mutex
	callbacks []services.AuthStateCallback
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- Аккаунты ---

func (s *Store) CreateAccount(email, password string) (*models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return nil, services.NewAuthError(services.AuthInvalidEmail, "Invalid email format. Please enter a valid email.")
	}
	if len(password) < 6 {
		return nil, services.NewAuthError(services.AuthWeakPassword, "Password is too weak. Please use at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		userID, email, string(hash),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, services.NewAuthError(services.AuthEmailAlreadyInUse, "An account with this email already exists. Please try logging in instead.")
		}
		return nil, err
	}

	log.Printf("[AUTH] ✓ Зарегистрирован: %s", email)
	return s.openSession(userID, email)
}

func (s *Store) SignIn(email, password string) (*models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return nil, services.NewAuthError(services.AuthInvalidEmail, "Invalid email format. Please enter a valid email.")
	}

	var userID, hash string
	err := s.db.QueryRow(
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&userID, &hash)
	if err == sql.ErrNoRows {
		return nil, services.NewAuthError(services.AuthUserNotFound, "No account found with this email. Please register first.")
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, services.NewAuthError(services.AuthWrongPassword, "Incorrect password. Please try again.")
	}

	log.Printf("[AUTH] ✓ Вход: %s", email)
	return s.openSession(userID, email)
}

func (s *Store) SignOut(token string) error {
	session, err := s.SessionByToken(token)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return err
	}
	if session != nil {
		log.Printf("[AUTH] ✓ Выход: %s", session.Email)
		s.notify(session, false)
	}
	return nil
}

func (s *Store) SessionByToken(token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	session := &models.Session{Token: token}
	err := s.db.QueryRow(`
		SELECT s.user_id, u.email, s.created_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(&session.UserID, &session.Email, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) OnAuthStateChange(cb services.AuthStateCallback) {
	s.mu.Lock()
	s.callbacks = append(s.callbacks, cb)
	s.mu.Unlock()
}

func (s *Store) openSession(userID, email string) (*models.Session, error) {
	token := uuid.NewString()
	if _, err := s.db.Exec(
		`INSERT INTO sessions (token, user_id) VALUES ($1, $2)`, token, userID,
	); err != nil {
		return nil, err
	}
	session := &models.Session{Token: token, UserID: userID, Email: email}
	s.notify(session, true)
	return session, nil
}

func (s *Store) notify(session *models.Session, signedIn bool) {
	s.mu.Lock()
	cbs := make([]services.AuthStateCallback, len(s.callbacks))
	copy(cbs, s.callbacks)
	s.mu.Unlock()
	for _, cb := range cbs {
		cb(session, signedIn)
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// --- История анализов ---

func (s *Store) SaveResult(userID, analysisType, content string, result json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO analysis_results (id, user_id, type, content, result)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, analysisType, content, []byte(result))
	return err
}

func (s *Store) GetHistory(userID string) ([]models.HistoryItem, error) {
	rows, err := s.db.Query(`
		SELECT id, type, content, result, created_at
		FROM analysis_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.HistoryItem
	for rows.Next() {
		item := models.HistoryItem{UserID: userID}
		var result []byte
		if err := rows.Scan(&item.ID, &item.Type, &item.Content, &result, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Result = json.RawMessage(result)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) DeleteResult(userID, resultID string) error {
	res, err := s.db.Exec(
		`DELETE FROM analysis_results WHERE id = $1 AND user_id = $2`,
		resultID, userID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Шаринг результатов ---

func (s *Store) CreateShare(result json.RawMessage) (string, error) {
	id := uuid.NewString()[:8]
	_, err := s.db.Exec(
		`INSERT INTO shared_results (id, result) VALUES ($1, $2)`,
		id, []byte(result),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetShare(id string) (json.RawMessage, error) {
	var raw []byte
	err := s.db.QueryRow(
		`SELECT result FROM shared_results WHERE id = $1 AND expires_at > NOW()`,
		id,
	).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
