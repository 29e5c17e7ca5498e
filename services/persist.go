package services

import (
	"encoding/json"
	"fmt"

	"truevail/models"
)

// Коды ошибок аккаунтов — те же, что отдаёт внешний auth-сервис.
const (
	AuthEmailAlreadyInUse  = "email-already-in-use"
	AuthInvalidEmail       = "invalid-email"
	AuthWeakPassword       = "weak-password"
	AuthUserNotFound       = "user-not-found"
	AuthWrongPassword      = "wrong-password"
	AuthInvalidCredentials = "invalid-credentials"
)

type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth/%s: %s", e.Code, e.Message)
}

func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// AuthStateCallback вызывается на каждом переходе сессии:
// signedIn=true после регистрации/входа, false после выхода.
type AuthStateCallback func(session *models.Session, signedIn bool)

// PersistenceClient — узкий интерфейс внешнего auth/storage коллаборатора.
// nil означает standalone режим: история и аккаунты недоступны,
// сохранение результатов молча пропускается. Возможность резолвится
// один раз на старте, а не проверяется точечно по месту.
type PersistenceClient interface {
	CreateAccount(email, password string) (*models.Session, error)
	SignIn(email, password string) (*models.Session, error)
	SignOut(token string) error
	SessionByToken(token string) (*models.Session, error)
	OnAuthStateChange(cb AuthStateCallback)

	SaveResult(userID, analysisType, content string, result json.RawMessage) error
	GetHistory(userID string) ([]models.HistoryItem, error)
	DeleteResult(userID, resultID string) error
}
