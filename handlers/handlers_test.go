package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"truevail/config"
	"truevail/models"
	"truevail/services"
)

// memPersist — хранилище в памяти для тестов хендлеров.
type memPersist struct {
	mu       sync.Mutex
	users    map[string]string // email → password
	userIDs  map[string]string // email → user id
	sessions map[string]*models.Session
	history  map[string][]models.HistoryItem
	nextID   int
}

func newMemPersist() *memPersist {
	return &memPersist{
		users:    map[string]string{},
		userIDs:  map[string]string{},
		sessions: map[string]*models.Session{},
		history:  map[string][]models.HistoryItem{},
	}
}

func (m *memPersist) CreateAccount(email, password string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, services.NewAuthError(services.AuthEmailAlreadyInUse, "This email is already registered.")
	}
	m.nextID++
	m.users[email] = password
	m.userIDs[email] = fmt.Sprintf("user-%d", m.nextID)
	return m.openSession(email), nil
}

func (m *memPersist) SignIn(email, password string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[email]
	if !ok {
		return nil, services.NewAuthError(services.AuthUserNotFound, "No account with this email.")
	}
	if stored != password {
		return nil, services.NewAuthError(services.AuthWrongPassword, "Incorrect password.")
	}
	return m.openSession(email), nil
}

func (m *memPersist) openSession(email string) *models.Session {
	m.nextID++
	s := &models.Session{
		Token:  fmt.Sprintf("tok-%d", m.nextID),
		UserID: m.userIDs[email],
		Email:  email,
	}
	m.sessions[s.Token] = s
	return s
}

func (m *memPersist) SignOut(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memPersist) SessionByToken(token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[token], nil
}

func (m *memPersist) OnAuthStateChange(cb services.AuthStateCallback) {}

func (m *memPersist) SaveResult(userID, analysisType, content string, result json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item := models.HistoryItem{
		ID:      fmt.Sprintf("res-%d", m.nextID),
		UserID:  userID,
		Type:    analysisType,
		Content: content,
		Result:  result,
	}
	// новые сверху, как отдаёт реальное хранилище
	m.history[userID] = append([]models.HistoryItem{item}, m.history[userID]...)
	return nil
}

func (m *memPersist) GetHistory(userID string) ([]models.HistoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.history[userID]
	if len(items) > 10 {
		items = items[:10]
	}
	return items, nil
}

func (m *memPersist) DeleteResult(userID, resultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.history[userID]
	for i, it := range items {
		if it.ID == resultID {
			m.history[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v (%s)", err, rec.Body.String())
	}
	return body
}

// --- auth ---

func TestRegisterStandalone(t *testing.T) {
	h := NewAuthHandler(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@b.c","password":"secret1"}`))
	h.Register(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "standalone") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRegisterEmptyCredentials(t *testing.T) {
	h := NewAuthHandler(newMemPersist())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"","password":""}`))
	h.Register(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please enter both email and password.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRegisterAndLogin(t *testing.T) {
	mp := newMemPersist()
	h := NewAuthHandler(mp)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@b.c","password":"secret1"}`))
	h.Register(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["token"] == "" || body["email"] != "a@b.c" {
		t.Errorf("register body = %v", body)
	}
	cookieSet := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" && c.HttpOnly {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("session cookie not set")
	}

	// Повторная регистрация того же email — 409 с кодом
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@b.c","password":"secret1"}`))
	h.Register(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != services.AuthEmailAlreadyInUse {
		t.Errorf("duplicate register body = %v", body)
	}

	// Вход с неверным паролем — 401
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"wrong"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"secret1"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeRoutesSessionState(t *testing.T) {
	mp := newMemPersist()
	session, _ := mp.CreateAccount("a@b.c", "secret1")
	h := NewAuthHandler(mp)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	h.Me(rec, req)
	if body := decodeBody(t, rec); body["signed_in"] != false {
		t.Errorf("anonymous me = %v", body)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.Me(rec, req)
	body := decodeBody(t, rec)
	if body["signed_in"] != true || body["email"] != "a@b.c" {
		t.Errorf("signed-in me = %v", body)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	mp := newMemPersist()
	session, _ := mp.CreateAccount("a@b.c", "secret1")
	h := NewAuthHandler(mp)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	if s, _ := mp.SessionByToken(session.Token); s != nil {
		t.Error("session survived logout")
	}
}

// --- history ---

func TestHistoryStandalone(t *testing.T) {
	h := NewHistoryHandler(nil)
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "requires authentication in full version") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHistoryRequiresSession(t *testing.T) {
	h := NewHistoryHandler(newMemPersist())
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHistoryListCapAndOrder(t *testing.T) {
	mp := newMemPersist()
	session, _ := mp.CreateAccount("a@b.c", "secret1")
	for i := 0; i < 12; i++ {
		mp.SaveResult(session.UserID, "news", fmt.Sprintf("claim %d", i), json.RawMessage(`{"status":"Fake"}`))
	}

	h := NewHistoryHandler(mp)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []models.HistoryItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 10 {
		t.Fatalf("items = %d, want 10", len(body.Items))
	}
	if body.Items[0].Content != "claim 11" {
		t.Errorf("newest first expected, got %q", body.Items[0].Content)
	}
}

func TestHistoryEmptyList(t *testing.T) {
	mp := newMemPersist()
	session, _ := mp.CreateAccount("a@b.c", "secret1")

	h := NewHistoryHandler(mp)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.List(rec, req)
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("empty history must be an empty array: %s", rec.Body.String())
	}
}

func TestHistoryDelete(t *testing.T) {
	mp := newMemPersist()
	session, _ := mp.CreateAccount("a@b.c", "secret1")
	mp.SaveResult(session.UserID, "news", "claim", json.RawMessage(`{}`))
	items, _ := mp.GetHistory(session.UserID)

	h := NewHistoryHandler(mp)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/history/"+items[0].ID, nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/history/"+items[0].ID, nil)
	req.Header.Set("X-Session-Token", session.Token)
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", rec.Code)
	}
}

// --- analyze ---

func newAnalyzeStack(t *testing.T, response string, persist services.PersistenceClient) (*AnalyzerHandler, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	controller := services.NewAnalysisController(services.NewBackendClient(srv.URL), persist, nil)
	return NewAnalyzerHandler(controller, persist, persist == nil), srv.Close
}

func TestAnalyzeSuccess(t *testing.T) {
	h, closeFn := newAnalyzeStack(t, `{"status":"Fake","confidence":0.87,"reason":"No credible source found"}`, nil)
	defer closeFn()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"call_site":"news","text":"claim"}`))
	h.Analyze(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["kind"] != "success" {
		t.Errorf("kind = %v", body["kind"])
	}
	if html, _ := body["html"].(string); !strings.Contains(html, "87.0%") {
		t.Errorf("html = %v", body["html"])
	}
}

func TestAnalyzeUnknownCallSite(t *testing.T) {
	h, closeFn := newAnalyzeStack(t, `{}`, nil)
	defer closeFn()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"call_site":"nonsense","text":"x"}`))
	h.Analyze(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	h, closeFn := newAnalyzeStack(t, `{}`, nil)
	defer closeFn()

	rec := httptest.NewRecorder()
	h.Analyze(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzePaused(t *testing.T) {
	h, closeFn := newAnalyzeStack(t, `{}`, nil)
	defer closeFn()
	h.controller.IsPaused.Store(true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"call_site":"news","text":"x"}`))
	h.Analyze(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "temporarily paused") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzePlaceholderWithoutBackend(t *testing.T) {
	// Бэкенд вообще не поднят: пустая ссылка не должна его трогать.
	controller := services.NewAnalysisController(services.NewBackendClient("http://127.0.0.1:1"), nil, nil)
	h := NewAnalyzerHandler(controller, nil, true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"call_site":"news-link","text":""}`))
	h.Analyze(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["kind"] != "placeholder" {
		t.Errorf("kind = %v", body["kind"])
	}
}

// --- share ---

// memShareStore — ShareStore в памяти для тестов.
type memShareStore struct {
	mu     sync.Mutex
	shares map[string]json.RawMessage
	nextID int
}

func newMemShareStore() *memShareStore {
	return &memShareStore{shares: map[string]json.RawMessage{}}
}

func (m *memShareStore) CreateShare(result json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("share-%d", m.nextID)
	m.shares[id] = result
	return id, nil
}

func (m *memShareStore) GetShare(id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.shares[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return raw, nil
}

func TestShareCreateAndGet(t *testing.T) {
	h := NewShareHandler(newMemShareStore(), "http://localhost:3000")
	payload := `{"status":"Fake","confidence":0.87,"reason":"No credible source found"}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/share", strings.NewReader(payload))
	h.Create(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create body = %v", body)
	}
	if url, _ := body["url"].(string); url != "http://localhost:3000/s/"+id {
		t.Errorf("share url = %q", url)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/share/"+id, nil)
	h.GetResult(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if rec.Body.String() != payload {
		t.Errorf("stored result must come back untouched: %s", rec.Body.String())
	}
}

func TestShareStandalone(t *testing.T) {
	h := NewShareHandler(nil, "http://localhost:3000")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/share", strings.NewReader(`{}`))
	h.Create(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/api/share/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestShareExpiredOrMissing(t *testing.T) {
	h := NewShareHandler(newMemShareStore(), "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.GetResult(rec, httptest.NewRequest(http.MethodGet, "/api/share/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "expired or does not exist") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

// --- admin ---

func newAdminHandler() *AdminHandler {
	cfg := &config.Config{AdminToken: "test-admin-token"}
	controller := services.NewAnalysisController(services.NewBackendClient("http://127.0.0.1:1"), nil, nil)
	return NewAdminHandler(cfg, nil, controller)
}

func TestAdminAuthMiddleware(t *testing.T) {
	h := newAdminHandler()
	called := false
	wrapped := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	wrapped(rec, httptest.NewRequest(http.MethodPost, "/api/admin/pause", nil))
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("no token: status = %d, called = %v", rec.Code, called)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/pause", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	wrapped(rec, req)
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("wrong token: status = %d, called = %v", rec.Code, called)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/pause", nil)
	req.Header.Set("X-Admin-Token", "test-admin-token")
	wrapped(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("valid token: status = %d, called = %v", rec.Code, called)
	}
}

func TestAdminPauseResume(t *testing.T) {
	h := newAdminHandler()

	rec := httptest.NewRecorder()
	h.Pause(rec, httptest.NewRequest(http.MethodPost, "/api/admin/pause", nil))
	if !h.controller.IsPaused.Load() {
		t.Fatal("pause did not set the flag")
	}

	rec = httptest.NewRecorder()
	h.Resume(rec, httptest.NewRequest(http.MethodPost, "/api/admin/resume", nil))
	if h.controller.IsPaused.Load() {
		t.Fatal("resume did not clear the flag")
	}
}

func TestAdminRefreshTrending(t *testing.T) {
	h := newAdminHandler()
	rec := httptest.NewRecorder()
	h.RefreshTrending(rec, httptest.NewRequest(http.MethodPost, "/api/admin/refresh-trending", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

// --- trending ---

func TestTrendingProxiesBackend(t *testing.T) {
	payload := `{"status":"success","trending_news":[{"title":"T1"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	h := NewTrendingHandler(services.NewBackendClient(srv.URL))
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/trending-news", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != payload {
		t.Errorf("payload must pass through untouched: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q", rec.Header().Get("X-Cache"))
	}
}

func TestTrendingBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	h := NewTrendingHandler(services.NewBackendClient(srv.URL))
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/trending-news", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "error" {
		t.Errorf("body = %v", body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "Please ensure the backend is running at "+srv.URL) {
		t.Errorf("message = %v", body["message"])
	}
}
