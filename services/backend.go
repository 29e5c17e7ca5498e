package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"truevail/models"
)

// BackendClient — клиент внешнего аналитического бэкенда (порт 5001).
// Таймаут намеренно не задаётся: зависший бэкенд держит спиннер,
// повтор — только вручную со стороны пользователя.
type BackendClient struct {
	BaseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string) *BackendClient {
	return &BackendClient{
		BaseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Analyze выполняет ровно один POST /analyze. Без ретраев:
// любая ошибка терминальна для этого сабмита.
func (c *BackendClient) Analyze(req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка маршалинга запроса: %w", err)
	}

	log.Printf("[BACKEND] 📤 POST /analyze type=%s (%d символов)", req.Type, len(req.Text))
	start := time.Now()

	resp, err := c.httpClient.Post(c.BaseURL+"/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		RecordBackendFailure(err)
		return nil, err
	}
	defer resp.Body.Close()

	RecordBackendResponse(resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("некорректный JSON от бэкенда: %w", err)
	}

	log.Printf("[BACKEND] 📥 Ответ за %v: status=%q", time.Since(start), result.Status)
	return &result, nil
}

// TrendingNews выполняет GET /trending-news и возвращает сырой JSON —
// фронтенд получает его без изменений.
func (c *BackendClient) TrendingNews() (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.httpClient.Get(c.BaseURL + "/trending-news")
	if err != nil {
		RecordBackendFailure(err)
		return nil, err
	}
	defer resp.Body.Close()

	RecordBackendResponse(resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("некорректный JSON от бэкенда")
	}
	return json.RawMessage(raw), nil
}
