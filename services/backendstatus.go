package services

import (
	"sync"
	"time"
)

// BackendStatus — последнее известное состояние аналитического бэкенда.
// Обновляется после каждого обращения, отдаётся в админке и /api/health.
type BackendStatus struct {
	Reachable     bool   `json:"reachable"`
	StatusCode    int    `json:"status_code"` // последний HTTP статус (0 — ещё не ходили)
	LastError     string `json:"last_error"`  // текст последней транспортной ошибки
	LastLatencyMs int64  `json:"last_latency_ms"`
	UpdatedAt     int64  `json:"updated_at"` // unix ms
	TotalOk       int64  `json:"total_ok"`
	TotalFailed   int64  `json:"total_failed"`
}

var (
	bsMu     sync.RWMutex
	bsStatus BackendStatus
)

// RecordBackendResponse фиксирует успешный обмен с бэкендом.
func RecordBackendResponse(statusCode int, latency time.Duration) {
	bsMu.Lock()
	bsStatus.Reachable = true
	bsStatus.StatusCode = statusCode
	bsStatus.LastError = ""
	bsStatus.LastLatencyMs = latency.Milliseconds()
	bsStatus.UpdatedAt = time.Now().UnixMilli()
	bsStatus.TotalOk++
	bsMu.Unlock()
}

// RecordBackendFailure фиксирует транспортную ошибку.
func RecordBackendFailure(err error) {
	bsMu.Lock()
	bsStatus.Reachable = false
	bsStatus.StatusCode = 0
	if err != nil {
		bsStatus.LastError = err.Error()
	}
	bsStatus.UpdatedAt = time.Now().UnixMilli()
	bsStatus.TotalFailed++
	bsMu.Unlock()
}

// GetBackendStatus возвращает копию текущего состояния.
func GetBackendStatus() BackendStatus {
	bsMu.RLock()
	defer bsMu.RUnlock()
	return bsStatus
}
