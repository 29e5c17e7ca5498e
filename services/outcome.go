package services

import (
	"regexp"
	"strconv"
	"strings"

	"truevail/models"
)

// Исход одного сабмита. Вместо исключений на сетевых ошибках —
// явный тип с вариантами.
const (
	KindSuccess     = "success"          // полный структурированный шаблон
	KindDegraded    = "degraded"         // бэкенд ответил, но не смог получить контент
	KindTransport   = "transport_error"  // запрос не прошёл / ответ не JSON
	KindPlaceholder = "placeholder"      // пустой ввод: запрос не отправлялся
	KindValidation  = "validation_error" // блокирующая валидация (advanced)
)

// Outcome — результат одного сабмита анализа. Seq монотонно растёт:
// фронтенд отбрасывает ответы, чей seq не последний выданный,
// чтобы поздний ответ не перетёр более свежий.
type Outcome struct {
	Seq     uint64                 `json:"seq"`
	Kind    string                 `json:"kind"`
	HTML    string                 `json:"html"`
	Message string                 `json:"message,omitempty"`
	Result  *models.AnalysisResult `json:"result,omitempty"`
}

// degradedSentinel — подстрока в reason, означающая, что бэкенд
// не смог получить контент (без учёта регистра).
const degradedSentinel = "could not fetch"

// IsDegraded: status == "Error" ИЛИ reason содержит сентинел.
// Проверяется на всех пяти точках вызова.
func IsDegraded(result *models.AnalysisResult) bool {
	if result == nil {
		return false
	}
	if result.Status == "Error" {
		return true
	}
	return strings.Contains(strings.ToLower(result.Reason), degradedSentinel)
}

// FormatConfidence — round(confidence*100, 1)% или "N/A", если поле отсутствует.
func FormatConfidence(c *models.Confidence) string {
	if c == nil {
		return "N/A"
	}
	return strconv.FormatFloat(c.Float()*100, 'f', 1, 64) + "%"
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// StatusSlug — CSS-класс из статуса: нижний регистр, пробелы в дефисы,
// всё лишнее вырезается ("Likely Deepfake" → "likely-deepfake").
func StatusSlug(status string) string {
	s := strings.ToLower(status)
	s = strings.ReplaceAll(s, " ", "-")
	return slugStrip.ReplaceAllString(s, "")
}

// RiskSlug — то же для privacy_risk ("Low" → "low").
func RiskSlug(risk string) string {
	return StatusSlug(risk)
}

// FirstLine — первая строка многострочного анализа (блок "Source Information").
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
