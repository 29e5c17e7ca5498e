package services

import (
	"encoding/json"
	"log"
	"strings"
	"sync/atomic"

	"truevail/models"
)

// CallSite — пять точек вызова дашборда. Каждая шлёт один и тот же
// POST /analyze, но со своей валидацией и своим шаблоном результата.
type CallSite string

const (
	SiteNews         CallSite = "news"
	SiteNewsLink     CallSite = "news-link"
	SiteNewsAdvanced CallSite = "news-advanced"
	SitePrivacy      CallSite = "privacy"
	SiteDeepfake     CallSite = "deepfake"
)

// backendType возвращает значение поля type для бэкенда.
func (s CallSite) backendType() string {
	switch s {
	case SiteNewsAdvanced:
		return models.TypeNewsAdvanced
	case SitePrivacy:
		return models.TypePrivacy
	case SiteDeepfake:
		return models.TypeDeepfake
	default:
		// news и news-link для бэкенда неразличимы
		return models.TypeNews
	}
}

// persistType — под каким типом запись уходит в историю.
// Advanced сохраняется как обычный news (так исторически сложилось в UI).
func (s CallSite) persistType() string {
	if s == SiteNewsAdvanced {
		return string(SiteNews)
	}
	return string(s)
}

func ValidCallSite(s string) bool {
	switch CallSite(s) {
	case SiteNews, SiteNewsLink, SiteNewsAdvanced, SitePrivacy, SiteDeepfake:
		return true
	}
	return false
}

// Submission — один пользовательский сабмит.
type Submission struct {
	Site      CallSite `json:"call_site"`
	Text      string   `json:"text"`
	FileName  string   `json:"file_name,omitempty"`
	ImageData string   `json:"image_data,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
}

// SourceRecorder обновляет репутацию источника после анализа по ссылке.
type SourceRecorder interface {
	UpsertSourceStats(source string, isFake bool, confidence float64) error
}

// AnalysisController превращает один сабмит в отрендеренный результат:
// ровно один запрос, без ретраев, без очередей. Persist и sources
// опциональны (nil в standalone режиме) и резолвятся один раз на старте.
type AnalysisController struct {
	backend *BackendClient
	persist PersistenceClient
	sources SourceRecorder

	seq      atomic.Uint64
	IsPaused atomic.Bool
}

func NewAnalysisController(backend *BackendClient, persist PersistenceClient, sources SourceRecorder) *AnalysisController {
	return &AnalysisController{
		backend: backend,
		persist: persist,
		sources: sources,
	}
}

// NextSeq выдаёт номер сабмита. Фронтенд отбрасывает ответы
// с устаревшим номером — поздний ответ не перетирает свежий.
func (c *AnalysisController) NextSeq() uint64 {
	return c.seq.Add(1)
}

// Submit: валидация → один POST → классификация → рендер → (опц.) сохранение.
func (c *AnalysisController) Submit(sub *Submission, session *models.Session) *Outcome {
	out := &Outcome{Seq: c.NextSeq()}

	// Валидация до любого сетевого вызова.
	// news и privacy намеренно отправляются даже пустыми.
	switch sub.Site {
	case SiteNewsLink:
		if strings.TrimSpace(sub.Text) == "" {
			out.Kind = KindPlaceholder
			out.HTML = RenderPlaceholder(PlaceholderLinkEmpty)
			return out
		}
	case SiteDeepfake:
		if sub.FileName == "" && sub.ImageData == "" {
			out.Kind = KindPlaceholder
			out.HTML = RenderPlaceholder(PlaceholderFileMissing)
			return out
		}
	case SiteNewsAdvanced:
		if strings.TrimSpace(sub.Text) == "" {
			out.Kind = KindValidation
			out.Message = ValidationAdvancedEmpty
			return out
		}
	}

	req := &models.AnalysisRequest{
		Text: sub.Text,
		Type: sub.Site.backendType(),
	}
	if sub.Site == SiteDeepfake {
		req.Text = sub.FileName
		req.ImageData = sub.ImageData
		req.MimeType = sub.MimeType
	}

	result, err := c.backend.Analyze(req)
	if err != nil {
		log.Printf("[CONTROLLER] ❌ Транспортная ошибка (%s): %v", sub.Site, err)
		out.Kind = KindTransport
		out.Message = TransportMessage(c.backend.BaseURL, err)
		out.HTML = RenderTransportError(c.backend.BaseURL, err)
		return out
	}

	out.Result = result

	if IsDegraded(result) {
		log.Printf("[CONTROLLER] ⚠ Деградировавший ответ (%s): %s", sub.Site, result.Reason)
		out.Kind = KindDegraded
		out.HTML = RenderDegraded(sub.Site, result)
		return out
	}

	out.Kind = KindSuccess
	out.HTML = RenderResult(sub.Site, result)

	// Побочные эффекты после рендера: ни один из них не влияет на ответ.
	c.recordSource(sub, result)
	c.saveResult(sub, session, result)

	return out
}

// recordSource — репутация источника для анализов по ссылке.
func (c *AnalysisController) recordSource(sub *Submission, result *models.AnalysisResult) {
	if c.sources == nil || sub.Site != SiteNewsLink {
		return
	}
	source := NormalizeSource(sub.Text)
	if source == "" {
		return
	}
	isFake := strings.EqualFold(result.Status, "Fake")
	conf := 0.0
	if result.Confidence != nil {
		conf = result.Confidence.Float()
	}
	if err := c.sources.UpsertSourceStats(source, isFake, conf); err != nil {
		log.Printf("[SOURCES] ⚠ Ошибка обновления stats для %s: %v", source, err)
	} else {
		log.Printf("[SOURCES] ✓ Stats обновлены: %s fake=%v", source, isFake)
	}
}

// saveResult — fire-and-forget запись в историю: ошибка только
// логируется, рендер к этому моменту уже завершён.
func (c *AnalysisController) saveResult(sub *Submission, session *models.Session, result *models.AnalysisResult) {
	if c.persist == nil || session == nil {
		return
	}
	content := sub.Text
	if sub.Site == SiteDeepfake {
		content = sub.FileName
	}
	raw, err := json.Marshal(result)
	if err != nil {
		log.Printf("[HISTORY] ⚠ Ошибка сериализации результата: %v", err)
		return
	}
	go func() {
		if err := c.persist.SaveResult(session.UserID, sub.Site.persistType(), content, raw); err != nil {
			log.Printf("[HISTORY] ⚠ Ошибка сохранения результата: %v", err)
		}
	}()
}
