package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Тип анализа, который выбирает поведение бэкенда.
const (
	TypeNews         = "news"
	TypeNewsAdvanced = "news_advanced"
	TypePrivacy      = "privacy"
	TypeDeepfake     = "deepfake"
)

// AnalysisRequest — тело POST /analyze для внешнего бэкенда.
// Для deepfake текст содержит имя файла, а сам файл идёт как base64.
type AnalysisRequest struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	ImageData string `json:"image_data,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

// AnalysisResult — ответ бэкенда. Ни одно поле не гарантировано:
// деградировавший бэкенд может прислать любое подмножество.
type AnalysisResult struct {
	Status             string           `json:"status,omitempty"`
	Confidence         *Confidence      `json:"confidence,omitempty"`
	Reason             string           `json:"reason,omitempty"`
	Correction         string           `json:"correction,omitempty"`
	PrivacyRisk        string           `json:"privacy_risk,omitempty"`
	PrivacyExplanation string           `json:"privacy_explanation,omitempty"`
	Analysis           string           `json:"analysis,omitempty"`
	AnalysisDetails    *AnalysisDetails `json:"analysis_details,omitempty"`

	// Поля расширенного анализа (news_advanced)
	Indicators              string `json:"indicators,omitempty"`
	VerificationSuggestions string `json:"verification_suggestions,omitempty"`
	RawOutput               string `json:"raw_output,omitempty"`

	// Старый вариант фронтенда присылал correction_suggestion —
	// принимаем оба имени, отдаём только correction.
	CorrectionSuggestion string `json:"correction_suggestion,omitempty"`
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	type plain AnalysisResult
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	if r.Confidence != nil && math.IsNaN(r.Confidence.Float()) {
		r.Confidence = nil
	}
	return nil
}

// CorrectionText возвращает подсказку-исправление независимо от того,
// под каким из двух имён её прислал бэкенд.
func (r *AnalysisResult) CorrectionText() string {
	if r.Correction != "" {
		return r.Correction
	}
	return r.CorrectionSuggestion
}

type AnalysisDetails struct {
	TechnicalAssessment string      `json:"technical_assessment,omitempty"`
	IndicatorsFound     int         `json:"indicators_found,omitempty"`
	FakeProbability     *Confidence `json:"fake_probability,omitempty"`
}

func (d *AnalysisDetails) UnmarshalJSON(data []byte) error {
	type plain AnalysisDetails
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	if d.FakeProbability != nil && math.IsNaN(d.FakeProbability.Float()) {
		d.FakeProbability = nil
	}
	return nil
}

// Confidence принимает и число (0.87), и числовую строку ("0.87") —
// бэкенд присылает и то, и другое.
type Confidence float64

func (c *Confidence) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Нечисловое значение: помечаем NaN, родитель сбросит указатель
		// и поле отрендерится как отсутствующее ("N/A"), а не как 0.0%
		*c = Confidence(math.NaN())
		return nil
	}
	*c = Confidence(v)
	return nil
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(c))
}

func (c Confidence) Float() float64 { return float64(c) }
