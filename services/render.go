package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"truevail/models"
)

// Подстановки для отсутствующих полей ответа — бэкенд может
// прислать любое подмножество, рендер не должен падать.
const (
	placeholderStatus       = "Unknown"
	placeholderReason       = "No explanation provided"
	placeholderRisk         = "Unknown"
	placeholderRiskText     = "No privacy assessment available"
	placeholderAnalysis     = "Detailed analysis not available"
	placeholderTechnical    = "No technical details available"
	placeholderIndicators   = "No specific indicators provided"
	placeholderVerification = "Verify with multiple reliable sources"
	placeholderRawOutput    = "No raw output available"
	placeholderSourceInfo   = "Analysis information not available"
)

// Фиксированные тексты пустого ввода и валидации.
const (
	PlaceholderLinkEmpty     = "Please enter a URL to analyze."
	PlaceholderFileMissing   = "Please select a file to analyze."
	ValidationAdvancedEmpty  = "Please enter news content to analyze."
	DegradedContentMessage   = "Could not fetch the full content from the provided URL. Showing domain-level heuristics instead."
	DegradedDeepfakeMessage  = "Could not fetch the file content for deepfake analysis. Showing filename-based heuristic instead."
	TransportReachabilityFmt = "Error: Could not connect to backend (%s). Please ensure the backend is running at %s."
)

type renderData struct {
	Status             string
	StatusSlug         string
	Confidence         string
	Reason             string
	Correction         string
	PrivacyRisk        string
	RiskSlug           string
	PrivacyExplanation string
	Analysis           string
	SourceInfo         string

	Technical       string
	IndicatorsFound int
	FakeProbability string

	Indicators              string
	VerificationSuggestions string
	RawOutput               string
}

func newRenderData(r *models.AnalysisResult) renderData {
	d := renderData{
		Status:                  r.Status,
		Confidence:              FormatConfidence(r.Confidence),
		Reason:                  r.Reason,
		Correction:              r.CorrectionText(),
		PrivacyRisk:             r.PrivacyRisk,
		PrivacyExplanation:      r.PrivacyExplanation,
		Analysis:                r.Analysis,
		Technical:               placeholderTechnical,
		FakeProbability:         "N/A",
		Indicators:              r.Indicators,
		VerificationSuggestions: r.VerificationSuggestions,
		RawOutput:               r.RawOutput,
	}
	if d.Status == "" {
		d.Status = placeholderStatus
	}
	if d.Reason == "" {
		d.Reason = placeholderReason
	}
	if d.PrivacyRisk == "" {
		d.PrivacyRisk = placeholderRisk
	}
	if d.PrivacyExplanation == "" {
		d.PrivacyExplanation = placeholderRiskText
	}
	if d.Analysis == "" {
		d.Analysis = placeholderAnalysis
	}
	if d.Indicators == "" {
		d.Indicators = placeholderIndicators
	}
	if d.VerificationSuggestions == "" {
		d.VerificationSuggestions = placeholderVerification
	}
	if d.RawOutput == "" {
		d.RawOutput = placeholderRawOutput
	}
	d.StatusSlug = StatusSlug(d.Status)
	d.RiskSlug = RiskSlug(d.PrivacyRisk)

	if r.Analysis != "" {
		d.SourceInfo = FirstLine(r.Analysis)
	} else if r.Reason != "" {
		d.SourceInfo = r.Reason
	} else {
		d.SourceInfo = placeholderSourceInfo
	}

	if det := r.AnalysisDetails; det != nil {
		if det.TechnicalAssessment != "" {
			d.Technical = det.TechnicalAssessment
		}
		d.IndicatorsFound = det.IndicatorsFound
		if det.FakeProbability != nil {
			d.FakeProbability = FormatConfidence(det.FakeProbability)
		}
	}
	return d
}

var fragments = template.Must(template.New("fragments").Parse(`
{{define "summary"}}<div class="result-summary">
  <div class="result-item"><span class="label">Status:</span> <span class="value status-{{.StatusSlug}}">{{.Status}}</span></div>
  <div class="result-item"><span class="label">Confidence:</span> <span class="value">{{.Confidence}}</span></div>
</div>{{end}}

{{define "privacy-block"}}<div class="detail-item">
  <h4>Privacy Risk</h4>
  <p class="risk-{{.RiskSlug}}">{{.PrivacyRisk}}</p>
  <p>{{.PrivacyExplanation}}</p>
</div>{{end}}

{{define "news"}}<div class="analysis-results">
{{template "summary" .}}
<div class="result-details">
  <div class="detail-item"><h4>Reasoning</h4><p>{{.Reason}}</p></div>
  {{if .Correction}}<div class="detail-item correction-suggestion"><h4>Correction Suggestion</h4><p>{{.Correction}}</p></div>{{end}}
  {{template "privacy-block" .}}
</div>
<div class="full-analysis"><h4>Full Analysis</h4><pre>{{.Analysis}}</pre></div>
</div>{{end}}

{{define "news-link"}}<div class="analysis-results">
{{template "summary" .}}
<div class="result-details">
  <div class="detail-item"><h4>Analysis Result</h4><p>{{.Reason}}</p></div>
  {{if .Correction}}<div class="detail-item correction-suggestion"><h4>Correct Information / Fact Check</h4><p>{{.Correction}}</p></div>{{end}}
  <div class="detail-item"><h4>Source Information</h4><p>{{.SourceInfo}}</p></div>
</div>
</div>{{end}}

{{define "news-advanced"}}<div class="analysis-results">
{{template "summary" .}}
<div class="result-details">
  <div class="detail-item"><h4>Reasoning</h4><p>{{.Reason}}</p></div>
  {{if .Correction}}<div class="detail-item correction-suggestion"><h4>Correction Suggestion</h4><p>{{.Correction}}</p></div>{{end}}
  {{template "privacy-block" .}}
</div>
</div>
<div class="structured-result">
<h4>Advanced Analysis Breakdown</h4>
<div class="structured-content">
  <div class="structured-section"><h5>Claims Verification</h5>
    <ul>
      <li><strong>Status:</strong> {{.Status}}</li>
      <li><strong>Confidence:</strong> {{.Confidence}}</li>
      <li><strong>Reasoning:</strong> {{.Reason}}</li>
    </ul>
  </div>
  <div class="structured-section"><h5>Indicators Analysis</h5><p>{{.Indicators}}</p></div>
  <div class="structured-section"><h5>Verification Suggestions</h5><p>{{.VerificationSuggestions}}</p></div>
  <div class="structured-section"><h5>Raw Model Output</h5><div class="raw-output"><pre>{{.RawOutput}}</pre></div></div>
  <div class="structured-section"><h5>Privacy Assessment</h5>
    <ul>
      <li><strong>Risk Level:</strong> {{.PrivacyRisk}}</li>
      <li><strong>Explanation:</strong> {{.PrivacyExplanation}}</li>
    </ul>
  </div>
  {{if .Correction}}<div class="structured-section"><h5>Correction &amp; Fact Check</h5><p>{{.Correction}}</p></div>{{end}}
</div>
</div>{{end}}

{{define "privacy"}}<div class="analysis-results">
<div class="result-summary">
  <div class="result-item"><span class="label">Privacy Risk:</span> <span class="value risk-{{.RiskSlug}}">{{.PrivacyRisk}}</span></div>
  <div class="result-item"><span class="label">Confidence:</span> <span class="value">{{.Confidence}}</span></div>
</div>
<div class="result-details">
  <div class="detail-item"><h4>Risk Assessment</h4><p>{{.PrivacyExplanation}}</p></div>
  <div class="detail-item"><h4>Content Status</h4><p class="status-{{.StatusSlug}}">{{.Status}}</p><p>{{.Reason}}</p></div>
  {{if .Correction}}<div class="detail-item correction-suggestion"><h4>Correction Suggestion</h4><p>{{.Correction}}</p></div>{{end}}
</div>
<div class="full-analysis"><h4>Full Analysis</h4><pre>{{.Analysis}}</pre></div>
</div>{{end}}

{{define "deepfake"}}<div class="analysis-results">
{{template "summary" .}}
<div class="result-details">
  <div class="detail-item"><h4>Analysis Details</h4><p>{{.Reason}}</p></div>
  <div class="detail-item"><h4>Technical Assessment</h4><p>{{.Technical}}</p></div>
  {{template "privacy-block" .}}
</div>
<div class="full-analysis"><h4>Full Analysis</h4><pre>Indicators Found: {{.IndicatorsFound}}
Fake Probability: {{.FakeProbability}}
Technical Notes: {{.Technical}}</pre></div>
</div>{{end}}

{{define "degraded"}}<p class="placeholder-text">{{.Message}}</p>{{if .Reason}}<p>{{.Reason}}</p>{{end}}{{end}}

{{define "placeholder"}}<p class="placeholder-text">{{.}}</p>{{end}}

{{define "transport"}}<p>{{.}}</p>{{end}}
`))

func renderFragment(name string, data interface{}) string {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		// Не должно случаться: шаблоны статические
		log.Printf("[RENDER] ❌ Ошибка рендера %s: %v", name, err)
		return "<p class='placeholder-text'>Rendering error</p>"
	}
	return buf.String()
}

// RenderResult — полный структурированный шаблон точки вызова.
func RenderResult(site CallSite, result *models.AnalysisResult) string {
	return renderFragment(string(site), newRenderData(result))
}

// RenderDegraded — смягчённое сообщение вместо полного шаблона.
func RenderDegraded(site CallSite, result *models.AnalysisResult) string {
	msg := DegradedContentMessage
	if site == SiteDeepfake {
		msg = DegradedDeepfakeMessage
	}
	reason := ""
	if result != nil {
		reason = result.Reason
	}
	return renderFragment("degraded", struct {
		Message string
		Reason  string
	}{msg, reason})
}

// RenderPlaceholder — фиксированный текст при пустом вводе.
func RenderPlaceholder(text string) string {
	return renderFragment("placeholder", text)
}

// RenderTransportError — диагностика с подсказкой о доступности бэкенда.
func RenderTransportError(origin string, err error) string {
	return renderFragment("transport", TransportMessage(origin, err))
}

// TransportMessage — текст ошибки транспорта: причина + подсказка.
func TransportMessage(origin string, err error) string {
	reason := "Unknown error"
	if err != nil {
		reason = err.Error()
	}
	return fmt.Sprintf(TransportReachabilityFmt, reason, origin)
}
