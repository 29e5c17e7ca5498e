package services

import (
	"testing"

	"truevail/models"
)

func conf(v float64) *models.Confidence {
	c := models.Confidence(v)
	return &c
}

func TestIsDegradedByStatus(t *testing.T) {
	result := &models.AnalysisResult{
		Status:     "Error",
		Confidence: conf(0.9),
		Reason:     "internal failure",
	}
	if !IsDegraded(result) {
		t.Fatal("status Error must classify as degraded regardless of other fields")
	}
}

func TestIsDegradedBySentinelSubstring(t *testing.T) {
	cases := []string{
		"could not fetch the article content",
		"Could Not Fetch URL",
		"backend COULD NOT FETCH remote page",
	}
	for _, reason := range cases {
		result := &models.AnalysisResult{Status: "Real", Reason: reason}
		if !IsDegraded(result) {
			t.Fatalf("reason %q must trigger degraded path even with normal status", reason)
		}
	}
}

func TestIsDegradedNormalResponse(t *testing.T) {
	result := &models.AnalysisResult{Status: "Fake", Reason: "No credible source found"}
	if IsDegraded(result) {
		t.Fatal("normal response misclassified as degraded")
	}
}

func TestIsDegradedNil(t *testing.T) {
	if IsDegraded(nil) {
		t.Fatal("nil result is not degraded")
	}
}

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		in   *models.Confidence
		want string
	}{
		{conf(0.87), "87.0%"},
		{conf(0.875), "87.5%"},
		{conf(1), "100.0%"},
		{conf(0), "0.0%"},
		{nil, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatConfidence(tt.in); got != tt.want {
			t.Errorf("FormatConfidence(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Fake", "fake"},
		{"Likely Deepfake", "likely-deepfake"},
		{"Real (verified)", "real-verified"},
		{"Likely Authentic", "likely-authentic"},
	}
	for _, tt := range tests {
		if got := StatusSlug(tt.in); got != tt.want {
			t.Errorf("StatusSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("first\nsecond\nthird"); got != "first" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine("single"); got != "single" {
		t.Errorf("FirstLine = %q", got)
	}
}
