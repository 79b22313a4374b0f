package interpreter

import (
	"errors"
	"testing"

	"github.com/emojilens/backend/internal/model/interpretation"
)

func TestParseGenerationPayload(t *testing.T) {
	content := `{
		"interpretation": "They sound genuinely excited about the plan.",
		"metrics": {"sarcasmProbability": 12, "passiveAggressionProbability": 3, "overallTone": "positive", "confidence": 88},
		"redFlags": []
	}`

	payload, err := parseGenerationPayload(content)
	if err != nil {
		t.Fatalf("parseGenerationPayload: %v", err)
	}
	if payload.Interpretation == "" {
		t.Fatal("expected interpretation text")
	}
	if payload.Metrics.OverallTone != interpretation.TonePositive {
		t.Fatalf("overall tone = %s, want positive", payload.Metrics.OverallTone)
	}
	if payload.Metrics.Confidence != 88 {
		t.Fatalf("confidence = %d, want 88", payload.Metrics.Confidence)
	}
}

func TestParseGenerationPayloadStripsCodeFences(t *testing.T) {
	content := "```json\n{\"interpretation\": \"Reads as a friendly check-in.\", \"metrics\": {\"overallTone\": \"neutral\"}}\n```"

	payload, err := parseGenerationPayload(content)
	if err != nil {
		t.Fatalf("parseGenerationPayload: %v", err)
	}
	if payload.Interpretation != "Reads as a friendly check-in." {
		t.Fatalf("unexpected interpretation: %q", payload.Interpretation)
	}
}

func TestParseGenerationPayloadClampsScores(t *testing.T) {
	content := `{"interpretation": "ok", "metrics": {"sarcasmProbability": 150, "passiveAggressionProbability": -20, "overallTone": "neutral", "confidence": 101}}`

	payload, err := parseGenerationPayload(content)
	if err != nil {
		t.Fatalf("parseGenerationPayload: %v", err)
	}
	m := payload.Metrics
	if m.SarcasmProbability != 100 || m.PassiveAggressionProbability != 0 || m.Confidence != 100 {
		t.Fatalf("scores not clamped: %+v", m)
	}
}

func TestParseGenerationPayloadRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"not json", "the sender seems happy"},
		{"missing interpretation", `{"metrics": {"overallTone": "neutral"}}`},
		{"unknown tone", `{"interpretation": "ok", "metrics": {"overallTone": "ecstatic"}}`},
		{"unknown severity", `{"interpretation": "ok", "metrics": {"overallTone": "neutral"}, "redFlags": [{"severity": "critical", "description": "x"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseGenerationPayload(tc.content)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestParseTrailer(t *testing.T) {
	trailer := `{"metrics": {"sarcasmProbability": 70, "passiveAggressionProbability": 10, "overallTone": "negative", "confidence": 65}, "redFlags": [{"severity": "low", "description": "Likely sarcasm."}]}`

	payload, err := parseTrailer(trailer)
	if err != nil {
		t.Fatalf("parseTrailer: %v", err)
	}
	if payload.Metrics.SarcasmProbability != 70 {
		t.Fatalf("sarcasm = %d, want 70", payload.Metrics.SarcasmProbability)
	}
	if len(payload.RedFlags) != 1 || payload.RedFlags[0].Severity != interpretation.SeverityLow {
		t.Fatalf("unexpected red flags: %+v", payload.RedFlags)
	}
}

func TestParseTrailerRejectsGarbage(t *testing.T) {
	if _, err := parseTrailer("not a json object"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestMarkerPrefixLen(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"plain prose with no marker", 0},
		{"prose ending in <", 1},
		{"prose ending in <<<me", 5},
		{"prose ending in <<<metrics>>", len(MetricsMarker) - 1},
		{"<<", 2},
		{"", 0},
	}

	for _, tc := range cases {
		if got := markerPrefixLen(tc.text); got != tc.want {
			t.Fatalf("markerPrefixLen(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
