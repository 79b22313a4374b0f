package tone

import (
	"testing"

	"github.com/emojilens/backend/internal/model/interpretation"
)

func TestScorePositiveMessageFavorsPlayfulAndMatching(t *testing.T) {
	metrics := interpretation.Metrics{
		SarcasmProbability:           10,
		PassiveAggressionProbability: 5,
		OverallTone:                  interpretation.TonePositive,
		Confidence:                   90,
	}

	suggestions := Score(metrics)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}

	rank := map[Kind]int{}
	for i, s := range suggestions {
		rank[s.Tone] = i
	}

	directRank, ok := rank[Direct]
	if !ok {
		// Direct outside the top 3 also satisfies the ordering requirement.
		directRank = len(suggestions)
	}
	if playfulRank, ok := rank[Playful]; !ok || playfulRank >= directRank {
		t.Fatalf("playful not ranked above direct: %v", suggestions)
	}
	if matchingRank, ok := rank[Matching]; !ok || matchingRank >= directRank {
		t.Fatalf("matching not ranked above direct: %v", suggestions)
	}
}

func TestScorePassiveAggressiveNegativeIncludesDirectAndClarifying(t *testing.T) {
	metrics := interpretation.Metrics{
		SarcasmProbability:           30,
		PassiveAggressionProbability: 80,
		OverallTone:                  interpretation.ToneNegative,
		Confidence:                   75,
	}

	suggestions := Score(metrics)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}

	seen := map[Kind]bool{}
	for _, s := range suggestions {
		seen[s.Tone] = true
	}
	if !seen[Direct] || !seen[Clarifying] {
		t.Fatalf("expected direct and clarifying in top 3, got %v", suggestions)
	}
	if suggestions[0].Tone != Clarifying {
		t.Fatalf("expected clarifying first, got %s", suggestions[0].Tone)
	}
}

func TestScoreTieBreaksByDeclarationOrder(t *testing.T) {
	// Positive with no other signals leaves direct and clarifying tied at the
	// base weight; direct is declared first and must win the third slot.
	metrics := interpretation.Metrics{
		OverallTone: interpretation.TonePositive,
		Confidence:  90,
	}

	suggestions := Score(metrics)
	if suggestions[2].Tone != Direct {
		t.Fatalf("expected direct in third slot, got %s", suggestions[2].Tone)
	}
}

func TestScoreOrderedByConfidenceDescending(t *testing.T) {
	metrics := interpretation.Metrics{
		SarcasmProbability:           60,
		PassiveAggressionProbability: 60,
		OverallTone:                  interpretation.ToneNegative,
		Confidence:                   40,
	}

	suggestions := Score(metrics)
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Confidence > suggestions[i-1].Confidence {
			t.Fatalf("suggestions not sorted by confidence: %v", suggestions)
		}
	}
	for _, s := range suggestions {
		if s.Reasoning == "" {
			t.Fatalf("missing reasoning for %s", s.Tone)
		}
		if len(s.Examples) == 0 {
			t.Fatalf("missing examples for %s", s.Tone)
		}
	}
}

func TestCalculateToneConfidence(t *testing.T) {
	if got := calculateToneConfidence(0, 0); got != 50 {
		t.Fatalf("confidence(0,0) = %d, want 50", got)
	}
	if got := calculateToneConfidence(100, 100); got != 100 {
		t.Fatalf("confidence(100,100) = %d, want 100", got)
	}
	for _, weight := range []int{0, 13, 50, 77, 100} {
		got := calculateToneConfidence(weight, 100)
		if got < 0 || got > 100 {
			t.Fatalf("confidence(%d,100) = %d out of range", weight, got)
		}
	}
}

func TestExamplesFallBackToNeutral(t *testing.T) {
	// Neutral tone kind only maps the neutral overall tone.
	examples := examplesFor(Neutral, interpretation.TonePositive)
	if len(examples) == 0 {
		t.Fatal("expected neutral fallback examples")
	}
}

func TestEstimateMetricsDeterministic(t *testing.T) {
	message := "Hey there! 👋 how are you?"
	first := EstimateMetrics(message)
	second := EstimateMetrics(message)
	if first != second {
		t.Fatalf("estimator not deterministic: %+v vs %+v", first, second)
	}
	if first.OverallTone != interpretation.TonePositive {
		t.Fatalf("expected positive tone for friendly greeting, got %s", first.OverallTone)
	}
}

func TestEstimateMetricsFlagsPassiveAggression(t *testing.T) {
	metrics := EstimateMetrics("fine. whatever you want... 🙄")
	if metrics.PassiveAggressionProbability <= 50 {
		t.Fatalf("passive aggression = %d, want > 50", metrics.PassiveAggressionProbability)
	}
	if metrics.SarcasmProbability <= 0 {
		t.Fatalf("sarcasm = %d, want > 0", metrics.SarcasmProbability)
	}
}
