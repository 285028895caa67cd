package scorer

import "testing"

func TestParseRiskScoreLine(t *testing.T) {
	raw := "RISK_SCORE: 0.85\nREASONING: velocity anomaly\nRECOMMENDATION: block card"
	got := Parse(raw)
	if got.Risk != 0.85 {
		t.Fatalf("expected risk 0.85, got %v", got.Risk)
	}
	if got.Reasoning != "velocity anomaly" {
		t.Fatalf("unexpected reasoning: %q", got.Reasoning)
	}
	if got.Recommendation != "block card" {
		t.Fatalf("unexpected recommendation: %q", got.Recommendation)
	}
}

func TestParseKeywordFallback(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"This transaction looks highly suspicious and fraudulent.", 0.8},
		{"An unusual but not concerning pattern.", 0.6},
		{"A perfectly normal and legitimate purchase.", 0.2},
		{"No signal either way.", 0.5},
	}
	for _, tc := range cases {
		got := Parse(tc.text)
		if got.Risk != tc.want {
			t.Errorf("text=%q: expected risk %v, got %v", tc.text, tc.want, got.Risk)
		}
	}
}

func TestParseReasoningFallsBackToTruncatedRaw(t *testing.T) {
	raw := ""
	for i := 0; i < 50; i++ {
		raw += "0123456789"
	}
	got := Parse(raw)
	if len(got.Reasoning) != 201 {
		t.Fatalf("expected 200 chars + ellipsis, got %d chars: %q", len(got.Reasoning), got.Reasoning)
	}
	if got.Reasoning[200:] != "…" {
		t.Fatalf("expected trailing ellipsis, got %q", got.Reasoning[200:])
	}
}

func TestParseRecommendationDefaultsWhenAbsent(t *testing.T) {
	got := Parse("RISK_SCORE: 0.3\nREASONING: fine")
	if got.Recommendation != fallbackRecommendation {
		t.Fatalf("expected fallback recommendation, got %q", got.Recommendation)
	}
}

func TestParseRiskScoreClampedToUnitInterval(t *testing.T) {
	if got := Parse("RISK_SCORE: 1.5").Risk; got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := Parse("RISK_SCORE: -0.2").Risk; got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}
