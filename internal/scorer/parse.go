// Package scorer implements the parsing contract and HTTP adapters for the
// opaque LLM scoring capability consumed by analyzers (spec.md §4.1).
package scorer

import (
	"strconv"
	"strings"

	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

const (
	riskScoreMarker      = "RISK_SCORE:"
	reasoningMarker      = "REASONING:"
	recommendationMarker = "RECOMMENDATION:"

	fallbackRecommendation = "Standard fraud review recommended"
	truncatedReasoningLen  = 200
)

// Parse implements spec.md §4.1's fixed rules exactly: a RISK_SCORE line
// takes priority, then keyword-class heuristics, then a flat 0.5 default.
// Reasoning and recommendation are extracted independently of how the risk
// score was determined.
func Parse(raw string) ports.ScoredResponse {
	return ports.ScoredResponse{
		RawText:        raw,
		Risk:           extractRisk(raw),
		Reasoning:      extractReasoning(raw),
		Recommendation: extractRecommendation(raw),
	}
}

func extractRisk(raw string) float64 {
	if line, ok := findMarkedLine(raw, riskScoreMarker); ok {
		if score, err := parseRiskToken(line); err == nil {
			return score
		}
	}
	return keywordRisk(raw)
}

// findMarkedLine returns the text following marker up to (and not
// including) the next newline, on whichever line begins with marker.
func findMarkedLine(raw, marker string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, marker)), true
		}
	}
	return "", false
}

func parseRiskToken(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return value, nil
}

func keywordRisk(raw string) float64 {
	lower := strings.ToLower(raw)
	switch {
	case containsAny(lower, "high risk", "fraudulent", "suspicious"):
		return 0.8
	case containsAny(lower, "medium risk", "unusual", "concerning"):
		return 0.6
	case containsAny(lower, "low risk", "normal", "legitimate"):
		return 0.2
	default:
		return 0.5
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func extractReasoning(raw string) string {
	start := strings.Index(raw, reasoningMarker)
	if start < 0 {
		return truncate(raw, truncatedReasoningLen) + "…"
	}
	body := raw[start+len(reasoningMarker):]
	if end := strings.Index(body, recommendationMarker); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func extractRecommendation(raw string) string {
	start := strings.Index(raw, recommendationMarker)
	if start < 0 {
		return fallbackRecommendation
	}
	return strings.TrimSpace(raw[start+len(recommendationMarker):])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
