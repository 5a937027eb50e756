package data

import "strings"

// stripCodeFence removes a markdown code fence the model may wrap
// around its JSON reply.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	parts := strings.SplitN(raw, "```", 3)
	if len(parts) < 2 {
		return raw
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// clampConfidence forces a model-reported confidence into [0, 1]
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
