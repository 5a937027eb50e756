package domain

import "testing"

func TestCorrelationToken_RoundTrip(t *testing.T) {
	token := CorrelationToken("2f1c9a7e")
	if token != "[REQ-2f1c9a7e]" {
		t.Errorf("Unexpected token %q", token)
	}

	text := "Yes that works for me!\n\n" + token
	if got := ExtractCorrelationID(text); got != "2f1c9a7e" {
		t.Errorf("Expected 2f1c9a7e, got %q", got)
	}
}

func TestExtractCorrelationID_NoToken(t *testing.T) {
	if got := ExtractCorrelationID("sure, no problem"); got != "" {
		t.Errorf("Expected empty ID, got %q", got)
	}
}

func TestExtractCorrelationID_TokenMidText(t *testing.T) {
	text := "about [REQ-abc-123] yes before 13:00 only"
	if got := ExtractCorrelationID(text); got != "abc-123" {
		t.Errorf("Expected abc-123, got %q", got)
	}
}

func TestParseAnswer_RejectsUnknown(t *testing.T) {
	for _, valid := range []string{"yes", "no", "conditional", "unclear"} {
		if _, err := ParseAnswer(valid); err != nil {
			t.Errorf("Expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseAnswer("maybe"); err == nil {
		t.Error("Expected error for unknown answer")
	}
}
