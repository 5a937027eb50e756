package data

import (
	"strings"
	"testing"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

func TestFormatQueryInput_OmitsCleanerLineWhenUnset(t *testing.T) {
	query := &domain.CleanerQuery{
		RequestID:     "req-1",
		GuestName:     "Anna Keller",
		PropertyName:  "Seaside Flat",
		RequestType:   domain.IntentEarlyCheckin,
		OriginalTime:  "15:00",
		RequestedTime: "12:00",
		Date:          "2026-09-05",
		GuestMessage:  "Can we check in at noon?",
	}

	out := formatQueryInput(query)
	if strings.Contains(out, "Cleaner:") {
		t.Errorf("Expected no cleaner line without a name, got:\n%s", out)
	}
	if !strings.Contains(out, "Property: Seaside Flat") {
		t.Errorf("Expected property line, got:\n%s", out)
	}

	query.CleanerName = "Marie"
	out = formatQueryInput(query)
	if !strings.Contains(out, "Cleaner: Marie\n") {
		t.Errorf("Expected cleaner line with a name, got:\n%s", out)
	}
}
