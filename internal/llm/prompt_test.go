package llm

import (
	"strings"
	"testing"
	"time"
)

func TestSystemInstructionIncludesDateAndContext(t *testing.T) {
	today := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	got := SystemInstruction(today, `{"future":[]}`)
	if !strings.Contains(got, "2025-08-01") || !strings.Contains(got, "Friday") {
		t.Fatalf("missing date: %s", got)
	}
	if !strings.Contains(got, `"intent": "propose"`) {
		t.Fatalf("missing reply format")
	}
	if !strings.Contains(got, `{"future":[]}`) {
		t.Fatalf("missing context")
	}
}

func TestSystemInstructionWithoutContext(t *testing.T) {
	got := SystemInstruction(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "")
	if strings.Contains(got, "calendar context") {
		t.Fatalf("unexpected context section")
	}
}
