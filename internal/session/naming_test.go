package session

import (
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Anna Lee", "anna_lee"},
		{"diacritics", "Nguyễn Văn Đức", "nguyen_van_duc"},
		{"punctuation runs", "  --Dr. O'Brien!!  ", "dr_o_brien"},
		{"empty", "", "user"},
		{"only symbols", "@@@", "user"},
		{"digits kept", "Agent 007", "agent_007"},
		{"long", strings.Repeat("ab ", 30), "ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_ab_a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) > maxNameLen {
				t.Errorf("Sanitize(%q) length %d exceeds %d", tt.input, len(got), maxNameLen)
			}
			if again := Sanitize(got); again != got {
				t.Errorf("Sanitize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeNoTrailingUnderscoreAfterTruncate(t *testing.T) {
	name := strings.Repeat("a", 39) + " b"
	got := Sanitize(name)
	if strings.HasSuffix(got, "_") {
		t.Errorf("Sanitize(%q) = %q, ends with underscore", name, got)
	}
}

func TestFolderName(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	ts := time.Date(2025, 3, 9, 14, 5, 0, 0, loc)

	got := FolderName(ts, "Anna Lee")
	if got != "09_03_2025_14_05_anna_lee" {
		t.Errorf("FolderName() = %q", got)
	}
}
