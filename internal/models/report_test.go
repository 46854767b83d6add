package models

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"single word", "hello", 1},
		{"mixed whitespace", "  one   two\nthree\tfour  ", 4},
		{"punctuation sticks to words", "done, and done.", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.content); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestReportStatusValid(t *testing.T) {
	for _, s := range []ReportStatus{ReportStatusDraft, ReportStatusPublished, ReportStatusArchived} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []ReportStatus{"", "pending", "Draft", "DELETED"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestReportPriorityValid(t *testing.T) {
	for _, p := range []ReportPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	for _, p := range []ReportPriority{"", "asap", "High", "critical"} {
		if p.Valid() {
			t.Errorf("%q should be invalid", p)
		}
	}
}
