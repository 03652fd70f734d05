package compliance

import (
	"testing"
	"time"
)

func TestQuietHoursOvernightWindow(t *testing.T) {
	q, err := ParseQuietHours("21:00", "07:30", "UTC")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tests := []struct {
		ts   string
		want bool
	}{
		{"2026-03-05T22:00:00Z", true},
		{"2026-03-05T06:59:00Z", true},
		{"2026-03-05T08:00:00Z", false},
		{"2026-03-05T12:00:00Z", false},
	}
	for _, tc := range tests {
		ts, _ := time.Parse(time.RFC3339, tc.ts)
		if got := q.Suppress(ts); got != tc.want {
			t.Fatalf("Suppress(%s)=%v want %v", tc.ts, got, tc.want)
		}
	}
}

func TestQuietHoursSimpleWindow(t *testing.T) {
	q, err := ParseQuietHours("22:00", "23:00", "UTC")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ts, _ := time.Parse(time.RFC3339, "2026-03-05T22:30:00Z")
	if !q.Suppress(ts) {
		t.Fatalf("expected suppression")
	}
	ts, _ = time.Parse(time.RFC3339, "2026-03-05T21:30:00Z")
	if q.Suppress(ts) {
		t.Fatalf("expected no suppression")
	}
}

func TestParseQuietHoursValidationErrors(t *testing.T) {
	if _, err := ParseQuietHours("", "07:00", "UTC"); err == nil {
		t.Fatalf("expected error for empty start clock")
	}
	if _, err := ParseQuietHours("07:00", "08:00", "Mars/Phobos"); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
	if _, err := ParseQuietHours("bad", "08:00", "UTC"); err == nil {
		t.Fatalf("expected error for malformed start time")
	}
}

func TestQuietHoursZeroValueDisabled(t *testing.T) {
	var q QuietHours
	if q.Suppress(time.Now()) {
		t.Fatalf("zero quiet hours should be disabled")
	}
}
