package utils

import (
	"testing"
	"time"
)

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 18, 12, 0, 0, 0, ET)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("MarketOpenTime = %v, want 09:30", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 16:00", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday at 10:00 AM ET
	if !IsMarketOpenAt(time.Date(2026, 2, 18, 10, 0, 0, 0, ET)) {
		t.Error("Expected market to be open on Wednesday 10:00 AM")
	}
	// Saturday
	if IsMarketOpenAt(time.Date(2026, 2, 21, 10, 0, 0, 0, ET)) {
		t.Error("Expected market to be closed on Saturday")
	}
	// Before the open
	if IsMarketOpenAt(time.Date(2026, 2, 18, 9, 0, 0, 0, ET)) {
		t.Error("Expected market to be closed at 9:00 AM")
	}
	// At the close
	if IsMarketOpenAt(time.Date(2026, 2, 18, 16, 0, 0, 0, ET)) {
		t.Error("Expected market to be closed at 4:00 PM")
	}
	// Good Friday
	if IsMarketOpenAt(time.Date(2026, 4, 3, 11, 0, 0, 0, ET)) {
		t.Error("Expected market to be closed on Good Friday")
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 2, 21, 12, 0, 0, 0, ET), "CLOSED (Weekend)"},
		{time.Date(2026, 12, 25, 12, 0, 0, 0, ET), "CLOSED (Christmas Day)"},
		{time.Date(2026, 2, 18, 8, 0, 0, 0, ET), "PRE-MARKET"},
		{time.Date(2026, 2, 18, 12, 0, 0, 0, ET), "OPEN"},
		{time.Date(2026, 2, 18, 17, 0, 0, 0, ET), "CLOSED"},
	}
	for _, tt := range tests {
		if got := MarketStatusAt(tt.at); got != tt.want {
			t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestParseDaysAgo(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"5 days", 5},
		{"1 d", 1},
		{"1 month", 30},
		{"5 m", 150},
		{"12 y", 4380},
		{"1 year", 365},
		{"2 months", 60},
		{"2 Months", 0},
		{"5 Days", 0},
		{"5 widgets", 0},
		{"5days", 0},
		{"5  days", 0},
		{"five days", 0},
		{"", 0},
		{"-3 days", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDaysAgo(tt.input); got != tt.want {
				t.Errorf("ParseDaysAgo(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	days, err := ParseRange(" 6 months ")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if days != 180 {
		t.Errorf("days = %d, want 180", days)
	}

	_, err = ParseRange("5 widgets")
	if err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if !IsValidationError(err) {
		t.Errorf("expected *ValidationError, got %T", err)
	}
}

func TestTradingDays(t *testing.T) {
	tests := []struct{ in, want int }{
		{5, 5},
		{7, 5},
		{30, 22},
		{365, 261},
	}
	for _, tt := range tests {
		if got := TradingDays(tt.in); got != tt.want {
			t.Errorf("TradingDays(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatDateET(t *testing.T) {
	d, err := ParseDateET("2026-03-09")
	if err != nil {
		t.Fatalf("ParseDateET: %v", err)
	}
	if FormatDateET(d) != "2026-03-09" {
		t.Errorf("round trip = %s", FormatDateET(d))
	}
	if _, err := ParseDateET("03/09/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDaysBefore(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, ET)
	if got := DaysBefore(now, 30); got != "2026-03-01" {
		t.Errorf("DaysBefore = %s, want 2026-03-01", got)
	}
}
