package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ET is the US exchange time zone (America/New_York).
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST if tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// NowET returns the current time in the exchange time zone.
func NowET() time.Time {
	return time.Now().In(ET)
}

// MarketOpenTime returns the regular-session open (9:30 AM ET) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the regular-session close (4:00 PM ET) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// IsMarketOpenAt checks if the US equity market would be open at the given time.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(ET)
	if !IsTradingDay(t) {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && t.Before(MarketCloseTime(t))
}

// IsTradingDay checks if the given date is a weekday that is not an exchange holiday.
func IsTradingDay(t time.Time) bool {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !IsTradingHoliday(t)
}

// IsTradingHoliday checks if the given date is a NYSE holiday.
// This list should be updated annually.
func IsTradingHoliday(t time.Time) bool {
	_, ok := nyseHolidays2026[t.In(ET).Format("2006-01-02")]
	return ok
}

// NYSE holidays for 2026 (update annually).
var nyseHolidays2026 = map[string]string{
	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Washington's Birthday",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving Day",
	"2026-12-25": "Christmas Day",
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowET())
}

// MarketStatusAt returns the market status at t.
func MarketStatusAt(now time.Time) string {
	now = now.In(ET)
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if name, ok := nyseHolidays2026[now.Format("2006-01-02")]; ok {
		return "CLOSED (" + name + ")"
	}
	switch {
	case now.Before(MarketOpenTime(now)):
		return "PRE-MARKET"
	case now.Before(MarketCloseTime(now)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}

// ParseDaysAgo converts free text such as "5 days", "1 month" or "12 y" into
// a number of calendar days. Quantity and unit must be separated by exactly
// one space; the unit is matched by its lowercase first letter (d=1, m=30,
// y=365), so "2 Months" is not a unit. Anything else yields 0.
func ParseDaysAgo(text string) int {
	parts := strings.Split(text, " ")
	if len(parts) != 2 || parts[1] == "" {
		return 0
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return 0
	}
	switch parts[1][0] {
	case 'd':
		return n
	case 'm':
		return n * 30
	case 'y':
		return n * 365
	}
	return 0
}

// ParseRange is ParseDaysAgo for request handling: a range that resolves to
// zero days is rejected instead of producing an empty window.
func ParseRange(text string) (int, error) {
	days := ParseDaysAgo(strings.TrimSpace(text))
	if days <= 0 {
		return 0, &ValidationError{
			Field:   "range",
			Value:   text,
			Message: `use "<number> <days|months|years>", e.g. "6 months"`,
		}
	}
	return days, nil
}

// TradingDays approximates the market-open days in a calendar window by
// removing two weekend days per full week.
func TradingDays(days int) int {
	return days - (days/7)*2
}

// ParseDateET parses a "2006-01-02" date in the exchange time zone.
func ParseDateET(date string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date, ET)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// FormatDateET formats t as "2006-01-02" in the exchange time zone.
func FormatDateET(t time.Time) string {
	return t.In(ET).Format("2006-01-02")
}

// DaysBefore returns the ET date string days calendar days before now.
func DaysBefore(now time.Time, days int) string {
	return FormatDateET(now.AddDate(0, 0, -days))
}
