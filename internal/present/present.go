// Package present renders pipeline tables for the terminal. Every function
// is pure: it formats what it is given and never fetches.
package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"
)

// NA is printed for null values.
const NA = "n/a"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// siSuffix maps SI prefixes to the suffixes used for money amounts.
var siSuffix = map[string]string{"": "", "k": "K", "M": "M", "G": "B", "T": "T", "P": "Q"}

// Money renders a dollar amount with a short-scale suffix, e.g. "$1.52B".
func Money(v null.Float) string {
	if !v.Valid {
		return NA
	}
	sign := ""
	f := v.Float64
	if f < 0 {
		sign, f = "-", -f
	}
	scaled, prefix := humanize.ComputeSI(f)
	suffix, ok := siSuffix[prefix]
	if !ok {
		return sign + "$" + humanize.CommafWithDigits(f, 2)
	}
	return fmt.Sprintf("%s$%.2f%s", sign, scaled, suffix)
}

// Count renders a whole quantity with thousands separators.
func Count(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return humanize.Comma(int64(v.Float64))
}

// Number renders a value with two decimals.
func Number(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return humanize.CommafWithDigits(v.Float64, 2)
}

// Price renders a price with two fixed decimals.
func Price(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

// Percent renders a signed percent, e.g. "-12.34%".
func Percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// Text renders a nullable string, truncated to width runes when width > 0.
func Text(v null.String, width int) string {
	if !v.Valid || v.String == "" {
		return NA
	}
	return truncate(v.String, width)
}

// Ago renders t relative to now, e.g. "3 hours ago".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return NA
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// NoData renders the explicit empty state for a table.
func NoData(what string) string {
	return mutedStyle.Render(fmt.Sprintf("No data for %s.", what))
}

func title(s string) string { return titleStyle.Render(s) }

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func change(v float64) string {
	s := Percent(v)
	if v < 0 {
		return lossStyle.Render(s)
	}
	return gainStyle.Render(s)
}

// signedScore renders a sentiment score with its sign and three decimals.
func signedScore(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return fmt.Sprintf("%+.3f", v.Float64)
}

// render builds a bordered table with a bold header row.
func render(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func join(parts ...string) string {
	return strings.Join(parts, "\n")
}
