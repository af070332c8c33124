// Package normalize turns raw vendor records into the canonical rows of
// pkg/models. Every function here is pure: no I/O, no logging, and the same
// input always yields the same output.
package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// nullTokens are the vendor spellings of "no value".
var nullTokens = map[string]bool{
	"":     true,
	"None": true,
	"none": true,
	"null": true,
	"N/A":  true,
	"NaN":  true,
	"-":    true,
	"--":   true,
}

// Flatten returns a copy of rec with nested objects lifted to dotted keys.
// Yahoo-style {"raw": x, "fmt": "..."} objects collapse to x and empty
// objects become nil. Arrays are kept as they are.
func Flatten(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	flattenInto(out, "", rec)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		obj, ok := v.(map[string]any)
		switch {
		case !ok:
			out[key] = v
		case len(obj) == 0:
			out[key] = nil
		default:
			if raw, ok := obj["raw"]; ok {
				out[key] = raw
				continue
			}
			flattenInto(out, key, obj)
		}
	}
}

// Float coerces a vendor value to a nullable float. Numeric strings are
// accepted, including forms like "(-12.5%)" and "+3.1"; anything else,
// NaN and infinities included, is null.
func Float(v any) null.Float {
	var f float64
	switch x := v.(type) {
	case nil:
		return null.Float{}
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return null.Float{}
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		if nullTokens[s] {
			return null.Float{}
		}
		s = strings.Trim(s, "()%+")
		s = strings.ReplaceAll(s, ",", "")
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return null.Float{}
		}
		f = n
	default:
		return null.Float{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// String coerces a vendor value to a nullable trimmed string.
func String(v any) null.String {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if nullTokens[s] {
			return null.String{}
		}
		return null.StringFrom(s)
	case json.Number:
		return null.StringFrom(x.String())
	case float64:
		return null.StringFrom(strconv.FormatFloat(x, 'f', -1, 64))
	case int64:
		return null.StringFrom(strconv.FormatInt(x, 10))
	case int:
		return null.StringFrom(strconv.Itoa(x))
	case bool:
		return null.StringFrom(strconv.FormatBool(x))
	}
	return null.String{}
}

// timeLayouts are the date and timestamp spellings seen across vendors.
var timeLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102T150405",
	"20060102T1504",
	"01/02/2006",
	"1/2/2006",
}

// parseTime parses v as a Unix-seconds number or one of timeLayouts.
// Zone-less strings are read in loc.
func parseTime(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case int64:
		return time.Unix(x, 0), true
	case float64:
		return time.Unix(int64(x), 0), true
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(int64(n), 0), true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Date coerces v to the canonical YYYY-MM-DD date in the exchange time
// zone. Unparseable values yield "".
func Date(v any) string {
	t, ok := parseTime(v, utils.ET)
	if !ok {
		return ""
	}
	return utils.FormatDateET(t)
}

// Time coerces v to a UTC instant. Zone-less timestamps are read as UTC.
func Time(v any) (time.Time, bool) {
	t, ok := parseTime(v, time.UTC)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// first returns the first key of rec that carries a non-nil value.
func first(rec map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// symbolOf reads and normalizes a record's symbol field.
func symbolOf(rec map[string]any, keys ...string) string {
	if len(keys) == 0 {
		keys = []string{"symbol"}
	}
	s := String(first(rec, keys...))
	return utils.NormalizeSymbol(s.ValueOrZero())
}

// stringSlice converts a JSON array of strings, skipping other elements.
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s := String(e); s.Valid {
			out = append(out, s.String)
		}
	}
	return out
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CleanText strips HTML markup and collapses whitespace.
func CleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
