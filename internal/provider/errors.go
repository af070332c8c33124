package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/seenimoa/stockdash/internal/infra"
)

// Source error kinds. Every fetcher error matches exactly one of these
// under errors.Is.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSourceRateLimited = errors.New("source rate limited")
	ErrSourceMalformed   = errors.New("source payload malformed")
	ErrNoDataFound       = errors.New("no data found")
)

var kinds = []error{ErrSourceRateLimited, ErrSourceMalformed, ErrNoDataFound, ErrSourceUnavailable}

// SourceError is a classified vendor failure.
type SourceError struct {
	Vendor string
	Model  ModelType
	Symbol string
	Kind   error // one of the Err* kinds above
	Err    error // underlying cause, may be nil
}

func (e *SourceError) Error() string {
	var b strings.Builder
	if e.Vendor != "" {
		b.WriteString(e.Vendor)
	}
	if e.Model != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(e.Model))
	}
	if e.Symbol != "" {
		b.WriteString(" " + e.Symbol)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Malformed reports a payload that does not have the expected shape.
func Malformed(format string, args ...any) error {
	return &SourceError{Kind: ErrSourceMalformed, Err: fmt.Errorf(format, args...)}
}

// RateLimited reports vendor throttling signalled in a 200 response body.
func RateLimited(format string, args ...any) error {
	return &SourceError{Kind: ErrSourceRateLimited, Err: fmt.Errorf(format, args...)}
}

// NoData reports a valid but empty result.
func NoData(format string, args ...any) error {
	return &SourceError{Kind: ErrNoDataFound, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the source error kind err matches, or nil.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsNoData reports whether err is a NoDataFound outcome.
func IsNoData(err error) bool { return errors.Is(err, ErrNoDataFound) }

// Classify maps a raw fetch error into the source error taxonomy and tags it
// with the vendor, model and symbol. Already-classified errors keep their
// kind.
func Classify(vendor string, model ModelType, symbol string, err error) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		out := *se
		if out.Vendor == "" {
			out.Vendor = vendor
		}
		if out.Model == "" {
			out.Model = model
		}
		if out.Symbol == "" {
			out.Symbol = symbol
		}
		return &out
	}
	return &SourceError{Vendor: vendor, Model: model, Symbol: symbol, Kind: kindFor(err), Err: err}
}

func kindFor(err error) error {
	var herr *infra.HTTPError
	if errors.As(err, &herr) {
		switch herr.StatusCode {
		case http.StatusTooManyRequests, http.StatusForbidden:
			return ErrSourceRateLimited
		case http.StatusNotFound:
			return ErrNoDataFound
		}
		return ErrSourceUnavailable
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrSourceMalformed
	}
	return ErrSourceUnavailable
}
