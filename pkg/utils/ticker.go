// Package utils provides input parsing and validation shared by the CLI,
// the API and the pipeline.
package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxSymbolLen is the longest ticker symbol accepted.
const MaxSymbolLen = 5

// Validation messages shown to users.
const (
	MsgSymbolEmpty   = "Enter stock symbol"
	MsgSymbolLetters = "Letters only"
	MsgSymbolTooLong = "More than 5 characters"
)

// symbolRule is the validator tag for a ticker symbol. Share-class suffixes
// such as BRK.A are rejected.
const symbolRule = "required,alpha,max=5"

var validate = validator.New()

// ValidationError reports caller input that fails format rules.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeSymbol trims whitespace, drops a leading "$" and uppercases.
// Every join and cache lookup uses the normalized form.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	symbol = strings.TrimPrefix(symbol, "$")
	return strings.ToUpper(symbol)
}

// ValidateSymbol checks the raw user input (before normalization, so that
// surrounding whitespace still counts as invalid).
func ValidateSymbol(symbol string) error {
	err := validate.Var(symbol, symbolRule)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "symbol", Value: symbol, Message: err.Error()}
	}
	msg := MsgSymbolLetters
	switch fieldErrs[0].Tag() {
	case "required":
		msg = MsgSymbolEmpty
	case "max":
		msg = MsgSymbolTooLong
	}
	return &ValidationError{Field: "symbol", Value: symbol, Message: msg}
}

// CleanSymbol validates and normalizes in one step. Lowercase input is
// accepted and uppercased.
func CleanSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if err := ValidateSymbol(symbol); err != nil {
		return "", err
	}
	return NormalizeSymbol(symbol), nil
}

// DedupeSymbols normalizes symbols and drops blanks and repeats, keeping the
// first occurrence order.
func DedupeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ValidateStruct checks a request struct's `validate` tags and reports the
// first failing field as a *ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{
		Field:   strings.ToLower(fe.Field()),
		Value:   fmt.Sprint(fe.Value()),
		Message: fmt.Sprintf("failed %q rule %s", fe.Tag(), fe.Param()),
	}
}
