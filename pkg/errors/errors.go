// Package errors defines the pricing engine error taxonomy.
//
// Every failure surfaced to callers carries a stable machine-readable Kind
// and a human-readable message. Kinds are part of the API contract: the
// quote layer maps them to HTTP statuses and clients branch on them.
package errors

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable error category.
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindNoRuleMatched       Kind = "NO_RULE_MATCHED"
	KindRateUnavailable     Kind = "RATE_UNAVAILABLE"
	KindInvalidRuleConfig   Kind = "INVALID_RULE_CONFIG"
	KindFeeExceedsAmount    Kind = "FEE_EXCEEDS_AMOUNT"
	KindInvalidAdjustedRate Kind = "INVALID_ADJUSTED_RATE"
	KindQuoteNotFound       Kind = "QUOTE_NOT_FOUND"
	KindQuoteNotActive      Kind = "QUOTE_NOT_ACTIVE"
	KindInternal            Kind = "INTERNAL"
)

// Error is a kinded error with optional structured details.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match any two errors of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// E constructs a kinded error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef constructs a kinded error with a formatted message.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured diagnostic data and returns the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// WithCause records the underlying error and returns the error.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// KindOf extracts the Kind of err, or KindInternal for unkinded errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinels for errors.Is checks against the common kinds.
var (
	ErrInvalidInput        = E(KindInvalidInput, "invalid input")
	ErrNoRuleMatched       = E(KindNoRuleMatched, "no pricing rule matched")
	ErrRateUnavailable     = E(KindRateUnavailable, "exchange rate not available")
	ErrInvalidRuleConfig   = E(KindInvalidRuleConfig, "invalid rule configuration")
	ErrFeeExceedsAmount    = E(KindFeeExceedsAmount, "fee exceeds amount")
	ErrInvalidAdjustedRate = E(KindInvalidAdjustedRate, "invalid adjusted rate")
	ErrQuoteNotFound       = E(KindQuoteNotFound, "quote not found")
	ErrQuoteNotActive      = E(KindQuoteNotActive, "quote is not active")
)

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
