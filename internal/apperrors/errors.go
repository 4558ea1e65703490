// Package apperrors implements the gateway's error taxonomy (spec §7).
// Handlers never return a raw exception; they return one of these typed
// errors or a plain error, and the dispatcher renders a user-visible
// envelope from the error's message as it is, without re-wrapping it.
package apperrors

import (
	"fmt"
	"net/url"
	"regexp"
)

// ValidationError signals a schema violation, unknown network, or a
// non-sibling network supplied to a sibling-only tool. User-visible verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError signals a missing transaction, contract, or pool entry.
// User-visible verbatim.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewNotFound builds a NotFoundError.
func NewNotFound(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// UpstreamError wraps an RPC transport, timeout, or decoding failure.
// The message is scrubbed of credentials before it is ever rendered.
type UpstreamError struct {
	Op  string
	Err error
}

var reCredentialBearing = regexp.MustCompile(`(?i)(bearer\s+\S+|[?&](?:token|key|jwt|secret)=[^&\s]+)`)

func (e *UpstreamError) Error() string {
	msg := e.Err.Error()
	msg = reCredentialBearing.ReplaceAllString(msg, "[redacted]")
	return fmt.Sprintf("upstream RPC error during %s: %s", e.Op, msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream wraps err as an UpstreamError for operation op, scrubbing any
// URL userinfo or query secrets first.
func NewUpstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: scrubURL(err)}
}

// scrubURL strips credentials that escaped into the error text by way of a
// *url.Error, since its String() includes the raw dialed URL.
func scrubURL(err error) error {
	if uerr, ok := err.(*url.Error); ok && uerr.URL != "" {
		if parsed, perr := url.Parse(uerr.URL); perr == nil && parsed.User != nil {
			parsed.User = url.UserPassword("redacted", "redacted")
			uerr.URL = parsed.String()
			return uerr
		}
	}
	return err
}

// LogicError signals an arithmetic precondition violation (divide-by-zero
// guard, empty sample). Analytics gathers degrade to zeroed results instead
// of propagating this; it is returned only where no best-effort fallback is
// documented.
type LogicError struct {
	Reason string
}

func (e *LogicError) Error() string { return e.Reason }

// NewLogic builds a LogicError.
func NewLogic(reason string) *LogicError {
	return &LogicError{Reason: reason}
}

// UnsupportedError signals a stubbed operation (USD pricing, full-history
// indexing, DeFi synthesis).
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by this gateway", e.Feature)
}

// NewUnsupported builds an UnsupportedError.
func NewUnsupported(feature string) *UnsupportedError {
	return &UnsupportedError{Feature: feature}
}
