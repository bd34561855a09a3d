package goGate

import (
	"errors"
	"net/http"
	"time"
)

// ErrorCode defines a public type used by goGate APIs.
//
// ErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorCode string

const (
	// CodeConfigurationError is an exported constant or variable used by the gateway runtime.
	CodeConfigurationError ErrorCode = "configuration_error"
	// CodeTokenMalformed is an exported constant or variable used by the gateway runtime.
	CodeTokenMalformed ErrorCode = "token_malformed"
	// CodeSignatureInvalid is an exported constant or variable used by the gateway runtime.
	CodeSignatureInvalid ErrorCode = "signature_invalid"
	// CodeTokenExpired is an exported constant or variable used by the gateway runtime.
	CodeTokenExpired ErrorCode = "token_expired"
	// CodeRateLimitExceeded is an exported constant or variable used by the gateway runtime.
	CodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
	// CodeInternalError is an exported constant or variable used by the gateway runtime.
	CodeInternalError ErrorCode = "internal_error"
)

// ErrorEnvelope is the wire shape for every gateway-originated rejection.
// Detail never carries internal error text, only the fixed per-code phrase.
type ErrorEnvelope struct {
	Detail    string    `json:"detail"`
	ErrorCode ErrorCode `json:"error_code"`
	Timestamp string    `json:"timestamp"`
}

// EnvelopeFor translates err into the fixed error envelope. The timestamp is
// taken from now and rendered RFC 3339 UTC. Cache degradation never reaches
// this table: backend failures are absorbed before the boundary.
func EnvelopeFor(err error, now time.Time) ErrorEnvelope {
	code, detail := classify(err)
	return ErrorEnvelope{
		Detail:    detail,
		ErrorCode: code,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// StatusFor maps err to the HTTP status the boundary layer must emit.
func StatusFor(err error) int {
	switch code, _ := classify(err); code {
	case CodeTokenMalformed, CodeSignatureInvalid, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeConfigurationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func classify(err error) (ErrorCode, string) {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return CodeTokenMalformed, "session token is malformed"
	case errors.Is(err, ErrSignatureInvalid):
		return CodeSignatureInvalid, "session token signature is invalid"
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired, "session token has expired"
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimitExceeded, "rate limit exceeded"
	case errors.Is(err, ErrConfiguration):
		return CodeConfigurationError, "gateway misconfigured"
	default:
		return CodeInternalError, "internal error"
	}
}
