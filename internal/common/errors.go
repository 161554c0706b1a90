package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error so callers can branch on it programmatically.
type Kind string

const (
	KindValidation             Kind = "VALIDATION"
	KindAuthorization          Kind = "AUTHORIZATION"
	KindAlreadyClaimed         Kind = "ALREADY_CLAIMED"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindNotFound               Kind = "NOT_FOUND"
	KindConflict               Kind = "CONFLICT"
	KindNotClaimable           Kind = "NOT_CLAIMABLE"
	KindUpstream               Kind = "UPSTREAM"
	KindUnauthenticated        Kind = "UNAUTHENTICATED"
	KindInternal               Kind = "INTERNAL"
)

// Error is the structured error returned by services and repositories.
// Metadata carries the ids relevant to the failure (vault, asset, beneficiary...).
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Metadata[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by kind. A target with a message additionally requires the same message,
// so errors.Is(err, ErrorNotFound) matches any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind sentinels. Use errors.Is to match these values.
var (
	ErrorValidation             = &Error{Kind: KindValidation}
	ErrorUnauthorized           = &Error{Kind: KindAuthorization}
	ErrorAlreadyClaimed         = &Error{Kind: KindAlreadyClaimed}
	ErrorConcurrentModification = &Error{Kind: KindConcurrentModification}
	ErrorNotFound               = &Error{Kind: KindNotFound}
	ErrorConflict               = &Error{Kind: KindConflict}
	ErrorNotClaimable           = &Error{Kind: KindNotClaimable}
	ErrorUpstream               = &Error{Kind: KindUpstream}
	ErrorInternal               = &Error{Kind: KindInternal}

	// Auth errors (invalid, malformed or expired tokens).
	ErrInvalidToken        = &Error{Kind: KindUnauthenticated, Message: "invalid token"}
	ErrTokenExpired        = &Error{Kind: KindUnauthenticated, Message: "token expired"}
	ErrRefreshTokenExpired = &Error{Kind: KindUnauthenticated, Message: "refresh token expired"}
)

// NewError builds a structured error. kv is a flat list of metadata key/value pairs.
func NewError(kind Kind, msg string, kv ...string) *Error {
	return &Error{Kind: kind, Message: msg, Metadata: pairs(kv)}
}

// Wrap builds a structured error around an underlying cause.
func Wrap(kind Kind, msg string, cause error, kv ...string) *Error {
	return &Error{Kind: kind, Message: msg, Metadata: pairs(kv), Cause: cause}
}

// Validation is shorthand for NewError(KindValidation, ...).
func Validation(msg string, kv ...string) *Error {
	return NewError(KindValidation, msg, kv...)
}

// NotFound reports an absent entity of the given type.
func NotFound(entity string, kv ...string) *Error {
	return NewError(KindNotFound, entity+" not found", kv...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func pairs(kv []string) map[string]string {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}
