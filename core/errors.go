package core

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindInvalidToken
	KindExpiredToken
	KindUnknownPersonnel
	KindConflict
	KindValidation
	KindDownstream
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidToken:
		return "invalid_token"
	case KindExpiredToken:
		return "expired_token"
	case KindUnknownPersonnel:
		return "unknown_personnel"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindDownstream:
		return "downstream"
	}
	return "internal"
}

// Error is the typed failure every component returns. Message is shown to
// end users verbatim.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthenticated(message string) *Error { return newError(KindAuthentication, message) }
func Forbidden(message string) *Error       { return newError(KindAuthorization, message) }
func NotFound(message string) *Error        { return newError(KindNotFound, message) }
func InvalidToken(message string) *Error    { return newError(KindInvalidToken, message) }
func ExpiredToken(message string) *Error    { return newError(KindExpiredToken, message) }
func UnknownPersonnel(message string) *Error {
	return newError(KindUnknownPersonnel, message)
}
func Conflict(message string) *Error { return newError(KindConflict, message) }

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Downstream(message string, err error) *Error {
	return &Error{Kind: KindDownstream, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Beklenmeyen bir hata oluştu", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
