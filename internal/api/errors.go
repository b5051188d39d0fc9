package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed remote call. The set is closed: every failure
// decodes to exactly one Kind.
type Kind int

const (
	KindOther Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindSelfTrade
)

// StatusSelfTrade is what the marketplace API answers when a user offers a
// trade against one of their own plants.
const StatusSelfTrade = http.StatusTeapot

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSelfTrade:
		return "self_trade"
	default:
		return "other"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrConflict     = errors.New("api: conflict")
	ErrSelfTrade    = errors.New("api: cannot trade with yourself")
	ErrOther        = errors.New("api: request failed")
)

// Error is a remote call failure, decoded once at the client boundary.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Detail is the server-provided explanation, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := "api: " + e.Kind.String()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is the status to relay to our own caller. Failures without
// an error status from the remote side answer 502.
func (e *Error) HTTPStatus() int {
	if e.Status < 400 {
		return http.StatusBadGateway
	}
	return e.Status
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindSelfTrade:
		return ErrSelfTrade
	default:
		return ErrOther
	}
}

func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Detail: detail}
}

func SelfTrade(detail string) *Error {
	return &Error{Kind: KindSelfTrade, Status: StatusSelfTrade, Detail: detail}
}

// Other covers network failures, undecodable responses and any status
// outside the table. status is zero when no response arrived.
func Other(status int, detail string, cause error) *Error {
	return &Error{Kind: KindOther, Status: status, Detail: detail, Err: cause}
}

// Classify maps an HTTP status and detail to an *Error.
func Classify(status int, detail string) *Error {
	switch status {
	case http.StatusUnauthorized:
		return Unauthorized(detail)
	case http.StatusForbidden:
		return Forbidden(detail)
	case http.StatusNotFound:
		return NotFound(detail)
	case http.StatusConflict:
		return Conflict(detail)
	case StatusSelfTrade:
		return SelfTrade(detail)
	default:
		return Other(status, detail, nil)
	}
}

// AsError extracts an *Error from err. Any other non-nil error is reported
// as KindOther so callers always get a classification.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Other(0, "", err)
}
