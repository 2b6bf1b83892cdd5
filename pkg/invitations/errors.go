package invitations

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

// Kind classifies invitation failures
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindUpstreamFailure Kind = "upstream_failure"
)

// Error is a typed invitation failure
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUpstreamFailure = &Error{Kind: KindUpstreamFailure}
)

// KindOf returns the kind of err, or an empty kind when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalid(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// upstream classifies an error returned by the Vortex client
func upstream(err error) *Error {
	kind := KindUpstreamFailure
	if vortex.IsNotFound(err) {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Message: upstreamMessage(err), Cause: err}
}

func upstreamMessage(err error) string {
	var apiErr *vortex.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
