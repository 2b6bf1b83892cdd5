package claims

import "errors"

// Kind classifies assertion failures
type Kind string

const (
	KindSigningFailure   Kind = "signing_failure"
	KindInvalidPrincipal Kind = "invalid_principal"
)

// Error is a typed assertion failure
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
	// ErrSigningFailure matches any signing failure with errors.Is
	ErrSigningFailure = &Error{Kind: KindSigningFailure}
	// ErrInvalidPrincipal matches any rejected principal with errors.Is
	ErrInvalidPrincipal = &Error{Kind: KindInvalidPrincipal}
)

// KindOf returns the kind of err, or an empty kind when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
