package apperr

import "errors"

type Kind int

const (
	KindValidation Kind = iota + 1
	KindProcessing
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Error carries a user-facing message and the kind that decides how the
// HTTP layer reports it (validation → 400, processing → 500).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Processing(msg string, cause error) error {
	return &Error{Kind: KindProcessing, Msg: msg, Err: cause}
}

func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

func IsProcessing(err error) bool {
	return hasKind(err, KindProcessing)
}

// Message returns the user-facing part of err without the wrapped cause.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func hasKind(err error, kind Kind) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}
