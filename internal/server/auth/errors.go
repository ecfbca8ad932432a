package auth

import "errors"

var (
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidSignature = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrForbidden        = errors.New("insufficient permissions")

	ErrHashing       = errors.New("password hashing failed")
	ErrMissingSecret = errors.New("token signing secret is empty")
)

// Kind names an access-control failure.
type Kind int

const (
	KindMissingToken Kind = iota + 1
	KindInvalidSignature
	KindExpired
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindMissingToken:
		return "missing_token"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindExpired:
		return "expired"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a tagged access-control failure. Kind drives the response;
// Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind of an auth failure anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}
