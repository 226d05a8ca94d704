package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTransient covers unreachable hosts, timeouts and unexpected statuses.
	// Recoverable by a manual retry.
	KindTransient Kind = iota
	// KindNotFound is the expected "record does not exist" answer.
	KindNotFound
	// KindDecode means the server answered with a body we could not parse.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	default:
		return "transient"
	}
}

// ErrNotFound matches any Error of KindNotFound under errors.Is.
var ErrNotFound = errors.New("record not found")

type Error struct {
	Kind   Kind
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status > 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// KindOf reports the kind of err. Errors not produced by this package are
// treated as transient.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindTransient
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
