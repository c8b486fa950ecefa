package capability

import (
	"errors"
	"fmt"
)

// ErrorKind classifies capability failures so clients can tell them apart
// without parsing the message.
type ErrorKind int

const (
	KindUpstream ErrorKind = iota + 1
	KindMalformedOutput
	KindUnavailable
	KindInvalidRequest
)

func (k ErrorKind) Code() string {
	switch k {
	case KindUpstream:
		return "UPSTREAM_ERROR"
	case KindMalformedOutput:
		return "MALFORMED_OUTPUT"
	case KindUnavailable:
		return "CAPABILITY_UNAVAILABLE"
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

type Error struct {
	Capability string
	Kind       ErrorKind
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func Upstream(name string, err error) error {
	return &Error{Capability: name, Kind: KindUpstream, Err: err}
}

func Malformed(name string, err error) error {
	return &Error{Capability: name, Kind: KindMalformedOutput, Err: err}
}

func Unavailable(name string, err error) error {
	return &Error{Capability: name, Kind: KindUnavailable, Err: err}
}

func InvalidRequest(name string, err error) error {
	return &Error{Capability: name, Kind: KindInvalidRequest, Err: err}
}

// KindOf returns the kind of the first capability error in err's chain,
// KindUpstream for any other non-nil error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUpstream
}
