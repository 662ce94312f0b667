package core

import (
	"errors"
	"fmt"

	"github.com/edvin/provisioning/internal/model"
)

// Kind classifies an error into a response result code.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindInternal
)

var kindCodes = map[Kind]model.ResultCode{
	KindBadRequest:       model.ResultBadRequest,
	KindUnauthorized:     model.ResultUnauthorized,
	KindForbidden:        model.ResultForbidden,
	KindNotFound:         model.ResultNotFound,
	KindMethodNotAllowed: model.ResultMethodNotAllowed,
	KindInternal:         model.ResultInternalError,
}

// ResultCode returns the envelope result code for the kind.
func (k Kind) ResultCode() model.ResultCode {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return model.ResultInternalError
}

// Error is a classified error. Description and Details are shown to the
// client; Err is only logged.
type Error struct {
	Kind        Kind
	Description string
	Details     any
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Description, e.Err)
	}
	return e.Description
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...), Err: err}
}

// BadRequest reports malformed client input.
func BadRequest(format string, args ...any) *Error {
	return newError(KindBadRequest, nil, format, args...)
}

// NotFound reports an unknown endpoint or an object absent from every central server.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

// MethodNotAllowed reports a method the endpoint does not support.
func MethodNotAllowed(format string, args ...any) *Error {
	return newError(KindMethodNotAllowed, nil, format, args...)
}

// Internal reports a gateway-side failure with a client-safe description.
func Internal(err error, format string, args ...any) *Error {
	return newError(KindInternal, err, format, args...)
}

var (
	ErrNoUsername         = &Error{Kind: KindUnauthorized, Description: "Username is not specified"}
	ErrNoPassword         = &Error{Kind: KindUnauthorized, Description: "Password is not specified"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Description: "Invalid username or password"}
	ErrForbidden          = &Error{Kind: KindForbidden, Description: "Access denied"}
)

var (
	ErrMultipleShards   = errors.New("object exists on multiple central servers")
	ErrCapacityExceeded = errors.New("central server capacity exceeded")
	ErrUnknownShard     = errors.New("unknown central server")
)

// CapacityError is returned by placement when the least loaded candidate is full.
type CapacityError struct {
	ObjectType model.ObjectType
	ShardID    int
	Count      int
	Limit      int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("central server %d has %d %s, limit %d", e.ShardID, e.Count, e.ObjectType, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
