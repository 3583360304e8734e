package uax

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState = errors.New("client is shutting down")
	ErrNotFound     = errors.New("request not found")
	ErrEncoding     = errors.New("encoding error")
	ErrDecoding     = errors.New("decoding error")
	ErrTimeout      = errors.New("request timed out")
	ErrShuttingDown = errors.New("request dropped during shutdown")
	ErrCancelled    = errors.New("request cancelled")

	ErrInvalidArgument = errors.New("invalid argument")
)

var ErrProtocol = errors.New("protocol error")

type protocolError struct {
	message string
}

func (e protocolError) Error() string {
	return "protocol error: " + e.message
}

func (e protocolError) Unwrap() error {
	return ErrProtocol
}

// EncodingError is returned synchronously from Dispatch when a request cannot
// be serialized. No pending entry exists for the request.
type EncodingError struct {
	ServiceType ServiceType
	Cause       error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode %s request: %s", e.ServiceType, e.Cause)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// StatusError carries a bad status code returned by the peer or synthesized
// locally for a deferred failure.
type StatusError struct {
	Code StatusCode
}

func (e *StatusError) Error() string {
	return "bad status: " + e.Code.String()
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case StatusBadTimeout:
		return ErrTimeout
	case StatusBadShutdown:
		return ErrShuttingDown
	case StatusBadRequestCancelledByClient, StatusBadRequestCancelledByRequest:
		return ErrCancelled
	case StatusBadEncodingError:
		return ErrEncoding
	case StatusBadDecodingError:
		return ErrDecoding
	case StatusBadNotFound:
		return ErrNotFound
	case StatusBadInvalidState:
		return ErrInvalidState
	}
	return nil
}

// statusToError returns nil for good statuses.
func statusToError(status StatusCode) error {
	if !status.IsBad() {
		return nil
	}
	return &StatusError{Code: status}
}
