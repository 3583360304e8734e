package uax

import "fmt"

// StatusCode is an OPC UA status code. The top two bits carry the severity:
// 00 is good, 01 is uncertain and 10 is bad.
type StatusCode uint32

const (
	// StatusGood indicates the operation completed successfully.
	StatusGood = StatusCode(0x00000000)

	// StatusGoodCallAgain indicates the operation is not finished and needs to
	// be called again. Returned by the renewal check before the renewal threshold.
	StatusGoodCallAgain = StatusCode(0x00A90000)

	// StatusGoodCompletesAsynchronously indicates the processing will complete asynchronously.
	StatusGoodCompletesAsynchronously = StatusCode(0x002E0000)

	// StatusUncertainInitialValue indicates the value is an initial value for a variable
	// that normally receives its value from another variable.
	StatusUncertainInitialValue = StatusCode(0x40920000)

	// StatusBadUnexpectedError indicates an unexpected error occurred.
	StatusBadUnexpectedError = StatusCode(0x80010000)

	// StatusBadInternalError indicates an internal error occurred as a result of a
	// programming or configuration error.
	StatusBadInternalError = StatusCode(0x80020000)

	// StatusBadCommunicationError indicates a low level communication error occurred.
	StatusBadCommunicationError = StatusCode(0x80050000)

	// StatusBadEncodingError indicates encoding halted because of invalid data in the objects
	// being serialized.
	StatusBadEncodingError = StatusCode(0x80060000)

	// StatusBadDecodingError indicates decoding halted because of invalid data in the stream.
	StatusBadDecodingError = StatusCode(0x80070000)

	// StatusBadTimeout indicates the operation timed out.
	StatusBadTimeout = StatusCode(0x800A0000)

	// StatusBadServiceUnsupported indicates the server does not support the requested service.
	StatusBadServiceUnsupported = StatusCode(0x800B0000)

	// StatusBadShutdown indicates the operation was cancelled because the application
	// is shutting down.
	StatusBadShutdown = StatusCode(0x800C0000)

	// StatusBadNothingToDo indicates there was nothing to do because the client passed
	// a list of operations with no elements.
	StatusBadNothingToDo = StatusCode(0x800F0000)

	// StatusBadTooManyOperations indicates the request could not be processed because it
	// specified too many operations.
	StatusBadTooManyOperations = StatusCode(0x80100000)

	// StatusBadSecurityChecksFailed indicates an error occurred verifying security.
	StatusBadSecurityChecksFailed = StatusCode(0x80130000)

	// StatusBadRequestCancelledByClient indicates the request was cancelled by the client.
	StatusBadRequestCancelledByClient = StatusCode(0x802C0000)

	// StatusBadNodeIDUnknown indicates the node id refers to a node that does not exist
	// in the server address space.
	StatusBadNodeIDUnknown = StatusCode(0x80340000)

	// StatusBadAttributeIDInvalid indicates the attribute is not supported for the
	// specified node.
	StatusBadAttributeIDInvalid = StatusCode(0x80350000)

	// StatusBadTypeMismatch indicates the value supplied for the attribute is not of the
	// same type as the attribute's value.
	StatusBadTypeMismatch = StatusCode(0x80740000)

	// StatusBadNotFound indicates a requested item was not found.
	StatusBadNotFound = StatusCode(0x803E0000)

	// StatusBadRequestCancelledByRequest indicates the request was cancelled by a
	// Cancel request from the client.
	StatusBadRequestCancelledByRequest = StatusCode(0x805A0000)

	// StatusBadSecureChannelClosed indicates the secure channel has been closed.
	StatusBadSecureChannelClosed = StatusCode(0x80860000)

	// StatusBadConnectionClosed indicates the network connection has been closed.
	StatusBadConnectionClosed = StatusCode(0x80AE0000)

	// StatusBadInvalidState indicates the operation cannot be completed because the
	// object is closed, uninitialized or in some other invalid state.
	StatusBadInvalidState = StatusCode(0x80AF0000)
)

const statusSeverityMask = 0xC0000000

// IsGood reports whether the severity of the status is good. Good statuses
// carry finer-grained variants such as StatusGoodCallAgain.
func (s StatusCode) IsGood() bool {
	return s&statusSeverityMask == 0
}

func (s StatusCode) IsUncertain() bool {
	return s&statusSeverityMask == 0x40000000
}

func (s StatusCode) IsBad() bool {
	return s&statusSeverityMask == 0x80000000
}

func (s StatusCode) String() string {
	switch s {
	case StatusGood:
		return "Good"
	case StatusGoodCallAgain:
		return "GoodCallAgain"
	case StatusGoodCompletesAsynchronously:
		return "GoodCompletesAsynchronously"
	case StatusUncertainInitialValue:
		return "UncertainInitialValue"
	case StatusBadUnexpectedError:
		return "BadUnexpectedError"
	case StatusBadInternalError:
		return "BadInternalError"
	case StatusBadCommunicationError:
		return "BadCommunicationError"
	case StatusBadEncodingError:
		return "BadEncodingError"
	case StatusBadDecodingError:
		return "BadDecodingError"
	case StatusBadTimeout:
		return "BadTimeout"
	case StatusBadServiceUnsupported:
		return "BadServiceUnsupported"
	case StatusBadShutdown:
		return "BadShutdown"
	case StatusBadNothingToDo:
		return "BadNothingToDo"
	case StatusBadTooManyOperations:
		return "BadTooManyOperations"
	case StatusBadSecurityChecksFailed:
		return "BadSecurityChecksFailed"
	case StatusBadRequestCancelledByClient:
		return "BadRequestCancelledByClient"
	case StatusBadNodeIDUnknown:
		return "BadNodeIdUnknown"
	case StatusBadAttributeIDInvalid:
		return "BadAttributeIdInvalid"
	case StatusBadTypeMismatch:
		return "BadTypeMismatch"
	case StatusBadNotFound:
		return "BadNotFound"
	case StatusBadRequestCancelledByRequest:
		return "BadRequestCancelledByRequest"
	case StatusBadSecureChannelClosed:
		return "BadSecureChannelClosed"
	case StatusBadConnectionClosed:
		return "BadConnectionClosed"
	case StatusBadInvalidState:
		return "BadInvalidState"
	}

	return fmt.Sprintf("0x%08X", uint32(s))
}
