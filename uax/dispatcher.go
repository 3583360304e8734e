package uax

// CompletionHandler receives the single completion of a dispatched request.
// resp is never nil: for local failures (timeout, shutdown, decode errors) it
// is the empty value of the request's ResponseShape with only the service
// result set, and status carries the same code.
type CompletionHandler interface {
	Complete(requestID uint32, resp Response, status StatusCode)
}

// CompletionFunc adapts a function to a CompletionHandler.
type CompletionFunc func(requestID uint32, resp Response, status StatusCode)

func (f CompletionFunc) Complete(requestID uint32, resp Response, status StatusCode) {
	if f == nil {
		return
	}
	f(requestID, resp, status)
}

// Transport sends encoded messages to the peer. Reading is owned by the
// external driver, which feeds inbound messages to RouteResponse.
type Transport interface {
	WriteMessage(msg *Message) error
	Close() error
}

// Compressor optionally compresses message bodies.
type Compressor interface {
	Compress(body []byte) ([]byte, bool)
	Decompress(body []byte) ([]byte, error)
}

type Dispatcher interface {
	Dispatch(req Request, shape ResponseShape, handler CompletionHandler) (uint32, error)
}
