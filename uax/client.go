package uax

import (
	"math"
	"os"
	"time"

	"github.com/opcuax/uacorex/zaputils"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var enableMessageLogging bool = os.Getenv("UACX_MESSAGE_LOGGING") != ""

// DefaultRequestTimeout applies to requests without a TimeoutHint when the
// client was not configured with a timeout.
const DefaultRequestTimeout = 5 * time.Second

// Client correlates asynchronously dispatched service requests with their
// completions. It never blocks waiting on the network: requests are written to
// the Transport and their handlers are invoked later by whichever goroutine
// calls RouteResponse, SweepTimeouts or Drain (normally the driver loop).
// Dispatch, the cancel calls and RenewSecureChannel are safe to call from any
// goroutine.
type Client struct {
	transport     Transport
	codec         Codec
	compressor    Compressor
	telem         ClientTelem
	orphanHandler func(*Message)
	logger        *zap.Logger
	nowFunc       func() time.Time

	requestTimeout time.Duration

	registry *pendingRegistry
	renewal  *RenewalScheduler

	connectStatus atomic.Uint32
}

var _ Dispatcher = (*Client)(nil)

type ClientOptions struct {
	Codec      Codec
	Compressor Compressor
	Telemetry  ClientTelem

	// OrphanHandler receives responses that match no pending request.
	OrphanHandler func(*Message)

	// RequestTimeout is the connection default used when a request carries no
	// TimeoutHint. Zero selects DefaultRequestTimeout.
	RequestTimeout time.Duration

	// SecureChannelLifetime is requested when renewing the channel token. Zero
	// keeps the lifetime of the current token.
	SecureChannelLifetime time.Duration

	// NowFunc overrides the clock, mainly for tests.
	NowFunc func() time.Time

	Logger *zap.Logger
}

func NewClient(transport Transport, opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	codec := opts.Codec
	if codec == nil {
		codec = JSONCodec{}
	}

	telem := opts.Telemetry
	if telem == nil {
		telem = noopClientTelem{}
	}

	nowFunc := opts.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	c := &Client{
		transport:      transport,
		codec:          codec,
		compressor:     opts.Compressor,
		telem:          telem,
		orphanHandler:  opts.OrphanHandler,
		logger:         logger,
		nowFunc:        nowFunc,
		requestTimeout: requestTimeout,
		registry:       newPendingRegistry(),
	}
	c.renewal = newRenewalScheduler(opts.SecureChannelLifetime)
	c.connectStatus.Store(uint32(StatusGood))

	return c
}

// Dispatch encodes req, registers it as pending and writes it to the
// transport, returning the request id. The handler is invoked exactly once,
// later, unless Dispatch returns an error, in which case it is never invoked.
//
// A zero RequestHandle in the request header is replaced with a generated
// handle. A zero TimeoutHint is replaced with the connection default.
func (c *Client) Dispatch(req Request, shape ResponseShape, handler CompletionHandler) (uint32, error) {
	if shape == nil {
		return 0, ErrInvalidArgument
	}
	if handler == nil {
		handler = CompletionFunc(func(uint32, Response, StatusCode) {})
	}

	hdr := req.RequestHeader()
	if IsAutoHandle(hdr.RequestHandle) {
		c.logger.Debug("caller-chosen request handle lies in the generated handle range",
			zaputils.RequestHandle("requestHandle", hdr.RequestHandle))
	}

	requestID, requestHandle, err := c.registry.Allocate(hdr.RequestHandle)
	if err != nil {
		return 0, err
	}
	hdr.RequestHandle = requestHandle

	timeout := c.requestTimeout
	if hdr.TimeoutHint > 0 {
		timeout = time.Duration(hdr.TimeoutHint) * time.Millisecond
	} else {
		hdr.TimeoutHint = timeoutHintMillis(timeout)
	}

	now := c.nowFunc()
	if hdr.Timestamp.IsZero() {
		hdr.Timestamp = now
	}

	body, err := c.codec.EncodeRequest(req)
	if err != nil {
		c.logger.Debug("failed to encode request",
			zap.Error(err),
			zaputils.RequestID("requestId", requestID),
			zaputils.Service("service", req.ServiceType()))
		return 0, &EncodingError{ServiceType: req.ServiceType(), Cause: err}
	}

	var flags MessageFlag
	if c.compressor != nil {
		if compressed, ok := c.compressor.Compress(body); ok {
			body = compressed
			flags |= MessageFlagCompressed
		}
	}

	msg := &Message{
		Magic:         MagicReq,
		Flags:         flags,
		ServiceType:   req.ServiceType(),
		RequestID:     requestID,
		RequestHandle: requestHandle,
		Body:          body,
	}

	entry := &pendingRequest{
		requestID:     requestID,
		requestHandle: requestHandle,
		serviceType:   req.ServiceType(),
		shape:         shape,
		handler:       handler,
		dispatchTime:  now,
		deadline:      now.Add(timeout),
		telemOp:       c.telem.BeginOp(req.ServiceType(), requestID, requestHandle),
	}

	err = c.registry.Insert(entry)
	if err != nil {
		entry.telemOp.End(CompletionCauseShutdown, StatusBadInvalidState, 0)
		return 0, err
	}

	if enableMessageLogging {
		c.logger.Debug("writing message",
			zaputils.Service("service", msg.ServiceType),
			zaputils.RequestID("requestId", msg.RequestID),
			zaputils.RequestHandle("requestHandle", msg.RequestHandle),
			zap.Uint8("flags", uint8(msg.Flags)),
			zap.Binary("body", msg.Body))
	}

	err = c.transport.WriteMessage(msg)
	if err != nil {
		c.logger.Debug("failed to write message",
			zap.Error(err),
			zaputils.RequestID("requestId", requestID),
			zaputils.Service("service", msg.ServiceType))

		if _, ok := c.registry.Take(requestID); !ok {
			// Someone else completed the request while we were writing, its
			// handler has already run so the write error is not reported.
			return requestID, nil
		}

		entry.telemOp.End(CompletionCauseResponse, StatusBadCommunicationError, c.nowFunc().Sub(now))
		return 0, err
	}

	entry.telemOp.MarkSent()

	return requestID, nil
}

// timeoutHintMillis clamps to the largest hint the header can carry.
func timeoutHintMillis(timeout time.Duration) uint32 {
	ms := timeout / time.Millisecond
	if ms > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ms)
}

// DispatchFunc is Dispatch with a function handler.
func (c *Client) DispatchFunc(req Request, shape ResponseShape, fn CompletionFunc) (uint32, error) {
	if fn == nil {
		return c.Dispatch(req, shape, nil)
	}
	return c.Dispatch(req, shape, fn)
}

// RouteResponse completes the pending request matching msg.RequestID. Messages
// for unknown, already completed or cancelled requests are discarded and
// false is returned.
func (c *Client) RouteResponse(msg *Message) bool {
	if enableMessageLogging {
		c.logger.Debug("read message",
			zap.Stringer("magic", msg.Magic),
			zaputils.Service("service", msg.ServiceType),
			zaputils.RequestID("requestId", msg.RequestID),
			zaputils.RequestHandle("requestHandle", msg.RequestHandle),
			zaputils.Status("status", msg.Status),
			zap.Binary("body", msg.Body))
	}

	if msg.Magic.IsRequest() {
		c.logger.Debug("discarding unsolicited request message",
			zaputils.Service("service", msg.ServiceType))
		return false
	}

	entry, ok := c.registry.Take(msg.RequestID)
	if !ok {
		c.logger.Debug("discarding response for unknown request",
			zaputils.RequestID("requestId", msg.RequestID),
			zaputils.Service("service", msg.ServiceType))

		if c.orphanHandler != nil {
			c.orphanHandler(msg)
		}
		return false
	}

	resp, status := c.decodeResponse(entry, msg)
	c.complete(entry, resp, status, CompletionCauseResponse)
	return true
}

// RouteRaw routes an already de-enveloped response body.
func (c *Client) RouteRaw(requestID uint32, raw []byte) bool {
	return c.RouteResponse(&Message{
		Magic:     MagicRes,
		RequestID: requestID,
		Body:      raw,
	})
}

func (c *Client) decodeResponse(entry *pendingRequest, msg *Message) (Response, StatusCode) {
	// A bad envelope status is a service fault: there is no typed body.
	if msg.Status.IsBad() {
		return emptyResponse(entry.shape, entry.requestHandle, msg.Status), msg.Status
	}

	if msg.ServiceType != ServiceTypeUnknown && msg.ServiceType != entry.shape.ServiceType() {
		c.logger.Debug("response service type does not match request",
			zaputils.RequestID("requestId", entry.requestID),
			zap.Stringer("expected", entry.shape.ServiceType()),
			zap.Stringer("received", msg.ServiceType))
		return emptyResponse(entry.shape, entry.requestHandle, StatusBadDecodingError), StatusBadDecodingError
	}

	body := msg.Body
	if msg.Flags&MessageFlagCompressed != 0 {
		if c.compressor == nil {
			return emptyResponse(entry.shape, entry.requestHandle, StatusBadDecodingError), StatusBadDecodingError
		}

		decompressed, err := c.compressor.Decompress(body)
		if err != nil {
			c.logger.Debug("failed to decompress response body",
				zap.Error(err),
				zaputils.RequestID("requestId", entry.requestID))
			return emptyResponse(entry.shape, entry.requestHandle, StatusBadDecodingError), StatusBadDecodingError
		}
		body = decompressed
	}

	resp := entry.shape.New()
	err := c.codec.DecodeResponse(body, resp)
	if err != nil {
		c.logger.Debug("failed to decode response",
			zap.Error(err),
			zaputils.RequestID("requestId", entry.requestID))
		return emptyResponse(entry.shape, entry.requestHandle, StatusBadDecodingError), StatusBadDecodingError
	}

	return resp, resp.ResponseHeader().ServiceResult
}

func (c *Client) complete(entry *pendingRequest, resp Response, status StatusCode, cause CompletionCause) {
	entry.telemOp.End(cause, status, c.nowFunc().Sub(entry.dispatchTime))
	entry.handler.Complete(entry.requestID, resp, status)
}

func (c *Client) fail(entry *pendingRequest, status StatusCode, cause CompletionCause) {
	c.complete(entry, emptyResponse(entry.shape, entry.requestHandle, status), status, cause)
}

// SweepTimeouts completes every pending request whose deadline has passed
// with StatusBadTimeout and returns how many were completed. It is meant to be
// called once per driver iteration.
func (c *Client) SweepTimeouts() int {
	expired := c.registry.TakeExpired(c.nowFunc())
	for _, entry := range expired {
		c.logger.Debug("request timed out",
			zaputils.Request("request", entry.serviceType, entry.requestID, entry.requestHandle))

		c.fail(entry, StatusBadTimeout, CompletionCauseTimeout)
	}

	return len(expired)
}

// Drain completes every pending request with StatusBadShutdown and makes all
// later dispatches fail with ErrInvalidState. Only the first call has any
// effect; it returns the number of requests drained.
func (c *Client) Drain() int {
	entries, ok := c.registry.Close()
	if !ok {
		return 0
	}

	c.connectStatus.Store(uint32(StatusBadShutdown))

	for _, entry := range entries {
		c.fail(entry, StatusBadShutdown, CompletionCauseShutdown)
	}

	c.logger.Debug("drained pending requests", zap.Int("count", len(entries)))

	return len(entries)
}

// Close drains all pending requests and then closes the transport.
func (c *Client) Close() error {
	c.Drain()

	if c.transport == nil {
		return nil
	}
	return c.transport.Close()
}

// ConnectStatus returns the current status of the connection.
func (c *Client) ConnectStatus() StatusCode {
	return StatusCode(c.connectStatus.Load())
}

func (c *Client) PendingCount() int {
	return c.registry.Len()
}

// IsPending reports whether requestID is still awaiting completion.
func (c *Client) IsPending(requestID uint32) bool {
	_, ok := c.registry.HandleOf(requestID)
	return ok
}
