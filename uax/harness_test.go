package uax

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errTestWriteFailed = errors.New("write failed")

type testTransport struct {
	lock     sync.Mutex
	written  []*Message
	writeErr error
	closed   bool

	// onWrite runs after the message is recorded, outside the lock.
	onWrite func(msg *Message)
}

var _ Transport = (*testTransport)(nil)

func (t *testTransport) WriteMessage(msg *Message) error {
	t.lock.Lock()
	if t.writeErr != nil {
		err := t.writeErr
		t.lock.Unlock()
		return err
	}
	t.written = append(t.written, msg)
	onWrite := t.onWrite
	t.lock.Unlock()

	if onWrite != nil {
		onWrite(msg)
	}
	return nil
}

func (t *testTransport) Close() error {
	t.lock.Lock()
	t.closed = true
	t.lock.Unlock()
	return nil
}

func (t *testTransport) SetWriteErr(err error) {
	t.lock.Lock()
	t.writeErr = err
	t.lock.Unlock()
}

func (t *testTransport) Written() []*Message {
	t.lock.Lock()
	defer t.lock.Unlock()

	out := make([]*Message, len(t.written))
	copy(out, t.written)
	return out
}

func (t *testTransport) WrittenOfType(st ServiceType) []*Message {
	var out []*Message
	for _, msg := range t.Written() {
		if msg.ServiceType == st {
			out = append(out, msg)
		}
	}
	return out
}

func (t *testTransport) Last(tt *testing.T) *Message {
	written := t.Written()
	require.NotEmpty(tt, written)
	return written[len(written)-1]
}

type testClock struct {
	lock sync.Mutex
	now  time.Time
}

func newTestClock() *testClock {
	return &testClock{
		now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (c *testClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.lock.Unlock()
}

type testHarness struct {
	cli       *Client
	transport *testTransport
	clock     *testClock
}

func newTestHarness(t *testing.T, opts *ClientOptions) *testHarness {
	if opts == nil {
		opts = &ClientOptions{}
	}

	clock := newTestClock()
	transport := &testTransport{}

	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	if opts.NowFunc == nil {
		opts.NowFunc = clock.Now
	}

	return &testHarness{
		cli:       NewClient(transport, opts),
		transport: transport,
		clock:     clock,
	}
}

// respond routes resp as the answer to the request carried by req.
func (h *testHarness) respond(t *testing.T, req *Message, resp Response) bool {
	body, err := JSONCodec{}.EncodeResponse(resp)
	require.NoError(t, err)

	return h.cli.RouteResponse(&Message{
		Magic:         MagicRes,
		ServiceType:   req.ServiceType,
		RequestID:     req.RequestID,
		RequestHandle: req.RequestHandle,
		Status:        StatusGood,
		Body:          body,
	})
}

func (h *testHarness) respondStatus(t *testing.T, req *Message, status StatusCode) bool {
	return h.cli.RouteResponse(&Message{
		Magic:         MagicRes,
		ServiceType:   req.ServiceType,
		RequestID:     req.RequestID,
		RequestHandle: req.RequestHandle,
		Status:        status,
	})
}

func decodeTestRequest[T any, PT interface {
	*T
	Request
}](t *testing.T, msg *Message) PT {
	req := PT(new(T))
	require.Equal(t, req.ServiceType(), msg.ServiceType)
	require.NoError(t, JSONCodec{}.DecodeRequest(msg.Body, req))
	return req
}

type testCompletion struct {
	RequestID uint32
	Resp      Response
	Status    StatusCode
}

type completionRecorder struct {
	lock  sync.Mutex
	calls []testCompletion
}

var _ CompletionHandler = (*completionRecorder)(nil)

func (r *completionRecorder) Complete(requestID uint32, resp Response, status StatusCode) {
	r.lock.Lock()
	r.calls = append(r.calls, testCompletion{
		RequestID: requestID,
		Resp:      resp,
		Status:    status,
	})
	r.lock.Unlock()
}

func (r *completionRecorder) Calls() []testCompletion {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]testCompletion, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *completionRecorder) CountFor(requestID uint32) int {
	count := 0
	for _, call := range r.Calls() {
		if call.RequestID == requestID {
			count++
		}
	}
	return count
}

func testReadRequest(handle uint32) *ReadRequest {
	return &ReadRequest{
		Header: RequestHeader{
			RequestHandle: handle,
		},
		NodesToRead: []ReadValueID{{
			NodeID:      NewNumericNodeID(1, 1001),
			AttributeID: AttributeIDValue,
		}},
	}
}
