package uacorex

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/opcuax/uacorex/uax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap/zaptest"
)

// testServerHandler returns the response to send for msg, or nil to send
// nothing.
type testServerHandler func(msg *uax.Message) *uax.Message

type testServer struct {
	listener net.Listener
	handler  testServerHandler

	lock  sync.Mutex
	conns []net.Conn

	wg sync.WaitGroup
}

func newTestServer(t *testing.T, handler testServerHandler) *testServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{
		listener: listener,
		handler:  handler,
	}

	s.wg.Add(1)
	go s.acceptThread()

	t.Cleanup(s.Close)

	return s
}

func (s *testServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *testServer) acceptThread() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.lock.Lock()
		s.conns = append(s.conns, conn)
		s.lock.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *testServer) serveConn(netConn net.Conn) {
	defer s.wg.Done()

	conn := uax.NewConn(netConn, 0)
	for {
		msg := &uax.Message{}
		err := conn.ReadMessage(msg)
		if err != nil {
			return
		}

		resp := s.handler(msg)
		if resp == nil {
			continue
		}

		err = conn.WriteMessage(resp)
		if err != nil {
			return
		}
	}
}

// DropConns closes every accepted connection.
func (s *testServer) DropConns() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *testServer) Close() {
	_ = s.listener.Close()
	s.DropConns()
	s.wg.Wait()
}

func testServerResponse(t *testing.T, req *uax.Message, resp uax.Response) *uax.Message {
	body, err := uax.JSONCodec{}.EncodeResponse(resp)
	if !assert.NoError(t, err) {
		return nil
	}

	return &uax.Message{
		Magic:         uax.MagicRes,
		ServiceType:   req.ServiceType,
		RequestID:     req.RequestID,
		RequestHandle: req.RequestHandle,
		Status:        uax.StatusGood,
		Body:          body,
	}
}

// testServeStandard answers secure channel requests and reads, returning a
// display name derived from the node id for every node read. It runs on
// server goroutines and must not use require.
func testServeStandard(t *testing.T, msg *uax.Message, body []byte) *uax.Message {
	switch msg.ServiceType {
	case uax.ServiceTypeOpenSecureChannel:
		req := &uax.OpenSecureChannelRequest{}
		if !assert.NoError(t, uax.JSONCodec{}.DecodeRequest(body, req)) {
			return nil
		}

		return testServerResponse(t, msg, &uax.OpenSecureChannelResponse{
			SecurityToken: uax.ChannelSecurityToken{
				ChannelID:       1,
				TokenID:         1,
				RevisedLifetime: req.RequestedLifetime,
			},
		})
	case uax.ServiceTypeRead:
		req := &uax.ReadRequest{}
		if !assert.NoError(t, uax.JSONCodec{}.DecodeRequest(body, req)) {
			return nil
		}

		resp := &uax.ReadResponse{}
		for _, node := range req.NodesToRead {
			value := uax.NewVariant(uax.LocalizedText{
				Text: fmt.Sprintf("node-%d", node.NodeID.Numeric),
			})
			resp.Results = append(resp.Results, uax.DataValue{
				Value: &value,
			})
		}
		return testServerResponse(t, msg, resp)
	}

	return nil
}

func newTestClient(t *testing.T, server *testServer, config *ClientConfig) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	config.Endpoint = server.Addr()
	config.TickInterval = 5 * time.Millisecond
	config.Logger = zaptest.NewLogger(t)

	cli, err := NewClient(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cli.Close()
	})

	return cli
}

type testOpResult[T any] struct {
	RequestID uint32
	Status    uax.StatusCode
	Value     *T
}

func waitOpResult[T any](t *testing.T, ch chan testOpResult[T]) testOpResult[T] {
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		require.Fail(t, "operation did not complete")
	}
	return testOpResult[T]{}
}

func opResultCallback[T any]() (chan testOpResult[T], uax.OperationCallback[T]) {
	ch := make(chan testOpResult[T], 1)
	return ch, func(requestID uint32, status uax.StatusCode, value *T) {
		ch <- testOpResult[T]{
			RequestID: requestID,
			Status:    status,
			Value:     value,
		}
	}
}

func TestClientOpensSecureChannel(t *testing.T) {
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		return testServeStandard(t, msg, msg.Body)
	})

	cli := newTestClient(t, server, &ClientConfig{
		SecureChannelLifetime: 10 * time.Minute,
	})

	require.Eventually(t, func() bool {
		_, ok := cli.Renewal().Token()
		return ok
	}, 5*time.Second, time.Millisecond)

	token, _ := cli.Renewal().Token()
	assert.Equal(t, uint32(1), token.ChannelID)
	assert.Equal(t, 10*time.Minute, token.Lifetime)
	assert.Equal(t, uax.StatusGood, cli.ConnectStatus())
	assert.NotEmpty(t, cli.ClientID())
}

func TestClientReadAttribute(t *testing.T) {
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		return testServeStandard(t, msg, msg.Body)
	})

	cli := newTestClient(t, server, nil)

	ch, cb := opResultCallback[uax.LocalizedText]()
	requestID, err := uax.ReadAttribute(cli, uax.NewNumericNodeID(1, 1001), uax.AttributeDisplayName, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	assert.Equal(t, requestID, res.RequestID)
	assert.Equal(t, uax.StatusGood, res.Status)
	require.NotNil(t, res.Value)
	assert.Equal(t, "node-1001", res.Value.Text)

	require.Eventually(t, func() bool {
		return cli.DriverStats().Routed >= 2
	}, 5*time.Second, time.Millisecond)
}

func TestClientRequestTimeout(t *testing.T) {
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		if msg.ServiceType == uax.ServiceTypeRead {
			return nil
		}
		return testServeStandard(t, msg, msg.Body)
	})

	cli := newTestClient(t, server, &ClientConfig{
		RequestTimeout: 20 * time.Millisecond,
	})

	ch, cb := opResultCallback[uax.DataValue]()
	_, err := uax.ReadDataValue(cli, uax.NewNumericNodeID(1, 1001), uax.AttributeIDValue, cb)
	require.NoError(t, err)

	res := waitOpResult(t, ch)
	assert.Equal(t, uax.StatusBadTimeout, res.Status)
	assert.Nil(t, res.Value)
	assert.Equal(t, 0, cli.PendingCount())
}

func TestClientCloseDrainsPending(t *testing.T) {
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		return nil
	})

	cli := newTestClient(t, server, &ClientConfig{
		RequestTimeout: time.Hour,
	})

	ch, cb := opResultCallback[uax.DataValue]()
	_, err := uax.ReadDataValue(cli, uax.NewNumericNodeID(1, 1001), uax.AttributeIDValue, cb)
	require.NoError(t, err)

	require.NoError(t, cli.Close())

	res := waitOpResult(t, ch)
	assert.Equal(t, uax.StatusBadShutdown, res.Status)
	assert.Equal(t, uax.StatusBadShutdown, cli.ConnectStatus())
	assert.Equal(t, 0, cli.PendingCount())

	select {
	case <-cli.Done():
	default:
		assert.Fail(t, "driver should have exited")
	}

	_, err = uax.ReadDataValue(cli, uax.NewNumericNodeID(1, 1001), uax.AttributeIDValue, nil)
	assert.ErrorIs(t, err, uax.ErrInvalidState)

	// closing twice is harmless
	require.NoError(t, cli.Close())
}

func TestClientConnectionLost(t *testing.T) {
	readSeenCh := make(chan struct{}, 1)
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		if msg.ServiceType == uax.ServiceTypeRead {
			readSeenCh <- struct{}{}
			return nil
		}
		return testServeStandard(t, msg, msg.Body)
	})

	cli := newTestClient(t, server, &ClientConfig{
		RequestTimeout: time.Hour,
	})

	ch, cb := opResultCallback[uax.DataValue]()
	_, err := uax.ReadDataValue(cli, uax.NewNumericNodeID(1, 1001), uax.AttributeIDValue, cb)
	require.NoError(t, err)

	select {
	case <-readSeenCh:
	case <-time.After(5 * time.Second):
		require.Fail(t, "server did not receive the read")
	}
	server.DropConns()

	res := waitOpResult(t, ch)
	assert.Equal(t, uax.StatusBadShutdown, res.Status)

	select {
	case <-cli.Done():
	case <-time.After(5 * time.Second):
		require.Fail(t, "driver did not exit")
	}
	assert.ErrorIs(t, cli.Err(), ErrConnectionLost)
}

func TestClientCompression(t *testing.T) {
	compressor := NewCompressionManagerDefault(nil)

	var sawCompressed atomic.Bool
	server := newTestServer(t, func(msg *uax.Message) *uax.Message {
		body := msg.Body
		if msg.Flags&uax.MessageFlagCompressed != 0 {
			sawCompressed.Store(true)

			decompressed, err := compressor.Decompress(body)
			if !assert.NoError(t, err) {
				return nil
			}
			body = decompressed
		}

		resp := testServeStandard(t, msg, body)
		if resp != nil && msg.Flags&uax.MessageFlagCompressed != 0 {
			if compressed, ok := compressor.Compress(resp.Body); ok {
				resp.Body = compressed
				resp.Flags |= uax.MessageFlagCompressed
			}
		}
		return resp
	})

	cli := newTestClient(t, server, &ClientConfig{
		EnableCompression: true,
	})

	req := &uax.ReadRequest{}
	for i := 0; i < 50; i++ {
		req.NodesToRead = append(req.NodesToRead, uax.ReadValueID{
			NodeID:      uax.NewNumericNodeID(1, 1001),
			AttributeID: uax.AttributeIDDisplayName,
		})
	}

	respCh := make(chan *uax.ReadResponse, 1)
	_, err := uax.OpsServices{Dispatcher: cli}.SendRead(req, func(requestID uint32, resp *uax.ReadResponse) {
		respCh <- resp
	})
	require.NoError(t, err)

	select {
	case resp := <-respCh:
		assert.Equal(t, uax.StatusGood, resp.Header.ServiceResult)
		assert.Len(t, resp.Results, 50)
	case <-time.After(5 * time.Second):
		require.Fail(t, "read did not complete")
	}

	assert.True(t, sawCompressed.Load())
}

func TestNewClientDialFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewClient(context.Background(), &ClientConfig{
		Endpoint: addr,
		Logger:   zaptest.NewLogger(t),
	})
	assert.Error(t, err)
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewClient(context.Background(), &ClientConfig{})
	assert.Error(t, err)
}
