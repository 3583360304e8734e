package uax

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/opcuax/uacorex/contrib/leakcheck"
)

// Conn frames Messages over a stream connection. Writes are serialized by an
// internal lock; reads must happen from a single goroutine.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	writeLock sync.Mutex
	writer    MessageWriter

	msgReader MessageReader
}

var _ Transport = (*Conn)(nil)

type DialConnOptions struct {
	TLSConfig  *tls.Config
	Dialer     *net.Dialer
	MaxBodyLen int
}

func NewConn(conn net.Conn, maxBodyLen int) *Conn {
	return &Conn{
		conn:      conn,
		reader:    bufio.NewReader(conn),
		msgReader: MessageReader{MaxBodyLen: maxBodyLen},
	}
}

func DialConn(ctx context.Context, addr string, opts *DialConnOptions) (*Conn, error) {
	if opts == nil {
		opts = &DialConnOptions{}
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	var netConn net.Conn
	if opts.TLSConfig == nil {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		netConn = conn
	} else {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    opts.TLSConfig,
		}
		conn, err := tlsDialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		netConn = conn
	}

	return NewConn(leakcheck.WrapConn(netConn), opts.MaxBodyLen), nil
}

func (c *Conn) WriteMessage(msg *Message) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	return c.writer.WriteMessage(c.conn, msg)
}

func (c *Conn) ReadMessage(msg *Message) error {
	return c.msgReader.ReadMessage(c.reader, msg)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
