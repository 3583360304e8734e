package uacorex

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opcuax/uacorex/uax"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// MessageSource yields inbound messages. ReadMessage is only ever called from
// the driver's reader goroutine.
type MessageSource interface {
	ReadMessage(msg *uax.Message) error
}

// DriverClient is the part of uax.Client the driver advances.
type DriverClient interface {
	RouteResponse(msg *uax.Message) bool
	SweepTimeouts() int
	CheckRenewal() uax.StatusCode
	Drain() int
}

var _ DriverClient = (*uax.Client)(nil)

type DriverOptions struct {
	// TickInterval bounds how long Run waits for a message before sweeping
	// timeouts and checking renewal. Zero selects DefaultTickInterval.
	TickInterval time.Duration

	Logger *zap.Logger
}

// Driver is the external loop that feeds inbound messages into a client and
// gives it the periodic ticks it needs for timeouts and channel renewal. A
// single background goroutine reads from the source; everything else happens
// on the goroutine calling Iterate or Run.
type Driver struct {
	cli          DriverClient
	logger       *zap.Logger
	tickInterval time.Duration

	inbound    chan *uax.Message
	readErrCh  chan error
	stopCh     chan struct{}
	stopOnce   sync.Once
	readerDone chan struct{}

	readErr atomic.Error

	iterations    atomic.Uint64
	routed        atomic.Uint64
	orphaned      atomic.Uint64
	timeoutsFired atomic.Uint64
}

func NewDriver(cli DriverClient, source MessageSource, opts *DriverOptions) *Driver {
	if opts == nil {
		opts = &DriverOptions{}
	}

	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	d := &Driver{
		cli:          cli,
		logger:       loggerOrNop(opts.Logger),
		tickInterval: tickInterval,
		inbound:      make(chan *uax.Message),
		readErrCh:    make(chan error, 1),
		stopCh:       make(chan struct{}),
		readerDone:   make(chan struct{}),
	}

	go d.readThread(source)

	return d
}

func (d *Driver) readThread(source MessageSource) {
	defer close(d.readerDone)

	for {
		msg := &uax.Message{}
		err := source.ReadMessage(msg)
		if err != nil {
			d.readErrCh <- err
			return
		}

		select {
		case d.inbound <- msg:
		case <-d.stopCh:
			return
		}
	}
}

// ErrConnectionLost is returned by Iterate and Run once the message source
// has failed. The underlying read error is available from ReadErr.
var ErrConnectionLost = errors.New("connection lost")

// Iterate processes at most one inbound message, waiting up to wait for one
// to arrive, then sweeps expired requests and checks whether the channel
// token needs renewal. The sweep and renewal check run even when nothing
// arrived.
func (d *Driver) Iterate(ctx context.Context, wait time.Duration) error {
	d.iterations.Inc()

	if d.readErr.Load() != nil {
		return ErrConnectionLost
	}

	msg, err := d.receive(ctx, wait)
	if err != nil {
		return err
	}
	if msg != nil {
		d.route(msg)
	}

	if n := d.cli.SweepTimeouts(); n > 0 {
		d.timeoutsFired.Add(uint64(n))
	}
	d.cli.CheckRenewal()

	return nil
}

func (d *Driver) receive(ctx context.Context, wait time.Duration) (*uax.Message, error) {
	if wait <= 0 {
		select {
		case msg := <-d.inbound:
			return msg, nil
		case err := <-d.readErrCh:
			return nil, d.sourceFailed(err)
		default:
			return nil, ctx.Err()
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case msg := <-d.inbound:
		return msg, nil
	case err := <-d.readErrCh:
		return nil, d.sourceFailed(err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	}
}

func (d *Driver) sourceFailed(err error) error {
	d.readErr.Store(err)
	d.logger.Debug("message source failed", zap.Error(err))
	return ErrConnectionLost
}

func (d *Driver) route(msg *uax.Message) {
	if d.cli.RouteResponse(msg) {
		d.routed.Inc()
	} else {
		d.orphaned.Inc()
	}
}

// Run iterates until ctx is cancelled or the connection is lost, then drains
// every request still pending.
func (d *Driver) Run(ctx context.Context) error {
	var err error
	for err == nil {
		err = d.Iterate(ctx, d.tickInterval)
	}

	drained := d.cli.Drain()
	d.logger.Debug("driver stopped",
		zap.Error(err),
		zap.Int("drained", drained))

	return err
}

// Stop releases the reader goroutine. The message source must be closed
// separately if its ReadMessage is blocked.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
}

// Wait blocks until the reader goroutine has exited.
func (d *Driver) Wait() {
	<-d.readerDone
}

func (d *Driver) ReadErr() error {
	return d.readErr.Load()
}

type DriverStats struct {
	Iterations    uint64
	Routed        uint64
	Orphaned      uint64
	TimeoutsFired uint64
}

func (d *Driver) Stats() DriverStats {
	return DriverStats{
		Iterations:    d.iterations.Load(),
		Routed:        d.routed.Load(),
		Orphaned:      d.orphaned.Load(),
		TimeoutsFired: d.timeoutsFired.Load(),
	}
}
