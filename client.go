package uacorex

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/opcuax/uacorex/uax"
	"github.com/opcuax/uacorex/zaputils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client is a connected OPC UA client. It embeds the correlation layer, so
// Dispatch, the cancel calls and the typed operations in uax can be used on it
// directly, and runs a Driver in the background to route responses.
type Client struct {
	*uax.Client

	clientID string
	logger   *zap.Logger
	conn     *uax.Conn
	driver   *Driver

	runCancel context.CancelFunc
	runDone   chan struct{}
	runErr    error

	closeOnce sync.Once
	closeErr  error
}

// NewClient dials config.Endpoint, starts the driver loop and requests a
// secure channel token. It does not wait for the token to be issued; requests
// may be dispatched immediately.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, errors.New("config must be specified")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid client config")
	}

	clientID := uuid.NewString()[:8]
	logger := loggerOrNop(config.Logger).With(zap.String("clientId", clientID))

	conn, err := uax.DialConn(ctx, config.Endpoint, &uax.DialConnOptions{
		TLSConfig:  config.TLSConfig,
		MaxBodyLen: config.MaxBodyLen,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", config.Endpoint)
	}

	var compressor uax.Compressor
	if config.EnableCompression {
		compressor = NewCompressionManagerDefault(&CompressionManagerOptions{
			MinSize:              config.CompressionMinSize,
			MinRatio:             config.CompressionMinRatio,
			DisableDecompression: config.DisableDecompression,
		})
	}

	lifetime := config.SecureChannelLifetime
	if lifetime <= 0 {
		lifetime = DefaultSecureChannelLifetime
	}

	cli := uax.NewClient(conn, &uax.ClientOptions{
		Compressor: compressor,
		Telemetry: newClientTelem(&clientTelemOptions{
			LocalAddr:      conn.LocalAddr(),
			RemoteAddr:     conn.RemoteAddr(),
			TracerProvider: config.TracerProvider,
			MeterProvider:  config.MeterProvider,
		}),
		OrphanHandler: func(msg *uax.Message) {
			logger.Debug("received response for unknown request",
				zaputils.Request("response", msg.ServiceType, msg.RequestID, msg.RequestHandle))
		},
		RequestTimeout:        config.RequestTimeout,
		SecureChannelLifetime: lifetime,
		Logger:                logger.Named("uax"),
	})

	driver := NewDriver(cli, conn, &DriverOptions{
		TickInterval: config.TickInterval,
		Logger:       logger.Named("driver"),
	})

	runCtx, runCancel := context.WithCancel(context.Background())

	c := &Client{
		Client:    cli,
		clientID:  clientID,
		logger:    logger,
		conn:      conn,
		driver:    driver,
		runCancel: runCancel,
		runDone:   make(chan struct{}),
	}

	go c.runThread(runCtx)

	_, err = cli.OpenSecureChannel(func(token uax.ChannelToken, status uax.StatusCode) {
		if status.IsBad() {
			logger.Warn("failed to open secure channel", zaputils.Status("status", status))
			return
		}

		logger.Debug("secure channel opened",
			zap.Uint32("channelId", token.ChannelID),
			zap.Uint32("tokenId", token.TokenID),
			zap.Duration("lifetime", token.Lifetime))
	})
	if err != nil {
		_ = c.Close()
		return nil, errors.Wrap(err, "failed to request secure channel")
	}

	logger.Debug("client connected",
		zap.Stringer("localAddr", conn.LocalAddr()),
		zap.Stringer("remoteAddr", conn.RemoteAddr()))

	return c, nil
}

func (c *Client) runThread(ctx context.Context) {
	defer close(c.runDone)

	err := c.driver.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		c.logger.Warn("driver loop exited",
			zap.Error(err),
			zap.NamedError("readErr", c.driver.ReadErr()))
	}
	c.runErr = err
}

func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) DriverStats() DriverStats {
	return c.driver.Stats()
}

// Done is closed once the driver loop has exited and every pending request
// has been completed.
func (c *Client) Done() <-chan struct{} {
	return c.runDone
}

// Err returns the reason the driver loop exited. It is only meaningful once
// Done is closed.
func (c *Client) Err() error {
	select {
	case <-c.runDone:
		return c.runErr
	default:
		return nil
	}
}

// Close stops the driver loop, completes all pending requests with
// StatusBadShutdown and closes the connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.runCancel()
		<-c.runDone

		c.driver.Stop()
		c.closeErr = c.Client.Close()
		c.driver.Wait()

		c.logger.Debug("client closed")
	})
	return c.closeErr
}
