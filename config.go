package uacorex

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/couchbaselabs/gocbconnstr/v2"
	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the registered port of opc.tcp endpoints.
	DefaultPort = 4840

	DefaultTickInterval          = 50 * time.Millisecond
	DefaultSecureChannelLifetime = time.Hour

	schemeTCP    = "opc.tcp"
	schemeTCPTLS = "opc.tcps"
)

type ClientConfig struct {
	// Endpoint is the host:port of the server.
	Endpoint string

	// TLSConfig enables TLS on the stream connection when non-nil.
	TLSConfig *tls.Config

	RequestTimeout        time.Duration
	SecureChannelLifetime time.Duration
	TickInterval          time.Duration

	EnableCompression    bool
	CompressionMinSize   int
	CompressionMinRatio  float64
	DisableDecompression bool

	// MaxBodyLen bounds inbound message bodies. Zero means no limit.
	MaxBodyLen int

	Logger *zap.Logger

	// TracerProvider and MeterProvider default to the otel global providers.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// connStrOptions is the query-string form of the tunables in ClientConfig.
type connStrOptions struct {
	Timeout              string `url:"timeout,omitempty"`
	Lifetime             string `url:"lifetime,omitempty"`
	Tick                 string `url:"tick,omitempty"`
	Compression          bool   `url:"compression,omitempty"`
	CompressionMinSize   int    `url:"compression_min_size,omitempty"`
	CompressionMinRatio  string `url:"compression_min_ratio,omitempty"`
	DisableDecompression bool   `url:"disable_decompression,omitempty"`
	MaxBodyLen           int    `url:"max_body_len,omitempty"`
}

// ParseConnStr builds a ClientConfig from a connection string such as
// opc.tcp://host:4840?timeout=5s&lifetime=1h&tick=50ms. The opc.tcps scheme
// enables TLS with a default tls.Config.
func ParseConnStr(connStr string) (*ClientConfig, error) {
	spec, err := gocbconnstr.Parse(connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse connection string")
	}

	config := &ClientConfig{}

	switch spec.Scheme {
	case schemeTCP, "":
	case schemeTCPTLS:
		config.TLSConfig = &tls.Config{}
	default:
		return nil, fmt.Errorf("unsupported connection string scheme %q", spec.Scheme)
	}

	if len(spec.Addresses) != 1 {
		return nil, fmt.Errorf("connection string must contain exactly one address, got %d", len(spec.Addresses))
	}
	if spec.Bucket != "" {
		return nil, fmt.Errorf("connection string must not contain a path, got %q", spec.Bucket)
	}

	addr := spec.Addresses[0]
	port := addr.Port
	if port <= 0 {
		port = DefaultPort
	}
	config.Endpoint = net.JoinHostPort(addr.Host, strconv.Itoa(port))

	for key, values := range spec.Options {
		if len(values) == 0 {
			continue
		}
		// the last occurrence of an option wins
		value := values[len(values)-1]

		err := config.applyOption(key, value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value for option %s", key)
		}
	}

	return config, nil
}

func (c *ClientConfig) applyOption(key, value string) error {
	var err error
	switch key {
	case "timeout":
		c.RequestTimeout, err = time.ParseDuration(value)
	case "lifetime":
		c.SecureChannelLifetime, err = time.ParseDuration(value)
	case "tick":
		c.TickInterval, err = time.ParseDuration(value)
	case "compression":
		c.EnableCompression, err = strconv.ParseBool(value)
	case "compression_min_size":
		c.CompressionMinSize, err = strconv.Atoi(value)
	case "compression_min_ratio":
		c.CompressionMinRatio, err = strconv.ParseFloat(value, 64)
	case "disable_decompression":
		c.DisableDecompression, err = strconv.ParseBool(value)
	case "max_body_len":
		c.MaxBodyLen, err = strconv.Atoi(value)
	default:
		return errors.New("unknown option")
	}
	return err
}

// ConnStr renders the config back into connection string form. The logger,
// telemetry providers and custom TLS settings are not representable.
func (c *ClientConfig) ConnStr() (string, error) {
	opts := connStrOptions{
		Compression:          c.EnableCompression,
		CompressionMinSize:   c.CompressionMinSize,
		DisableDecompression: c.DisableDecompression,
		MaxBodyLen:           c.MaxBodyLen,
	}
	if c.RequestTimeout > 0 {
		opts.Timeout = c.RequestTimeout.String()
	}
	if c.SecureChannelLifetime > 0 {
		opts.Lifetime = c.SecureChannelLifetime.String()
	}
	if c.TickInterval > 0 {
		opts.Tick = c.TickInterval.String()
	}
	if c.CompressionMinRatio > 0 {
		opts.CompressionMinRatio = strconv.FormatFloat(c.CompressionMinRatio, 'f', -1, 64)
	}

	values, err := query.Values(opts)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode connection string options")
	}

	scheme := schemeTCP
	if c.TLSConfig != nil {
		scheme = schemeTCPTLS
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(c.Endpoint)
	if encoded := values.Encode(); encoded != "" {
		sb.WriteString("?")
		sb.WriteString(encoded)
	}
	return sb.String(), nil
}

func (c *ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint must be specified")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	if c.SecureChannelLifetime < 0 {
		return errors.New("secure channel lifetime must not be negative")
	}
	if c.TickInterval < 0 {
		return errors.New("tick interval must not be negative")
	}
	if c.CompressionMinRatio < 0 || c.CompressionMinRatio > 1 {
		return errors.New("compression min ratio must be between 0 and 1")
	}
	if c.MaxBodyLen < 0 {
		return errors.New("max body length must not be negative")
	}
	return nil
}
