package uacorex

import (
	"errors"

	"github.com/golang/snappy"
	"github.com/opcuax/uacorex/uax"
)

const (
	DefaultCompressionMinSize  = 32
	DefaultCompressionMinRatio = 0.83
)

var ErrDecompressionDisabled = errors.New("decompression is disabled")

// CompressionManagerDefault compresses message bodies with snappy.
type CompressionManagerDefault struct {
	compressionMinSize  int
	compressionMinRatio float64

	// Some deployments want compressed responses rejected rather than
	// inflated, e.g. when body sizes are capped on the receive side.
	disableDecompression bool
}

var _ uax.Compressor = (*CompressionManagerDefault)(nil)

type CompressionManagerOptions struct {
	MinSize              int
	MinRatio             float64
	DisableDecompression bool
}

func NewCompressionManagerDefault(opts *CompressionManagerOptions) *CompressionManagerDefault {
	if opts == nil {
		opts = &CompressionManagerOptions{}
	}

	minSize := opts.MinSize
	if minSize <= 0 {
		minSize = DefaultCompressionMinSize
	}

	minRatio := opts.MinRatio
	if minRatio <= 0 || minRatio > 1 {
		minRatio = DefaultCompressionMinRatio
	}

	return &CompressionManagerDefault{
		compressionMinSize:   minSize,
		compressionMinRatio:  minRatio,
		disableDecompression: opts.DisableDecompression,
	}
}

func (cmd *CompressionManagerDefault) Compress(body []byte) ([]byte, bool) {
	bodySize := len(body)
	// Only compress bodies that are large enough to be worthwhile.
	if bodySize <= cmd.compressionMinSize {
		return body, false
	}

	compressed := snappy.Encode(nil, body)
	// Only use the compressed body if the ratio of compressed:original is small enough.
	if float64(len(compressed))/float64(bodySize) > cmd.compressionMinRatio {
		return body, false
	}

	return compressed, true
}

func (cmd *CompressionManagerDefault) Decompress(body []byte) ([]byte, error) {
	if cmd.disableDecompression {
		return nil, ErrDecompressionDisabled
	}

	return snappy.Decode(nil, body)
}
