package uax

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Codec serializes service bodies. Requests are encoded by the client side,
// responses decoded into the empty value produced by a ResponseShape.
type Codec interface {
	EncodeRequest(req Request) ([]byte, error)
	DecodeResponse(body []byte, resp Response) error
}

// JSONCodec encodes service bodies as JSON. It also provides the server-side
// halves used by peers and test harnesses.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) EncodeRequest(req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s request", req.ServiceType())
	}
	return body, nil
}

func (JSONCodec) DecodeResponse(body []byte, resp Response) error {
	if err := json.Unmarshal(body, resp); err != nil {
		return errors.Wrap(err, "unmarshal response")
	}
	return nil
}

func (JSONCodec) DecodeRequest(body []byte, req Request) error {
	if err := json.Unmarshal(body, req); err != nil {
		return errors.Wrapf(err, "unmarshal %s request", req.ServiceType())
	}
	return nil
}

func (JSONCodec) EncodeResponse(resp Response) ([]byte, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "marshal response")
	}
	return body, nil
}
