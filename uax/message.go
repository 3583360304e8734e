package uax

type Magic uint8

const (
	MagicReq = Magic(0x55)
	MagicRes = Magic(0x56)
)

func (m Magic) IsRequest() bool {
	return m == MagicReq
}

func (m Magic) String() string {
	switch m {
	case MagicReq:
		return "Req"
	case MagicRes:
		return "Res"
	}
	return "Unknown"
}

type MessageFlag uint8

const (
	// MessageFlagCompressed marks a body that was compressed by the connection's
	// Compressor before being written.
	MessageFlagCompressed = MessageFlag(0x01)
)

// Message is the envelope every request and response travels in. The Body is
// the encoded service request or response produced by a Codec.
type Message struct {
	Magic         Magic
	Flags         MessageFlag
	ServiceType   ServiceType
	RequestID     uint32
	RequestHandle uint32
	Status        StatusCode // Only valid for Res-type messages
	Body          []byte
}
