package uax

import (
	"encoding/binary"
	"io"
)

// DefaultMaxBodyLen bounds the body of a single inbound message.
const DefaultMaxBodyLen = 16 * 1024 * 1024

type MessageReader struct {
	// MaxBodyLen defaults to DefaultMaxBodyLen when zero.
	MaxBodyLen int

	readHeaderBuf []byte
}

func (mr *MessageReader) ReadMessage(r io.Reader, msg *Message) error {
	if len(mr.readHeaderBuf) != messageHeaderLen {
		mr.readHeaderBuf = make([]byte, messageHeaderLen)
	}
	headerBuf := mr.readHeaderBuf

	_, err := io.ReadFull(r, headerBuf)
	if err != nil {
		return err
	}

	msg.Magic = Magic(headerBuf[0])
	if msg.Magic != MagicReq && msg.Magic != MagicRes {
		return protocolError{"invalid magic for message decoding"}
	}

	msg.Flags = MessageFlag(headerBuf[1])
	msg.ServiceType = ServiceType(binary.LittleEndian.Uint16(headerBuf[2:]))
	msg.RequestID = binary.LittleEndian.Uint32(headerBuf[4:])
	msg.RequestHandle = binary.LittleEndian.Uint32(headerBuf[8:])
	if msg.Magic == MagicRes {
		msg.Status = StatusCode(binary.LittleEndian.Uint32(headerBuf[12:]))
	} else {
		msg.Status = StatusGood
	}

	maxBodyLen := mr.MaxBodyLen
	if maxBodyLen <= 0 {
		maxBodyLen = DefaultMaxBodyLen
	}

	bodyLen := binary.LittleEndian.Uint32(headerBuf[16:])
	if uint64(bodyLen) > uint64(maxBodyLen) {
		return protocolError{"message body exceeds maximum length"}
	}

	// the body always escapes through the Message, so allocate it fresh.
	body := make([]byte, bodyLen)
	_, err = io.ReadFull(r, body)
	if err != nil {
		return err
	}
	msg.Body = body

	return nil
}
