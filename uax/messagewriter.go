package uax

import (
	"encoding/binary"
	"io"
	"math"
)

const messageHeaderLen = 20

type MessageWriter struct {
	// heap-allocated since io.Write causes the buffer to escape anyway.
	writeBuf []byte
}

func (mw *MessageWriter) WriteMessage(w io.Writer, msg *Message) error {
	if msg.Magic != MagicReq && msg.Magic != MagicRes {
		return protocolError{"invalid magic for message encoding"}
	}

	bodyLen := len(msg.Body)
	if bodyLen > math.MaxUint32-messageHeaderLen {
		return protocolError{"body too long to encode"}
	}

	totalLen := messageHeaderLen + bodyLen
	if cap(mw.writeBuf) < totalLen {
		mw.writeBuf = make([]byte, totalLen)
	}
	buf := mw.writeBuf[:totalLen]

	buf[0] = uint8(msg.Magic)
	buf[1] = uint8(msg.Flags)
	binary.LittleEndian.PutUint16(buf[2:], uint16(msg.ServiceType))
	binary.LittleEndian.PutUint32(buf[4:], msg.RequestID)
	binary.LittleEndian.PutUint32(buf[8:], msg.RequestHandle)
	if msg.Magic == MagicRes {
		binary.LittleEndian.PutUint32(buf[12:], uint32(msg.Status))
	} else {
		binary.LittleEndian.PutUint32(buf[12:], 0)
	}
	binary.LittleEndian.PutUint32(buf[16:], uint32(bodyLen))
	copy(buf[messageHeaderLen:], msg.Body)

	_, err := w.Write(buf)
	return err
}
