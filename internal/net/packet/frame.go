package packet

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the fixed on-wire size of a frame header:
// protocol_version(2) + type(2) + payload_size(4) + reserved(8).
const HeaderSize = 16

// MaxPayloadSize bounds a single frame's payload so a corrupt or hostile
// length field can't force an unbounded allocation.
const MaxPayloadSize = 1 << 20

// Header is the fixed frame header preceding every payload on the wire.
type Header struct {
	ProtocolVersion uint16
	Type            MessageType
	PayloadSize     uint32
	Reserved        uint64
}

// ReadMessage reads one framed message: a fixed header followed by
// payload_size bytes of UTF-8 text. The protocol_version is returned but
// never enforced — mismatches are the caller's concern to log.
func ReadMessage(r io.Reader) (Header, []byte, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, nil, fmt.Errorf("read frame header: %w", err)
	}
	h := Header{
		ProtocolVersion: binary.LittleEndian.Uint16(buf[0:2]),
		Type:            MessageType(binary.LittleEndian.Uint16(buf[2:4])),
		PayloadSize:     binary.LittleEndian.Uint32(buf[4:8]),
		Reserved:        binary.LittleEndian.Uint64(buf[8:16]),
	}
	if h.PayloadSize > MaxPayloadSize {
		return Header{}, nil, fmt.Errorf("frame payload too large: %d bytes", h.PayloadSize)
	}
	payload := make([]byte, h.PayloadSize)
	if h.PayloadSize > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Header{}, nil, fmt.Errorf("read frame payload (%d bytes): %w", h.PayloadSize, err)
		}
	}
	return h, payload, nil
}

// WriteMessage writes one framed message with CurrentProtocolVersion and a
// zero reserved field.
func WriteMessage(w io.Writer, typ MessageType, payload []byte) error {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], CurrentProtocolVersion)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(typ))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint64(buf[8:16], 0)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}
