package wsframe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadLen bounds the payload size Decode will accept. Oversized frames
// are rejected before the payload is read so a hostile peer cannot force an
// arbitrarily large allocation.
const MaxPayloadLen = 1 << 20 // 1 MiB

// Frame is one decoded wire frame.
type Frame struct {
	Fin     bool   // Final fragment of its logical message
	Opcode  Opcode // The frame's role
	Masked  bool   // Whether the wire payload was masked
	Payload []byte // Unmasked payload bytes
}

// Decode reads one complete frame from r. Masked payloads are unmasked
// before being returned. Decode is the frame consumer used for protocol
// conformance checks; it validates structure, not message semantics.
//
// Parameters:
//   - r: The stream to read a single frame from
//
// Returns:
//   - The decoded frame, or an error if the stream ends mid-frame or the
//     payload exceeds MaxPayloadLen
func Decode(r io.Reader) (*Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	fin := hdr[0]&finBit != 0
	opcode := Opcode(hdr[0] & 0x0F)
	masked := hdr[1]&maskBit != 0
	payloadLen := uint64(hdr[1] & 0x7F)

	switch payloadLen {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = binary.BigEndian.Uint64(ext[:])
	}

	if payloadLen > MaxPayloadLen {
		return nil, fmt.Errorf("frame payload of %d bytes exceeds limit of %d", payloadLen, MaxPayloadLen)
	}

	var key [4]byte
	if masked {
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return nil, err
		}
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	if masked {
		maskInPlace(payload, key)
	}

	return &Frame{
		Fin:     fin,
		Opcode:  opcode,
		Masked:  masked,
		Payload: payload,
	}, nil
}
