package wsframe

import (
	"encoding/binary"
	"math/rand/v2"
)

// Encoder encodes a single protocol frame into wire bytes. The encoder owns
// all wire-level header structure: the FIN marker, payload-length encoding,
// and masking. Callers supply only the opcode, the finality of the fragment
// within its logical message, and the payload.
type Encoder interface {
	// Encode builds the wire bytes for one frame.
	//
	// Parameters:
	//   - op: The frame's opcode
	//   - fin: Whether this frame is the final fragment of its message
	//   - payload: The frame payload; not modified
	//
	// Returns:
	//   - The complete wire frame (header followed by payload)
	Encode(op Opcode, fin bool, payload []byte) []byte
}

// HeaderEncoder is the default Encoder. It writes a standard frame header:
// FIN bit, opcode, 7/16/64-bit payload length, and an optional masking key.
// Server-to-client frames are sent unmasked; set MaskFrames for
// client-to-server traffic.
type HeaderEncoder struct {
	// MaskFrames enables payload masking with a fresh random key per frame.
	MaskFrames bool
}

// NewHeaderEncoder returns a HeaderEncoder that emits unmasked frames.
//
// Returns:
//   - A new HeaderEncoder
func NewHeaderEncoder() *HeaderEncoder {
	return &HeaderEncoder{}
}

// Encode implements Encoder.
func (e *HeaderEncoder) Encode(op Opcode, fin bool, payload []byte) []byte {
	var b0 byte
	if fin {
		b0 = finBit
	}
	b0 |= byte(op) & 0x0F

	var mask byte
	if e.MaskFrames {
		mask = maskBit
	}

	n := len(payload)
	frame := make([]byte, 0, maxHeaderLen+n)
	frame = append(frame, b0)

	switch {
	case n <= 125:
		frame = append(frame, byte(n)|mask)
	case n <= 0xFFFF:
		frame = append(frame, 126|mask)
		frame = binary.BigEndian.AppendUint16(frame, uint16(n))
	default:
		frame = append(frame, 127|mask)
		frame = binary.BigEndian.AppendUint64(frame, uint64(n))
	}

	if !e.MaskFrames {
		return append(frame, payload...)
	}

	var key [4]byte
	binary.BigEndian.PutUint32(key[:], rand.Uint32())
	frame = append(frame, key[:]...)

	start := len(frame)
	frame = append(frame, payload...)
	maskInPlace(frame[start:], key)

	return frame
}

// maxHeaderLen is the worst-case header size: 2 base bytes, an 8-byte
// extended length, and a 4-byte masking key.
const maxHeaderLen = 14

// maskInPlace applies the masking key to data. Masking and unmasking are the
// same XOR transform.
func maskInPlace(data []byte, key [4]byte) {
	for i := range data {
		data[i] ^= key[i%4]
	}
}
