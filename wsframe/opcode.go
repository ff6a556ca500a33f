// Package wsframe implements the message-framing layer: WebSocket-style
// opcodes, a frame encoder with RFC 6455 header structure, a reference
// decoder, and fragmentation of one logical text message into an ordered
// sequence of wire frames.
package wsframe

// Opcode is the small tag identifying a wire frame's role. The frame encoder
// consumes it to build the wire header.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

const (
	finBit  = 0x80
	maskBit = 0x80
)

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return "unknown"
	}
}

// IsControl reports whether the opcode identifies a control frame.
func (op Opcode) IsControl() bool {
	return op >= OpcodeClose
}
