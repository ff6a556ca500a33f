package wsframe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncoder_Encode(t *testing.T) {
	enc := NewHeaderEncoder()

	t.Run("short payload uses 7-bit length", func(t *testing.T) {
		frame := enc.Encode(OpcodeText, true, []byte("Hello"))
		require.Len(t, frame, 2+5)
		assert.Equal(t, byte(0x81), frame[0], "FIN bit and text opcode")
		assert.Equal(t, byte(5), frame[1])
		assert.Equal(t, []byte("Hello"), frame[2:])
	})

	t.Run("empty payload", func(t *testing.T) {
		frame := enc.Encode(OpcodeText, true, nil)
		require.Len(t, frame, 2)
		assert.Equal(t, byte(0), frame[1])
	})

	t.Run("fin false leaves FIN bit clear", func(t *testing.T) {
		frame := enc.Encode(OpcodeText, false, []byte("x"))
		assert.Equal(t, byte(0x01), frame[0])
	})

	t.Run("continuation opcode", func(t *testing.T) {
		frame := enc.Encode(OpcodeContinuation, true, []byte("x"))
		assert.Equal(t, byte(0x80), frame[0])
	})

	t.Run("126-byte payload uses 16-bit extended length", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), 126)
		frame := enc.Encode(OpcodeBinary, true, payload)
		require.Len(t, frame, 4+126)
		assert.Equal(t, byte(126), frame[1])
		assert.Equal(t, byte(0), frame[2])
		assert.Equal(t, byte(126), frame[3])
	})

	t.Run("large payload uses 64-bit extended length", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), 0x10000)
		frame := enc.Encode(OpcodeBinary, true, payload)
		require.Len(t, frame, 10+0x10000)
		assert.Equal(t, byte(127), frame[1])
	})
}

func TestHeaderEncoder_roundtrip(t *testing.T) {
	cases := []struct {
		name    string
		op      Opcode
		fin     bool
		payload []byte
	}{
		{"text final", OpcodeText, true, []byte("Hello, world")},
		{"continuation non-final", OpcodeContinuation, false, []byte("part")},
		{"binary empty", OpcodeBinary, true, []byte{}},
		{"text extended 16-bit", OpcodeText, true, bytes.Repeat([]byte("b"), 300)},
		{"binary extended 64-bit", OpcodeBinary, true, bytes.Repeat([]byte("c"), 0x10001)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := NewHeaderEncoder()
			wire := enc.Encode(tc.op, tc.fin, tc.payload)

			frame, err := Decode(bytes.NewReader(wire))
			require.NoError(t, err)
			assert.Equal(t, tc.fin, frame.Fin)
			assert.Equal(t, tc.op, frame.Opcode)
			assert.False(t, frame.Masked)
			assert.Equal(t, tc.payload, frame.Payload)
		})
	}
}

func TestHeaderEncoder_masked_roundtrip(t *testing.T) {
	enc := &HeaderEncoder{MaskFrames: true}
	payload := []byte("masked payload")

	wire := enc.Encode(OpcodeText, true, payload)
	assert.NotEqual(t, payload, wire[len(wire)-len(payload):], "wire payload must not be plaintext")

	frame, err := Decode(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.True(t, frame.Masked)
	assert.Equal(t, payload, frame.Payload)
}

func TestHeaderEncoder_does_not_modify_payload(t *testing.T) {
	enc := &HeaderEncoder{MaskFrames: true}
	payload := []byte("immutable")
	original := append([]byte(nil), payload...)

	enc.Encode(OpcodeText, true, payload)
	assert.Equal(t, original, payload)
}

func TestDecode_errors(t *testing.T) {
	t.Run("truncated header", func(t *testing.T) {
		_, err := Decode(bytes.NewReader([]byte{0x81}))
		assert.Error(t, err)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := Decode(bytes.NewReader([]byte{0x81, 5, 'H', 'e'}))
		assert.Error(t, err)
	})

	t.Run("oversized payload rejected before read", func(t *testing.T) {
		header := []byte{0x82, 127, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}
		_, err := Decode(bytes.NewReader(header))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds limit")
	})
}

func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "text", OpcodeText.String())
	assert.Equal(t, "continuation", OpcodeContinuation.String())
	assert.Equal(t, "close", OpcodeClose.String())
	assert.Equal(t, "unknown", Opcode(0x7).String())
}

func TestOpcode_IsControl(t *testing.T) {
	assert.False(t, OpcodeText.IsControl())
	assert.False(t, OpcodeContinuation.IsControl())
	assert.True(t, OpcodeClose.IsControl())
	assert.True(t, OpcodePing.IsControl())
	assert.True(t, OpcodePong.IsControl())
}
