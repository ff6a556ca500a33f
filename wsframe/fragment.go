package wsframe

import (
	"errors"
	"iter"
)

// ErrNilFragments is returned by NewTextFragments when the fragment list is
// absent. An empty list is valid and yields zero frames.
var ErrNilFragments = errors.New("fragment list must not be nil")

// TextFragments decomposes one logical text message, pre-split by the caller
// into the desired chunk boundaries, into an ordered sequence of wire frames.
// The first fragment is encoded with the text opcode, every subsequent
// fragment with the continuation opcode, and the final fragment carries the
// FIN marker. TextFragments does not decide chunk sizes.
type TextFragments struct {
	fragments []string
	encoder   Encoder
}

// NewTextFragments wraps an ordered fragment list for framing. The list is
// not copied and must not be mutated afterwards.
//
// Parameters:
//   - fragments: The message's fragments in order; must not be nil
//   - encoder: The frame encoder to use; nil selects a HeaderEncoder
//     emitting unmasked frames
//
// Returns:
//   - A new TextFragments, or ErrNilFragments when fragments is nil
func NewTextFragments(fragments []string, encoder Encoder) (*TextFragments, error) {
	if fragments == nil {
		return nil, ErrNilFragments
	}

	if encoder == nil {
		encoder = NewHeaderEncoder()
	}

	return &TextFragments{
		fragments: fragments,
		encoder:   encoder,
	}, nil
}

// Len returns the number of fragments, which equals the number of frames
// Frames will yield.
func (t *TextFragments) Len() int {
	return len(t.fragments)
}

// Frames returns a lazy sequence of wire-ready frames, one per fragment, in
// fragment order. Each frame is encoded on demand; the sequence may be
// iterated any number of times and always restarts from the first fragment.
//
// Returns:
//   - An iterator over encoded wire frames
func (t *TextFragments) Frames() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		last := len(t.fragments) - 1
		for i, fragment := range t.fragments {
			op := OpcodeContinuation
			if i == 0 {
				op = OpcodeText
			}

			if !yield(t.encoder.Encode(op, i == last, []byte(fragment))) {
				return
			}
		}
	}
}
