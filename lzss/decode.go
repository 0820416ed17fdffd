// Package lzss expands the LZSS-compressed graphics lumps stored in the game WAD into
// flat pixel buffers.
//
// A compressed stream is a sequence of groups. Each group starts with a control byte whose
// bits, consumed low bit first, describe the next eight items. A clear bit is a literal: one
// source palette index, translated through a Palette. A set bit is a back-reference: two bytes
// holding a 12-bit distance and a 4-bit length. A back-reference whose length decodes to 1
// terminates the stream.
package lzss

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	lengthShift = 4
	lengthMask  = 0xf
)

// ErrCorruptStream is returned when a stream cannot be decoded into its destination: a
// back-reference points before the start of the output, the input ends before the terminating
// reference, or the output buffer is too small for the stream.
var ErrCorruptStream = errors.New("corrupt lzss stream")

// Decode expands input into output, which must already be sized to hold the decoded lump.
// It returns the number of pixels written. Decode never allocates and never writes past
// the end of output.
func Decode(input io.ByteReader, output []Pixel, palette *Palette) (int, error) {
	var written int
	var control byte
	var bit uint

	for {
		if bit == 0 {
			b, err := input.ReadByte()
			if err != nil {
				return written, truncated(err, written)
			}
			control = b
		}
		bit = (bit + 1) & 7

		if control&1 == 0 {
			index, err := input.ReadByte()
			if err != nil {
				return written, truncated(err, written)
			}
			if written >= len(output) {
				return written, errors.Wrapf(ErrCorruptStream, "literal at pixel %d overflows a %d pixel buffer", written, len(output))
			}

			output[written] = palette[index]
			written++
		} else {
			hi, err := input.ReadByte()
			if err != nil {
				return written, truncated(err, written)
			}
			lo, err := input.ReadByte()
			if err != nil {
				return written, truncated(err, written)
			}

			pos := int(hi)<<lengthShift | int(lo)>>lengthShift
			length := int(lo&lengthMask) + 1
			if length == 1 {
				return written, nil
			}

			source := written - pos - 1
			if source < 0 {
				return written, errors.Wrapf(ErrCorruptStream, "back-reference distance %d at pixel %d reaches before the buffer", pos+1, written)
			}
			if written+length > len(output) {
				return written, errors.Wrapf(ErrCorruptStream, "back-reference of %d pixels at pixel %d overflows a %d pixel buffer", length, written, len(output))
			}

			// Byte at a time: a short distance must see the pixels this copy just wrote.
			for i := 0; i < length; i++ {
				output[written] = output[source]
				written++
				source++
			}
		}

		control >>= 1
	}
}

// DecodeBytes is Decode over an in-memory stream.
func DecodeBytes(input []byte, output []Pixel, palette *Palette) (int, error) {
	return Decode(bytes.NewReader(input), output, palette)
}

// Translate expands an uncompressed lump, one palette index per pixel. It returns the number
// of pixels written, which is the smaller of the two lengths.
func Translate(input []byte, output []Pixel, palette *Palette) int {
	n := len(input)
	if len(output) < n {
		n = len(output)
	}

	for i := 0; i < n; i++ {
		output[i] = palette[input[i]]
	}

	return n
}

func truncated(err error, written int) error {
	if errors.Is(err, io.EOF) {
		return errors.Wrapf(ErrCorruptStream, "input ended after %d pixels without an end marker", written)
	}
	return errors.Wrap(err, "failed to read lzss stream")
}
