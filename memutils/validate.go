package memutils

import "encoding/binary"

// Validatable is used by the DebugValidate method to allow it to act upon
// all types with a Validate method
type Validatable interface {
	Validate() error
}

const (
	// HeaderMagicSize is the number of bytes at the start of every used block header
	// that hold the corruption marker
	HeaderMagicSize int = 4
	// headerMagicValue is the marker stamped into the header of every used zone block. It matches
	// the block id the refzone allocator wrote into its headers.
	headerMagicValue uint32 = 0x1d4a11
)

// WriteHeaderMagic writes the block header marker into region at offset.
func WriteHeaderMagic(region []byte, offset int) {
	binary.LittleEndian.PutUint32(region[offset:offset+HeaderMagicSize], headerMagicValue)
}

// ClearHeaderMagic erases the block header marker at offset, so that a stale header is never
// mistaken for a live one.
func ClearHeaderMagic(region []byte, offset int) {
	binary.LittleEndian.PutUint32(region[offset:offset+HeaderMagicSize], 0)
}

// ValidateHeaderMagic returns true if the marker written by WriteHeaderMagic is still present.
func ValidateHeaderMagic(region []byte, offset int) bool {
	if offset < 0 || offset+HeaderMagicSize > len(region) {
		return false
	}
	return binary.LittleEndian.Uint32(region[offset:offset+HeaderMagicSize]) == headerMagicValue
}
