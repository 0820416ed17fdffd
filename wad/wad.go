// Package wad reads the lump directory of a WAD archive and hands out the stored bytes of each
// lump. Graphics lumps may be LZSS compressed, which is marked by the high bit of the first
// character of the lump name.
package wad

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/exp/slices"
)

const (
	headerSize    = 12
	entrySize     = 16
	nameSize      = 8
	compressedBit = 0x80
)

var (
	// ErrInvalidHeader is returned when the data does not start with a WAD header
	ErrInvalidHeader = errors.New("invalid wad header")
	// ErrInvalidDirectory is returned when the lump directory or a lump lies outside the file
	ErrInvalidDirectory = errors.New("invalid wad directory")
	// ErrLumpNotFound is returned by NumForName when no lump carries the requested name
	ErrLumpNotFound = errors.New("lump not found")
	// ErrLumpOutOfRange is returned for lump numbers outside [0, NumLumps())
	ErrLumpOutOfRange = errors.New("lump number out of range")
)

// Options contains optional settings when parsing a WAD
type Options struct {
	// ByteOrder of the header and directory fields. nil selects big-endian, which is how
	// console WADs are stored.
	ByteOrder binary.ByteOrder
}

// LumpInfo describes one directory entry
type LumpInfo struct {
	// Name is the upper-cased lump name with the compression bit removed
	Name string
	// Offset is the position of the lump's stored bytes within the file
	Offset int
	// StoredLen is the number of bytes the lump occupies in the file
	StoredLen int
	// DecodedLen is the number of pixels the lump expands to. For an uncompressed lump every
	// stored byte is one pixel.
	DecodedLen int
	// Compressed is set when the stored bytes are an LZSS stream
	Compressed bool
}

// File is a parsed WAD held in memory. It is read-only after Parse and safe for concurrent
// readers.
type File struct {
	data  []byte
	lumps []LumpInfo
	names *swiss.Map[string, int]

	closer func() error
}

// Parse reads the header and lump directory from data. The returned File refers to data
// without copying it.
func Parse(data []byte, options Options) (*File, error) {
	order := options.ByteOrder
	if order == nil {
		order = binary.BigEndian
	}

	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrInvalidHeader, "%d bytes is too short for a header", len(data))
	}
	id := string(data[0:4])
	if id != "IWAD" && id != "PWAD" {
		return nil, errors.Wrapf(ErrInvalidHeader, "unknown identification %q", id)
	}

	numLumps := int64(int32(order.Uint32(data[4:8])))
	tableOffset := int64(order.Uint32(data[8:12]))
	if numLumps < 0 {
		return nil, errors.Wrapf(ErrInvalidHeader, "negative lump count %d", numLumps)
	}
	if tableOffset+numLumps*entrySize > int64(len(data)) {
		return nil, errors.Wrapf(ErrInvalidDirectory, "%d entries at offset %d exceed a %d byte file", numLumps, tableOffset, len(data))
	}

	f := &File{
		data:  data,
		lumps: make([]LumpInfo, numLumps),
		names: swiss.NewMap[string, int](uint32(numLumps)),
	}

	// Compressed lumps do not record their stored length; it runs up to the next lump, the
	// directory or the end of the file, whichever comes first.
	boundaries := make([]int, 0, numLumps+2)
	boundaries = append(boundaries, int(tableOffset), len(data))

	for i := range f.lumps {
		entry := data[tableOffset+int64(i)*entrySize:]
		position := int64(order.Uint32(entry[0:4]))
		size := int64(int32(order.Uint32(entry[4:8])))

		if size < 0 || position > int64(len(data)) {
			return nil, errors.Wrapf(ErrInvalidDirectory, "lump %d has position %d and size %d", i, position, size)
		}

		rawName := entry[8 : 8+nameSize]
		f.lumps[i] = LumpInfo{
			Name:       normalizeName(rawName),
			Offset:     int(position),
			DecodedLen: int(size),
			Compressed: rawName[0]&compressedBit != 0,
		}
		boundaries = append(boundaries, int(position))
	}

	slices.Sort(boundaries)
	boundaries = slices.Compact(boundaries)

	for i := range f.lumps {
		lump := &f.lumps[i]

		if lump.Compressed {
			index, found := slices.BinarySearch(boundaries, lump.Offset)
			if found {
				index++
			}
			end := len(data)
			if index < len(boundaries) {
				end = boundaries[index]
			}
			lump.StoredLen = end - lump.Offset
		} else {
			lump.StoredLen = lump.DecodedLen
			if lump.Offset+lump.StoredLen > len(data) {
				return nil, errors.Wrapf(ErrInvalidDirectory, "lump %d (%s) runs past the end of the file", i, lump.Name)
			}
		}

		// Later lumps replace earlier ones of the same name
		f.names.Put(lump.Name, i)
	}

	return f, nil
}

// Open reads name from fs and parses it
func Open(fs billy.Basic, name string, options Options) (*File, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read wad %s", name)
	}

	f, err := Parse(data, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse wad %s", name)
	}
	return f, nil
}

// Close releases the file's backing storage. The File and every slice returned from it must
// not be used afterwards.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	closer := f.closer
	f.closer = nil
	f.data = nil
	return closer()
}

// NumLumps returns the number of directory entries
func (f *File) NumLumps() int { return len(f.lumps) }

// CheckNumForName returns the number of the last lump named name, or -1 if there is none.
// Names are compared case-insensitively.
func (f *File) CheckNumForName(name string) int {
	lump, ok := f.names.Get(normalizeName([]byte(name)))
	if !ok {
		return -1
	}
	return lump
}

// NumForName is CheckNumForName reporting a missing lump as ErrLumpNotFound
func (f *File) NumForName(name string) (int, error) {
	lump := f.CheckNumForName(name)
	if lump < 0 {
		return -1, errors.Wrapf(ErrLumpNotFound, "%q", name)
	}
	return lump, nil
}

func (f *File) LumpInfo(lump int) (LumpInfo, error) {
	if lump < 0 || lump >= len(f.lumps) {
		return LumpInfo{}, errors.Wrapf(ErrLumpOutOfRange, "lump %d of %d", lump, len(f.lumps))
	}
	return f.lumps[lump], nil
}

// LumpData returns the stored bytes of a lump. The slice aliases the file's storage.
func (f *File) LumpData(lump int) ([]byte, error) {
	info, err := f.LumpInfo(lump)
	if err != nil {
		return nil, err
	}
	end := info.Offset + info.StoredLen
	return f.data[info.Offset:end:end], nil
}

// LumpReader returns a reader positioned at the start of a lump's stored bytes
func (f *File) LumpReader(lump int) (io.ByteReader, error) {
	data, err := f.LumpData(lump)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
