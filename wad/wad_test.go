package wad_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/calicoport/gfxzone/wad"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

type testLump struct {
	name       string
	data       []byte
	compressed bool
	// decoded overrides the size field for compressed lumps
	decoded int
}

func buildWad(order binary.ByteOrder, lumps []testLump) []byte {
	var body bytes.Buffer
	positions := make([]int, len(lumps))
	for i, lump := range lumps {
		positions[i] = 12 + body.Len()
		body.Write(lump.data)
	}

	var out bytes.Buffer
	out.WriteString("PWAD")
	header := make([]byte, 8)
	order.PutUint32(header[0:4], uint32(len(lumps)))
	order.PutUint32(header[4:8], uint32(12+body.Len()))
	out.Write(header)
	out.Write(body.Bytes())

	for i, lump := range lumps {
		entry := make([]byte, 16)
		size := len(lump.data)
		if lump.compressed {
			size = lump.decoded
		}
		order.PutUint32(entry[0:4], uint32(positions[i]))
		order.PutUint32(entry[4:8], uint32(size))
		copy(entry[8:], lump.name)
		if lump.compressed {
			entry[8] |= 0x80
		}
		out.Write(entry)
	}

	return out.Bytes()
}

var fixtureLumps = []testLump{
	{name: "S_START", data: nil},
	{name: "M_DOOM", data: []byte{0x00, 1, 2, 3, 4, 5, 6, 7, 8, 0x00, 0x00}, compressed: true, decoded: 8},
	{name: "M_SKULL1", data: []byte{9, 10, 11}},
	{name: "S_END", data: nil},
	{name: "m_doom", data: []byte{0x01, 0x00, 0x00}, compressed: true, decoded: 0},
}

func TestParseDirectory(t *testing.T) {
	f, err := wad.Parse(buildWad(binary.BigEndian, fixtureLumps), wad.Options{})
	require.NoError(t, err)
	require.Equal(t, 5, f.NumLumps())

	info, err := f.LumpInfo(1)
	require.NoError(t, err)
	require.Equal(t, wad.LumpInfo{
		Name:       "M_DOOM",
		Offset:     12,
		StoredLen:  11,
		DecodedLen: 8,
		Compressed: true,
	}, info)

	info, err = f.LumpInfo(2)
	require.NoError(t, err)
	require.Equal(t, wad.LumpInfo{
		Name:       "M_SKULL1",
		Offset:     23,
		StoredLen:  3,
		DecodedLen: 3,
	}, info)

	// The last compressed lump runs up to the directory
	info, err = f.LumpInfo(4)
	require.NoError(t, err)
	require.Equal(t, "M_DOOM", info.Name)
	require.Equal(t, 3, info.StoredLen)

	data, err := f.LumpData(2)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 10, 11}, data)

	_, err = f.LumpInfo(5)
	require.True(t, errors.Is(err, wad.ErrLumpOutOfRange))
	_, err = f.LumpInfo(-1)
	require.True(t, errors.Is(err, wad.ErrLumpOutOfRange))
}

func TestLumpNames(t *testing.T) {
	f, err := wad.Parse(buildWad(binary.BigEndian, fixtureLumps), wad.Options{})
	require.NoError(t, err)

	// The later of two lumps with the same name wins
	require.Equal(t, 4, f.CheckNumForName("M_DOOM"))
	require.Equal(t, 4, f.CheckNumForName("m_doom"))
	require.Equal(t, 2, f.CheckNumForName("m_skull1"))
	require.Equal(t, -1, f.CheckNumForName("M_SKULL2"))

	lump, err := f.NumForName("s_end")
	require.NoError(t, err)
	require.Equal(t, 3, lump)

	_, err = f.NumForName("M_SKULL2")
	require.True(t, errors.Is(err, wad.ErrLumpNotFound))
}

func TestLumpReader(t *testing.T) {
	f, err := wad.Parse(buildWad(binary.BigEndian, fixtureLumps), wad.Options{})
	require.NoError(t, err)

	reader, err := f.LumpReader(2)
	require.NoError(t, err)

	var read []byte
	for {
		b, err := reader.ReadByte()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		read = append(read, b)
	}
	require.Equal(t, []byte{9, 10, 11}, read)
}

func TestParseByteOrder(t *testing.T) {
	data := buildWad(binary.LittleEndian, fixtureLumps)

	f, err := wad.Parse(data, wad.Options{ByteOrder: binary.LittleEndian})
	require.NoError(t, err)
	require.Equal(t, 2, f.CheckNumForName("M_SKULL1"))

	// Read as big-endian, the lump count is far too large for the file
	_, err = wad.Parse(data, wad.Options{})
	require.Error(t, err)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := wad.Parse([]byte("IWAD"), wad.Options{})
	require.True(t, errors.Is(err, wad.ErrInvalidHeader))

	_, err = wad.Parse([]byte("XWAD\x00\x00\x00\x00\x00\x00\x00\x0c"), wad.Options{})
	require.True(t, errors.Is(err, wad.ErrInvalidHeader))

	data := buildWad(binary.BigEndian, []testLump{{name: "A", data: []byte{1, 2, 3, 4}}})
	// Claim the uncompressed lump is longer than the file
	directory := len(data) - 16
	binary.BigEndian.PutUint32(data[directory+4:], 1000)
	_, err = wad.Parse(data, wad.Options{})
	require.True(t, errors.Is(err, wad.ErrInvalidDirectory))

	data = buildWad(binary.BigEndian, nil)
	binary.BigEndian.PutUint32(data[4:], 3)
	_, err = wad.Parse(data, wad.Options{})
	require.True(t, errors.Is(err, wad.ErrInvalidDirectory))
}

func TestOpenFromFilesystem(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "doom.wad", buildWad(binary.BigEndian, fixtureLumps), 0o644))

	f, err := wad.Open(fs, "doom.wad", wad.Options{})
	require.NoError(t, err)
	require.Equal(t, 5, f.NumLumps())
	require.NoError(t, f.Close())

	_, err = wad.Open(fs, "missing.wad", wad.Options{})
	require.Error(t, err)
}

func TestOpenMapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doom.wad")
	require.NoError(t, os.WriteFile(path, buildWad(binary.BigEndian, fixtureLumps), 0o644))

	f, err := wad.OpenMapped(path, wad.Options{})
	require.NoError(t, err)

	data, err := f.LumpData(1)
	require.NoError(t, err)
	require.Equal(t, fixtureLumps[1].data, data)
	require.NoError(t, f.Close())

	empty := filepath.Join(t.TempDir(), "empty.wad")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = wad.OpenMapped(empty, wad.Options{})
	require.True(t, errors.Is(err, wad.ErrInvalidHeader))
}
