// Package gfxcache keeps decoded graphics lumps resident in a zone. Each lump requested at
// least once gets a slot; the slot holds the handle of the zone block containing the lump's
// decoded pixels, or zone.NoBlock when the lump is not resident. Blocks are allocated with
// zone.TagCache and the slot as their owner, so when the zone purges a block to satisfy some
// other allocation the slot is cleared and the next Fetch decodes the lump again.
//
// A Cache is not safe for concurrent use. It must be confined to the goroutine that prepares
// frames, along with every other client of its zone.
package gfxcache

import (
	"io"
	"unsafe"

	"github.com/calicoport/gfxzone/internal/utils"
	"github.com/calicoport/gfxzone/lzss"
	"github.com/calicoport/gfxzone/wad"
	"github.com/calicoport/gfxzone/zone"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

//go:generate mockgen -source cache.go -destination ./mocks/lump_source.go

// LumpSource supplies lump metadata and stored bytes. *wad.File implements it. Compressed
// lumps are streamed through LumpReader; uncompressed lumps are translated from LumpData.
type LumpSource interface {
	LumpInfo(lump int) (wad.LumpInfo, error)
	LumpReader(lump int) (io.ByteReader, error)
	LumpData(lump int) ([]byte, error)
}

var _ LumpSource = &wad.File{}

var (
	// ErrWorkingSetTooLarge is returned by PrepareFrame when the zone cannot hold every lump
	// of the frame at once
	ErrWorkingSetTooLarge = errors.New("frame working set does not fit in the zone")
)

type slot struct {
	lump   int
	block  zone.BlockHandle
	pixels int
	static bool
}

// Cache maps lumps to zone blocks holding their decoded pixels
type Cache struct {
	logger  *slog.Logger
	zone    *zone.Zone
	source  LumpSource
	palette *lzss.Palette

	slots   []slot
	slotKey *swiss.Map[int, int]

	// releasing is set while the cache frees one of its own blocks, so that ClearSlot can
	// tell an explicit release from a purge
	releasing bool
	stats     Statistics
}

// New creates a cache that allocates from z and decodes lumps read from source. A nil palette
// selects lzss.DefaultPalette.
func New(logger *slog.Logger, z *zone.Zone, source LumpSource, palette *lzss.Palette) *Cache {
	if palette == nil {
		palette = &lzss.DefaultPalette
	}

	return &Cache{
		logger:  utils.LoggerOrDiscard(logger),
		zone:    z,
		source:  source,
		palette: palette,
		slotKey: swiss.NewMap[int, int](64),
	}
}

// ClearSlot marks a slot's lump as no longer resident. The zone calls it whenever it releases
// a block the cache owns. Every release the cache did not ask for counts as an eviction, whether
// it is a purge or a zone.FreeTag call made by another client of the zone.
func (c *Cache) ClearSlot(slot int) {
	s := &c.slots[slot]
	s.block = zone.NoBlock
	s.static = false

	if !c.releasing {
		c.stats.Evictions++
	}
}

// SlotBlock returns the handle a slot currently refers to
func (c *Cache) SlotBlock(slot int) zone.BlockHandle {
	return c.slots[slot].block
}

func (c *Cache) slotFor(lump int) int {
	index, ok := c.slotKey.Get(lump)
	if ok {
		return index
	}

	index = len(c.slots)
	c.slots = append(c.slots, slot{lump: lump, block: zone.NoBlock})
	c.slotKey.Put(lump, index)
	return index
}

// Resident reports whether a lump's decoded pixels are currently held in the zone
func (c *Cache) Resident(lump int) bool {
	index, ok := c.slotKey.Get(lump)
	return ok && c.slots[index].block != zone.NoBlock
}

// Fetch returns the decoded pixels of lump, decoding it into a new zone block if it is not
// resident. The block is marked as used during the current frame. The returned slice is only
// valid until the next call that allocates from the zone.
func (c *Cache) Fetch(lump int) ([]lzss.Pixel, error) {
	c.logger.Debug("Cache::Fetch", slog.Int("Lump", lump))

	return c.fetch(lump, zone.TagCache)
}

// FetchStatic is Fetch for lumps that must stay resident, such as menu graphics. The lump's
// block is tagged zone.TagStatic and is never purged until Unpin is called.
func (c *Cache) FetchStatic(lump int) ([]lzss.Pixel, error) {
	c.logger.Debug("Cache::FetchStatic", slog.Int("Lump", lump))

	return c.fetch(lump, zone.TagStatic)
}

// Unpin makes a lump fetched with FetchStatic purgeable again. Unpinning a lump that is not
// resident or not pinned does nothing.
func (c *Cache) Unpin(lump int) error {
	index, ok := c.slotKey.Get(lump)
	if !ok {
		return nil
	}

	s := &c.slots[index]
	if s.block == zone.NoBlock || !s.static {
		return nil
	}

	if err := c.zone.ChangeTag(s.block, zone.TagCache); err != nil {
		return errors.Wrapf(err, "failed to unpin lump %d", lump)
	}
	s.static = false
	return nil
}

// Release frees a lump's block if it is resident. It is not counted as an eviction.
func (c *Cache) Release(lump int) error {
	index, ok := c.slotKey.Get(lump)
	if !ok || c.slots[index].block == zone.NoBlock {
		return nil
	}

	return c.free(index)
}

func (c *Cache) free(index int) error {
	c.releasing = true
	defer func() { c.releasing = false }()

	return c.zone.Free(c.slots[index].block)
}

func (c *Cache) fetch(lump int, tag zone.Tag) ([]lzss.Pixel, error) {
	index := c.slotFor(lump)

	if c.slots[index].block != zone.NoBlock {
		return c.hit(index, tag)
	}

	c.stats.Misses++

	info, err := c.source.LumpInfo(lump)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up lump %d", lump)
	}

	size := info.DecodedLen * int(unsafe.Sizeof(lzss.Pixel(0)))
	if size == 0 {
		// The zone has no empty blocks
		size = 1
	}

	handle, data, err := c.zone.Allocate(size, tag, zone.Owner{Table: c, Slot: index})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to allocate %d bytes for lump %d (%s)", size, lump, info.Name)
	}

	s := &c.slots[index]
	s.block = handle
	s.pixels = info.DecodedLen
	s.static = tag == zone.TagStatic

	pixels := pixelView(data, info.DecodedLen)
	if err := c.decode(lump, info, pixels); err != nil {
		if freeErr := c.free(index); freeErr != nil {
			return nil, errors.CombineErrors(err, freeErr)
		}
		return nil, err
	}

	c.stats.Decodes++
	return pixels, nil
}

func (c *Cache) hit(index int, tag zone.Tag) ([]lzss.Pixel, error) {
	s := &c.slots[index]
	c.stats.Hits++

	var err error
	if tag == zone.TagStatic && !s.static {
		err = c.zone.ChangeTag(s.block, zone.TagStatic)
		s.static = err == nil
	} else {
		err = c.zone.Touch(s.block)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resident lump %d", s.lump)
	}

	data, err := c.zone.Data(s.block)
	if err != nil {
		return nil, errors.Wrapf(err, "resident lump %d", s.lump)
	}

	return pixelView(data, s.pixels), nil
}

func (c *Cache) decode(lump int, info wad.LumpInfo, pixels []lzss.Pixel) error {
	if !info.Compressed {
		data, err := c.source.LumpData(lump)
		if err != nil {
			return errors.Wrapf(err, "failed to read lump %d (%s)", lump, info.Name)
		}
		if translated := lzss.Translate(data, pixels, c.palette); translated < len(pixels) {
			return errors.Wrapf(lzss.ErrCorruptStream, "uncompressed lump %d (%s) holds %d of %d pixels", lump, info.Name, translated, len(pixels))
		}
		return nil
	}

	reader, err := c.source.LumpReader(lump)
	if err != nil {
		return errors.Wrapf(err, "failed to read lump %d (%s)", lump, info.Name)
	}

	written, err := lzss.Decode(reader, pixels, c.palette)
	if err != nil {
		return errors.Wrapf(err, "failed to decode lump %d (%s)", lump, info.Name)
	}
	if written < len(pixels) {
		// The rest of the block stays zeroed
		c.logger.Debug("Cache::decode short stream",
			slog.Int("Lump", lump),
			slog.Int("Written", written),
			slog.Int("Expected", len(pixels)),
		)
	}

	return nil
}

func pixelView(data []byte, count int) []lzss.Pixel {
	if count == 0 {
		return []lzss.Pixel{}
	}
	return unsafe.Slice((*lzss.Pixel)(unsafe.Pointer(&data[0])), count)
}
