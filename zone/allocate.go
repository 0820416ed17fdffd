package zone

import (
	"context"

	"github.com/calicoport/gfxzone/memutils"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

type zoneValidator struct {
	zone *Zone
}

func (v zoneValidator) Validate() error {
	return v.zone.validate()
}

func (z *Zone) purgeable(b *block) bool {
	return b.tag == TagCache && b.stamp != z.frame
}

// Allocate reserves size bytes tagged with tag and owned by owner, returning the new block's
// handle and its data region. The data region is zeroed.
//
// The search starts at the rover. Cache blocks that have not been touched during the current
// frame are purged as the search reaches them, clearing their owner's slot. If the search passes
// the whole region without finding room, the frame counter advances, making every cache block
// not touched since purgeable, and the search continues for one more pass before failing with
// ErrOutOfMemory.
func (z *Zone) Allocate(size int, tag Tag, owner Owner) (BlockHandle, []byte, error) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	z.logger.Debug("Zone::Allocate", slog.Int("Size", size), slog.String("Tag", tag.String()))

	if size < 1 {
		return NoBlock, nil, errors.Errorf("invalid allocation size: %d", size)
	}
	if !tag.allocatable() {
		return NoBlock, nil, errors.Wrapf(ErrInvalidTag, "cannot allocate with tag %s", tag)
	}

	memutils.DebugValidate(zoneValidator{zone: z})
	memutils.DebugCheckPow2(z.alignment, "alignment")

	regionSize := uint64(len(z.region))
	need := memutils.AlignUp(uint64(size)+HeaderSize, uint64(z.alignment))
	if need > regionSize {
		z.logOutOfMemory(size)
		return NoBlock, nil, errors.Wrapf(ErrOutOfMemory, "%d bytes requested from a %d byte zone", size, regionSize)
	}

	index, err := z.findSpace(uint32(need))
	if err != nil {
		z.logOutOfMemory(size)
		return NoBlock, nil, errors.Wrapf(err, "%d bytes requested", size)
	}

	z.split(index, uint32(need))

	b := &z.blocks[index]
	b.tag = tag
	b.owner = owner
	b.stamp = z.frame
	b.dataSize = uint32(size)
	b.handle = z.issueHandle(index)

	z.allocCount++
	z.freeSize -= int(b.size)
	z.rover = b.next

	memutils.WriteHeaderMagic(z.region, int(b.offset))
	data := z.dataRange(b)
	for i := range data {
		data[i] = 0
	}

	return b.handle, data, nil
}

// findSpace walks the block list from the rover until it reaches a free block of at least
// need bytes, purging stale cache blocks along the way.
func (z *Zone) findSpace(need uint32) (int, error) {
	regionSize := uint64(len(z.region))
	base := z.rover
	cursor := z.blocks[base].offset

	var passed uint64
	laps := 0

	for {
		b := &z.blocks[base]

		if b.tag == TagFree {
			if b.size >= need {
				return base, nil
			}

			next := b.next
			if z.adjacent(base, next) && z.purgeable(&z.blocks[next]) {
				// The purged block merges into base
				z.purge(next)
				continue
			}
		} else if z.purgeable(b) {
			// The survivor may be the free block before b, which has already been passed
			base = z.purge(base)
			continue
		}

		next := z.blocks[base].next
		nextOffset := z.blocks[next].offset
		delta := (uint64(nextOffset) + regionSize - uint64(cursor)) % regionSize
		if delta == 0 {
			delta = regionSize
		}

		passed += delta
		cursor = nextOffset
		base = next

		if passed >= regionSize {
			passed -= regionSize
			laps++

			if laps > 1 {
				return -1, ErrOutOfMemory
			}

			z.frame++
			z.logger.Debug("Zone::findSpace advanced frame", slog.Int("Frame", int(z.frame)))
		}
	}
}

// split shrinks the free block at index to need bytes when the remainder is worth keeping
// as a separate free block.
func (z *Zone) split(index int, need uint32) {
	extra := z.blocks[index].size - need
	if extra <= MinFragment {
		return
	}

	newIndex := z.newBlock()
	b := &z.blocks[index]
	fragment := &z.blocks[newIndex]

	fragment.offset = b.offset + need
	fragment.size = extra
	fragment.tag = TagFree
	fragment.prev = index
	fragment.next = b.next
	z.blocks[b.next].prev = newIndex
	b.next = newIndex
	b.size = need
}

func (z *Zone) purge(index int) int {
	b := &z.blocks[index]
	z.logger.Debug("Zone::purge",
		slog.Int("Offset", int(b.offset)),
		slog.Int("Size", int(b.size)),
		slog.Int("Stamp", int(b.stamp)),
		slog.Int("Frame", int(z.frame)),
	)

	return z.release(index)
}

func (z *Zone) logOutOfMemory(size int) {
	z.logger.LogAttrs(context.Background(), slog.LevelError, "Zone::Allocate out of memory",
		slog.Int("Size", size),
		slog.Int("ZoneSize", len(z.region)),
		slog.Int("FreeBytes", z.freeSize),
		slog.Int("Allocations", z.allocCount),
		slog.Int("Frame", int(z.frame)),
	)
}
