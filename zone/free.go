package zone

import (
	"github.com/calicoport/gfxzone/memutils"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// Free releases a live allocation. If the block has an owner, the owner's slot is cleared
// before Free returns. The freed space is merged with any free neighbors.
func (z *Zone) Free(handle BlockHandle) error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	z.logger.Debug("Zone::Free", slog.Uint64("Handle", uint64(handle)))

	index, err := z.getBlock(handle)
	if err != nil {
		return err
	}

	z.release(index)
	return nil
}

// Touch marks a live allocation as used during the current frame, protecting a cache block
// from purges until the frame counter next advances.
func (z *Zone) Touch(handle BlockHandle) error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	index, err := z.getBlock(handle)
	if err != nil {
		return err
	}

	z.blocks[index].stamp = z.frame
	return nil
}

// ChangeTag retags a live allocation. The block is also touched, so a block moved to TagCache
// survives until the frame counter next advances.
func (z *Zone) ChangeTag(handle BlockHandle, tag Tag) error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	z.logger.Debug("Zone::ChangeTag", slog.Uint64("Handle", uint64(handle)), slog.String("Tag", tag.String()))

	if !tag.allocatable() {
		return errors.Wrapf(ErrInvalidTag, "cannot retag a block as %s", tag)
	}

	index, err := z.getBlock(handle)
	if err != nil {
		return err
	}

	b := &z.blocks[index]
	b.tag = tag
	b.stamp = z.frame
	return nil
}

// FreeTag releases every allocation carrying tag and returns how many were released.
func (z *Zone) FreeTag(tag Tag) (int, error) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	z.logger.Debug("Zone::FreeTag", slog.String("Tag", tag.String()))

	if !tag.allocatable() {
		return 0, errors.Wrapf(ErrInvalidTag, "cannot free blocks tagged %s", tag)
	}

	released := 0
	index := z.first
	for {
		if z.blocks[index].tag == tag {
			index = z.release(index)
			released++
		}

		index = z.blocks[index].next
		if index == z.first {
			return released, nil
		}
	}
}

// release turns the used block at index into free space and returns the index of the free
// block that now contains it.
func (z *Zone) release(index int) int {
	b := &z.blocks[index]
	owner := b.owner

	z.handleKey.Delete(b.handle)
	memutils.ClearHeaderMagic(z.region, int(b.offset))

	b.handle = NoBlock
	b.owner = NoOwner
	b.tag = TagFree
	b.dataSize = 0
	b.stamp = 0

	z.allocCount--
	z.freeSize += int(b.size)

	if !owner.IsNone() {
		owner.Table.ClearSlot(owner.Slot)
	}

	survivor := index
	if next := b.next; z.adjacent(index, next) && z.blocks[next].tag == TagFree {
		z.absorb(index, next)
	}
	if prev := z.blocks[index].prev; z.adjacent(prev, index) && z.blocks[prev].tag == TagFree {
		z.absorb(prev, index)
		survivor = prev
	}

	return survivor
}

// absorb merges the block at right into the block at left, which must precede it in the region.
func (z *Zone) absorb(left, right int) {
	l := &z.blocks[left]
	r := &z.blocks[right]

	l.size += r.size
	l.next = r.next
	z.blocks[r.next].prev = left

	if z.rover == right {
		z.rover = left
	}

	z.recycleBlock(right)
}
