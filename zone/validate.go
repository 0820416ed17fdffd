package zone

import (
	"github.com/calicoport/gfxzone/memutils"
	"github.com/cockroachdb/errors"
)

// Validate performs internal consistency checks on the block list: coverage of the whole region,
// link integrity, merging of free neighbors, bookkeeping totals, and agreement between owners and
// their slot tables. It does not modify the zone.
func (z *Zone) Validate() error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	return z.validate()
}

func (z *Zone) validate() error {
	if len(z.region) == 0 {
		return errors.New("zone has no region")
	}

	var calculatedSize, calculatedFreeSize uint64
	var allocCount, blockCount int
	roverFound := false
	expectedOffset := uint32(0)

	index := z.first
	for {
		b := &z.blocks[index]
		blockCount++
		if blockCount > len(z.blocks) {
			return errors.New("block list does not return to its first block")
		}

		if b.offset != expectedOffset {
			return errors.Errorf("block at offset %d was expected at offset %d", b.offset, expectedOffset)
		}
		if b.size < HeaderSize {
			return errors.Errorf("block at offset %d is smaller than a block header: %d bytes", b.offset, b.size)
		}
		if b.size%z.alignment != 0 {
			return errors.Errorf("block at offset %d has unaligned size %d", b.offset, b.size)
		}
		if z.blocks[b.next].prev != index {
			return errors.Errorf("block at offset %d lists the block at offset %d as its next block, but the reverse reference is broken", b.offset, z.blocks[b.next].offset)
		}
		if index == z.rover {
			roverFound = true
		}

		calculatedSize += uint64(b.size)
		expectedOffset += b.size

		if b.tag == TagFree {
			calculatedFreeSize += uint64(b.size)

			if !b.owner.IsNone() {
				return errors.Errorf("free block at offset %d has an owner", b.offset)
			}
			if b.handle != NoBlock {
				return errors.Errorf("free block at offset %d has handle %d", b.offset, b.handle)
			}
			if z.adjacent(index, b.next) && z.blocks[b.next].tag == TagFree {
				return errors.Errorf("free blocks at offsets %d and %d were not merged", b.offset, z.blocks[b.next].offset)
			}
		} else {
			allocCount++

			if err := z.validateUsedBlock(index); err != nil {
				return err
			}
		}

		index = b.next
		if index == z.first {
			break
		}
	}

	if calculatedSize != uint64(len(z.region)) {
		return errors.Errorf("the full size of the zone is %d, but the blocks only added up to %d", len(z.region), calculatedSize)
	}
	if calculatedFreeSize != uint64(z.freeSize) {
		return errors.Errorf("the free size of the zone is %d, but the free blocks added up to %d", z.freeSize, calculatedFreeSize)
	}
	if allocCount != z.allocCount {
		return errors.Errorf("the allocation count of the zone is %d, but the used blocks added up to %d", z.allocCount, allocCount)
	}
	if z.handleKey.Count() != allocCount {
		return errors.Errorf("the zone tracks %d handles for %d used blocks", z.handleKey.Count(), allocCount)
	}
	if blockCount+len(z.spare) != len(z.blocks) {
		return errors.Errorf("%d listed blocks and %d spare entries do not account for %d table entries", blockCount, len(z.spare), len(z.blocks))
	}
	if !roverFound {
		return errors.New("the rover does not point at a block in the list")
	}

	return nil
}

func (z *Zone) validateUsedBlock(index int) error {
	b := &z.blocks[index]

	if !b.tag.allocatable() {
		return errors.Errorf("used block at offset %d has invalid tag %d", b.offset, b.tag)
	}
	if uint64(b.dataSize)+HeaderSize > uint64(b.size) {
		return errors.Errorf("used block at offset %d holds %d data bytes in a %d byte block", b.offset, b.dataSize, b.size)
	}

	mapped, ok := z.handleKey.Get(b.handle)
	if !ok || mapped != index {
		return errors.Errorf("used block at offset %d has handle %d, which does not resolve to it", b.offset, b.handle)
	}

	if b.owner.IsNone() {
		return nil
	}

	resolver, ok := b.owner.Table.(SlotResolver)
	if !ok {
		return nil
	}
	if slotBlock := resolver.SlotBlock(b.owner.Slot); slotBlock != b.handle {
		return errors.Errorf("used block at offset %d is owned by slot %d, but that slot refers to handle %d instead of %d", b.offset, b.owner.Slot, slotBlock, b.handle)
	}

	return nil
}

// CheckCorruption verifies the header marker of every used block. A missing marker means
// something wrote past the end of the preceding block's data region.
func (z *Zone) CheckCorruption() error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	index := z.first
	for {
		b := &z.blocks[index]
		if b.tag != TagFree && !memutils.ValidateHeaderMagic(z.region, int(b.offset)) {
			return errors.Wrapf(memutils.HeaderCorruptionError, "block at offset %d", b.offset)
		}

		index = b.next
		if index == z.first {
			return nil
		}
	}
}
