// Package zone manages a single fixed-size memory region divided into variable-size blocks.
//
// Every byte of the region belongs to exactly one block. Blocks are kept in address order in a
// circular list, and adjacent free blocks are always merged. Allocations search the list with a
// roving pointer and may purge cache blocks that have not been touched during the current frame.
// The frame counter advances whenever a search has gone once around the whole region without
// finding room; a search that goes around a second time fails with ErrOutOfMemory.
package zone

import (
	"math"

	"github.com/calicoport/gfxzone/internal/utils"
	"github.com/calicoport/gfxzone/memutils"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

const (
	// HeaderSize is the number of bytes at the start of every block reserved for the zone
	HeaderSize = 24
	// DefaultAlignment is the alignment used for block sizes when CreateOptions.Alignment is 0
	DefaultAlignment uint = 8
	// MinFragment is the largest remainder that is left attached to an allocated block instead
	// of being split off as a new free block
	MinFragment = 64
)

var (
	// ErrOutOfMemory is returned when neither free nor purgeable space can satisfy an allocation.
	// The zone is too small for its workload; the error is not meant to be retried.
	ErrOutOfMemory = errors.New("zone out of memory")
	// ErrUnknownHandle is returned for handles that were never issued by the zone or whose block
	// has since been freed or purged
	ErrUnknownHandle = errors.New("handle does not refer to a live block in this zone")
	// ErrInvalidTag is returned when an allocation or retag uses a tag other than TagStatic or TagCache
	ErrInvalidTag = errors.New("invalid block tag")
	// ErrZoneTooSmall is returned from New when the region cannot hold a single minimal block
	ErrZoneTooSmall = errors.New("zone region too small")
)

// BlockHandle identifies one allocation. Handles are never reused, so a handle whose block
// has been released is rejected rather than resolving to a different allocation.
type BlockHandle uint64

const (
	NoBlock BlockHandle = math.MaxUint64
)

// SlotTable is implemented by the owners of zone blocks. ClearSlot is called when the block
// owned by slot is released, whether explicitly or by a purge. It is called while the zone is
// locked and must not call back into the zone.
type SlotTable interface {
	ClearSlot(slot int)
}

// SlotResolver is an optional extension of SlotTable used by Validate to confirm that owner
// back-references agree with the slot table.
type SlotResolver interface {
	SlotBlock(slot int) BlockHandle
}

// Owner is the back-reference from a block to the slot that points at it.
type Owner struct {
	Table SlotTable
	Slot  int
}

// NoOwner is used for blocks that nothing needs to be told about when they are released
var NoOwner = Owner{}

func (o Owner) IsNone() bool {
	return o.Table == nil
}

type block struct {
	offset   uint32
	size     uint32
	dataSize uint32
	stamp    uint32
	tag      Tag
	owner    Owner
	handle   BlockHandle

	prev int
	next int
}

// CreateOptions contains optional settings when creating a zone
type CreateOptions struct {
	// Flags indicates specific zone behaviors to activate or deactivate
	Flags CreateFlags
	// Alignment is the granularity of block sizes. It must be a power of two; 0 selects
	// DefaultAlignment.
	Alignment uint
}

// Zone is a region allocator with frame-based purging of cache blocks.
type Zone struct {
	mutex  utils.OptionalMutex
	logger *slog.Logger

	region    []byte
	alignment uint32

	blocks []block
	spare  []int
	first  int
	rover  int
	frame  uint32

	allocCount int
	freeSize   int

	nextHandle BlockHandle
	handleKey  *swiss.Map[BlockHandle, int]
}

// New creates a zone managing a freshly allocated region of size bytes. The size is rounded
// down to the alignment.
func New(logger *slog.Logger, size int, options CreateOptions) (*Zone, error) {
	alignment := options.Alignment
	if alignment == 0 {
		alignment = DefaultAlignment
	}
	if err := memutils.CheckPow2(alignment, "alignment"); err != nil {
		return nil, err
	}

	size = memutils.AlignDown(size, int(alignment))
	if size < HeaderSize+MinFragment {
		return nil, errors.Wrapf(ErrZoneTooSmall, "%d bytes requested, at least %d required", size, HeaderSize+MinFragment)
	}
	if uint64(size) > math.MaxUint32 {
		return nil, errors.Errorf("zone size %d exceeds the addressable maximum of %d bytes", size, uint32(math.MaxUint32))
	}

	z := &Zone{
		mutex: utils.OptionalMutex{
			UseMutex: options.Flags&CreateExternallySynchronized == 0,
		},
		logger:    utils.LoggerOrDiscard(logger),
		region:    make([]byte, size),
		alignment: uint32(alignment),
		handleKey: swiss.NewMap[BlockHandle, int](42),
	}

	z.first = z.newBlock()
	b := &z.blocks[z.first]
	b.size = uint32(size)
	b.prev = z.first
	b.next = z.first
	z.rover = z.first
	z.freeSize = size

	z.logger.Debug("Zone::New", slog.Int("Size", size), slog.Int("Alignment", int(alignment)), slog.String("Flags", options.Flags.String()))

	return z, nil
}

func (z *Zone) newBlock() int {
	var index int
	if n := len(z.spare); n > 0 {
		index = z.spare[n-1]
		z.spare = z.spare[:n-1]
	} else {
		index = len(z.blocks)
		z.blocks = append(z.blocks, block{})
	}

	z.blocks[index] = block{handle: NoBlock, prev: -1, next: -1}
	return index
}

func (z *Zone) recycleBlock(index int) {
	z.blocks[index] = block{handle: NoBlock, prev: -1, next: -1}
	z.spare = append(z.spare, index)
}

func (z *Zone) issueHandle(index int) BlockHandle {
	handle := z.nextHandle
	z.nextHandle++
	z.handleKey.Put(handle, index)
	return handle
}

func (z *Zone) getBlock(handle BlockHandle) (int, error) {
	index, ok := z.handleKey.Get(handle)
	if !ok {
		return -1, errors.Wrapf(ErrUnknownHandle, "handle %d", handle)
	}
	return index, nil
}

// adjacent reports whether right immediately follows left in the region. Only the wrap from
// the last block back to the first is not adjacent.
func (z *Zone) adjacent(left, right int) bool {
	return right != z.first && z.blocks[left].next == right
}

func (z *Zone) dataRange(b *block) []byte {
	start := b.offset + HeaderSize
	end := start + b.dataSize
	return z.region[start:end:end]
}

// Size returns the size of the region in bytes
func (z *Zone) Size() int { return len(z.region) }

// Frame returns the current value of the frame counter
func (z *Zone) Frame() uint32 {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	return z.frame
}

// AllocationCount returns the number of live allocations
func (z *Zone) AllocationCount() int {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	return z.allocCount
}

// SumFreeSize returns the number of bytes held by free blocks, headers included
func (z *Zone) SumFreeSize() int {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	return z.freeSize
}

// Data returns the data region of a live allocation
func (z *Zone) Data(handle BlockHandle) ([]byte, error) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	index, err := z.getBlock(handle)
	if err != nil {
		return nil, err
	}

	return z.dataRange(&z.blocks[index]), nil
}

// BlockInfo describes one block of the region
type BlockInfo struct {
	Handle   BlockHandle
	Offset   int
	Size     int
	DataSize int
	Tag      Tag
	Stamp    uint32
	Owner    Owner
}

func (z *Zone) blockInfo(b *block) BlockInfo {
	return BlockInfo{
		Handle:   b.handle,
		Offset:   int(b.offset),
		Size:     int(b.size),
		DataSize: int(b.dataSize),
		Tag:      b.tag,
		Stamp:    b.stamp,
		Owner:    b.owner,
	}
}

// Lookup returns the description of a live allocation
func (z *Zone) Lookup(handle BlockHandle) (BlockInfo, error) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	index, err := z.getBlock(handle)
	if err != nil {
		return BlockInfo{}, err
	}

	return z.blockInfo(&z.blocks[index]), nil
}

// VisitAllBlocks calls visit once for every block, free or used, in address order. Iteration
// stops at the first error, which is returned. visit must not call back into the zone.
func (z *Zone) VisitAllBlocks(visit func(info BlockInfo) error) error {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	index := z.first
	for {
		if err := visit(z.blockInfo(&z.blocks[index])); err != nil {
			return err
		}

		index = z.blocks[index].next
		if index == z.first {
			return nil
		}
	}
}
