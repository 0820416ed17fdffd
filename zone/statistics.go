package zone

import (
	"strconv"

	"github.com/calicoport/gfxzone/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// AddStatistics sums this zone's usage into stats
func (z *Zone) AddStatistics(stats *memutils.Statistics) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	stats.RegionBytes += len(z.region)

	index := z.first
	for {
		b := &z.blocks[index]
		stats.BlockCount++
		if b.tag != TagFree {
			stats.AddAllocation(int(b.size), b.tag == TagStatic)
		}

		index = b.next
		if index == z.first {
			return
		}
	}
}

// AddDetailedStatistics sums this zone's usage, size extremes and purgeable space into stats
func (z *Zone) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	stats.RegionBytes += len(z.region)

	index := z.first
	for {
		b := &z.blocks[index]
		stats.BlockCount++
		if b.tag == TagFree {
			stats.AddFreeRange(int(b.size))
		} else {
			stats.AddAllocation(int(b.size), b.tag == TagStatic)
			if z.purgeable(b) {
				stats.AddPurgeable(int(b.size))
			}
		}

		index = b.next
		if index == z.first {
			return
		}
	}
}

// PrintDetailedMap writes a JSON object describing the zone and every block in it
func (z *Zone) PrintDetailedMap(writer *jwriter.Writer) {
	z.mutex.Lock()
	defer z.mutex.Unlock()

	objState := writer.Object()
	defer objState.End()

	objState.Name("TotalBytes").Int(len(z.region))
	objState.Name("UnusedBytes").Int(z.freeSize)
	objState.Name("Allocations").Int(z.allocCount)
	objState.Name("Frame").Int(int(z.frame))

	arrayState := objState.Name("Blocks").Array()
	defer arrayState.End()

	index := z.first
	for {
		b := &z.blocks[index]
		z.printBlock(b, arrayState.Object())

		index = b.next
		if index == z.first {
			return
		}
	}
}

func (z *Zone) printBlock(b *block, obj jwriter.ObjectState) {
	defer obj.End()

	obj.Name("Offset").Int(int(b.offset))
	obj.Name("Size").Int(int(b.size))
	obj.Name("Tag").String(b.tag.String())

	if b.tag == TagFree {
		return
	}

	obj.Name("Handle").String(strconv.FormatUint(uint64(b.handle), 10))
	obj.Name("DataSize").Int(int(b.dataSize))
	obj.Name("Stamp").Int(int(b.stamp))
	obj.Name("Purgeable").Bool(z.purgeable(b))
	if !b.owner.IsNone() {
		obj.Name("OwnerSlot").Int(b.owner.Slot)
	}
}
