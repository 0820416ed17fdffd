package gfxcache

import (
	"github.com/calicoport/gfxzone/zone"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics counts cache activity since the cache was created
type Statistics struct {
	// Hits is the number of fetches served from a resident block
	Hits int
	// Misses is the number of fetches that had to allocate a block
	Misses int
	// Decodes is the number of misses whose lump decoded successfully
	Decodes int
	// Evictions is the number of blocks the zone released without the cache asking, by purging
	// them or through zone.FreeTag
	Evictions int
}

// Statistics returns a copy of the cache's counters
func (c *Cache) Statistics() Statistics {
	return c.stats
}

// PrintStatistics writes a JSON object with the cache's counters and every slot
func (c *Cache) PrintStatistics(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Hits").Int(c.stats.Hits)
	objState.Name("Misses").Int(c.stats.Misses)
	objState.Name("Decodes").Int(c.stats.Decodes)
	objState.Name("Evictions").Int(c.stats.Evictions)

	resident := 0
	for i := range c.slots {
		if c.slots[i].block != zone.NoBlock {
			resident++
		}
	}
	objState.Name("Resident").Int(resident)

	arrayState := objState.Name("Slots").Array()
	defer arrayState.End()

	for i := range c.slots {
		c.printSlot(&c.slots[i], arrayState.Object())
	}
}

func (c *Cache) printSlot(s *slot, obj jwriter.ObjectState) {
	defer obj.End()

	obj.Name("Lump").Int(s.lump)
	obj.Name("Resident").Bool(s.block != zone.NoBlock)
	if s.block != zone.NoBlock {
		obj.Name("Pixels").Int(s.pixels)
		obj.Name("Static").Bool(s.static)
	}
}
