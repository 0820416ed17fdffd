package gfxcache

import (
	"github.com/calicoport/gfxzone/lzss"
	"github.com/calicoport/gfxzone/zone"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// PrepareFrame fetches every lump a frame will draw, in order, and returns their pixels in the
// same order. Fetching marks each lump as used during the current frame, so later fetches in
// the same call only displace them when the zone cannot hold the whole set. That case is
// reported as ErrWorkingSetTooLarge, since some of the earlier slices would no longer be valid.
func (c *Cache) PrepareFrame(lumps []int) ([][]lzss.Pixel, error) {
	c.logger.Debug("Cache::PrepareFrame", slog.Int("Lumps", len(lumps)))

	results := make([][]lzss.Pixel, len(lumps))
	handles := make([]zone.BlockHandle, len(lumps))

	for i, lump := range lumps {
		pixels, err := c.Fetch(lump)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to prepare lump %d of %d", i, len(lumps))
		}

		results[i] = pixels
		handles[i] = c.slots[c.slotFor(lump)].block
	}

	for i, lump := range lumps {
		if c.slots[c.slotFor(lump)].block != handles[i] {
			return nil, errors.Wrapf(ErrWorkingSetTooLarge, "lump %d was evicted while preparing a frame of %d lumps", lump, len(lumps))
		}
	}

	return results, nil
}
