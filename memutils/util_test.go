package memutils_test

import (
	"math"
	"testing"

	"github.com/calicoport/gfxzone/memutils"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "value"))
	require.NoError(t, memutils.CheckPow2(uint32(8), "value"))
	require.NoError(t, memutils.CheckPow2(uint64(1)<<40, "value"))

	err := memutils.CheckPow2(0, "value")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	err = memutils.CheckPow2(uint(12), "alignment")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "alignment is 12")
}

func TestAlign(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 8, memutils.AlignUp(8, 8))
	require.Equal(t, uint64(128), memutils.AlignUp(uint64(124), 8))

	require.Equal(t, 0, memutils.AlignDown(7, 8))
	require.Equal(t, 992, memutils.AlignDown(1000, 16))
	require.Equal(t, uint32(1024), memutils.AlignDown(uint32(1024), 8))
}

func TestHeaderMagic(t *testing.T) {
	region := make([]byte, 64)

	require.False(t, memutils.ValidateHeaderMagic(region, 16))

	memutils.WriteHeaderMagic(region, 16)
	require.True(t, memutils.ValidateHeaderMagic(region, 16))
	require.False(t, memutils.ValidateHeaderMagic(region, 8))

	memutils.ClearHeaderMagic(region, 16)
	require.False(t, memutils.ValidateHeaderMagic(region, 16))

	require.False(t, memutils.ValidateHeaderMagic(region, 62))
	require.False(t, memutils.ValidateHeaderMagic(region, -1))
}

func TestDetailedStatistics(t *testing.T) {
	var first memutils.DetailedStatistics
	first.Clear()
	first.RegionBytes = 1024
	first.AddAllocation(128, true)
	first.AddAllocation(64, false)
	first.AddPurgeable(64)
	first.AddFreeRange(832)

	var second memutils.DetailedStatistics
	second.Clear()
	second.RegionBytes = 512
	second.AddAllocation(256, false)
	second.AddFreeRange(96)
	second.AddFreeRange(160)

	var total memutils.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&first)
	total.AddDetailedStatistics(&second)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionBytes:     1536,
			AllocationCount: 3,
			AllocationBytes: 448,
			StaticCount:     1,
			StaticBytes:     128,
		},
		FreeRangeCount:    3,
		FreeRangeSizeMin:  96,
		FreeRangeSizeMax:  832,
		AllocationSizeMin: 64,
		AllocationSizeMax: 256,
		PurgeableCount:    1,
		PurgeableBytes:    64,
	}, total)

	total.Clear()
	require.Equal(t, math.MaxInt, total.AllocationSizeMin)
	require.Equal(t, 0, total.AllocationCount)
}
