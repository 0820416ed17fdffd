package memutils

import "math"

// Statistics summarizes how a zone region is being used
type Statistics struct {
	RegionBytes     int
	BlockCount      int
	AllocationCount int
	AllocationBytes int
	StaticCount     int
	StaticBytes     int
}

func (s *Statistics) Clear() {
	s.RegionBytes = 0
	s.BlockCount = 0
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.StaticCount = 0
	s.StaticBytes = 0
}

// AddAllocation records a used block of the given size. static indicates that the block
// can never be purged.
func (s *Statistics) AddAllocation(size int, static bool) {
	s.AllocationCount++
	s.AllocationBytes += size
	if static {
		s.StaticCount++
		s.StaticBytes += size
	}
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.RegionBytes += other.RegionBytes
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
	s.StaticCount += other.StaticCount
	s.StaticBytes += other.StaticBytes
}

// DetailedStatistics adds size extremes and purgeability information to Statistics
type DetailedStatistics struct {
	Statistics
	FreeRangeCount    int
	FreeRangeSizeMin  int
	FreeRangeSizeMax  int
	AllocationSizeMin int
	AllocationSizeMax int
	PurgeableCount    int
	PurgeableBytes    int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.PurgeableCount = 0
	s.PurgeableBytes = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int, static bool) {
	s.Statistics.AddAllocation(size, static)

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

// AddPurgeable records a used block that the next allocation sweep would be allowed to reclaim
func (s *DetailedStatistics) AddPurgeable(size int) {
	s.PurgeableCount++
	s.PurgeableBytes += size
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount
	s.PurgeableCount += other.PurgeableCount
	s.PurgeableBytes += other.PurgeableBytes

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
