package zone

import "strings"

// Tag identifies how the zone may treat a block once it has been allocated
type Tag uint8

const (
	// TagFree marks a block that holds no allocation
	TagFree Tag = iota
	// TagStatic marks a block that is only released by an explicit Free or FreeTag
	TagStatic
	// TagCache marks a block that an allocation sweep may purge once it has not been
	// touched during the current frame
	TagCache
)

var tagMapping = map[Tag]string{
	TagFree:   "Free",
	TagStatic: "Static",
	TagCache:  "Cache",
}

func (t Tag) String() string {
	str, ok := tagMapping[t]
	if !ok {
		return "Unknown"
	}
	return str
}

func (t Tag) allocatable() bool {
	return t == TagStatic || t == TagCache
}

// CreateFlags indicate specific zone behaviors to activate or deactivate
type CreateFlags uint32

const (
	// CreateExternallySynchronized ensures that the zone will not be synchronized internally.
	// The consumer must guarantee the zone and every slot table that owns blocks in it are used
	// from only one goroutine at a time.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	CreateExternallySynchronized: "CreateExternallySynchronized",
}

func (f CreateFlags) String() string {
	var names []string
	for flag, name := range createFlagsMapping {
		if f&flag != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}
