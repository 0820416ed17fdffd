package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

// Number is the set of integer types the zone uses for offsets and sizes
type Number interface {
	~int | ~uint | ~uint32 | ~uint64
}

// CheckPow2 returns a PowerOfTwoError if number is zero or not a power of two. name is
// used to identify the offending value in the error message.
func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to a multiple of alignment, which must be a power of two
func AlignDown[T Number](value T, alignment T) T {
	return value &^ (alignment - 1)
}
