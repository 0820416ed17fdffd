//go:build linux || darwin || freebsd

package wad

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// OpenMapped maps the file at path read-only and parses it. The mapping is released by Close.
func OpenMapped(path string, options Options) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open wad %s", path)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat wad %s", path)
	}
	if stat.Size() == 0 {
		return nil, errors.Wrapf(ErrInvalidHeader, "empty wad %s", path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map wad %s", path)
	}

	f, err := Parse(data, options)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, errors.Wrapf(err, "failed to parse wad %s", path)
	}

	f.closer = func() error {
		return unix.Munmap(data)
	}
	return f, nil
}
