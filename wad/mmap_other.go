//go:build !(linux || darwin || freebsd)

package wad

import (
	"os"

	"github.com/cockroachdb/errors"
)

// OpenMapped reads the file at path into memory and parses it. Memory mapping is only
// available on unix platforms.
func OpenMapped(path string, options Options) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read wad %s", path)
	}

	f, err := Parse(data, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse wad %s", path)
	}
	return f, nil
}
