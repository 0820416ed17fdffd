package wad

import (
	"bytes"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeName turns a directory or lookup name into the form used as the name index key:
// at most eight characters, cut at the first NUL, without the compression bit, upper-cased.
func normalizeName(raw []byte) string {
	if len(raw) > nameSize {
		raw = raw[:nameSize]
	}
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		raw = raw[:end]
	}
	if len(raw) == 0 {
		return ""
	}

	name := make([]byte, len(raw))
	copy(name, raw)
	name[0] &^= compressedBit

	return cases.Upper(language.Und).String(string(name))
}
