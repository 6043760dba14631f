package monitor

import "unicode/utf16"

// Fingerprint hashes s with the 32-bit polynomial h = h*31 + c over its
// UTF-16 code units, wrapping on overflow. It is a change detector, not a
// secure hash.
func Fingerprint(s string) uint32 {
	var h uint32
	for _, r := range s {
		if r < 0x10000 {
			h = h*31 + uint32(r)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h = h*31 + uint32(hi)
		h = h*31 + uint32(lo)
	}
	return h
}

// contentLength measures s in UTF-16 code units, the same unit Fingerprint
// walks.
func contentLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
