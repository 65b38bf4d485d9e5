// Package wire frames cached payloads with the generation they were written under.
package wire

import (
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("hubcache: corrupt entry")
	magic      = [4]byte{'H', 'U', 'B', 'C'}
)

// Encode frames payload as:
//
//	magic(4) | ver(1) | gen(u64 be) | vlen(u32 be) | payload(vlen)
func Encode(gen uint64, payload []byte) []byte {
	b := make([]byte, hdrLen+len(payload))
	copy(b, magic[:])
	b[4] = version
	binary.BigEndian.PutUint64(b[5:13], gen)
	binary.BigEndian.PutUint32(b[13:17], uint32(len(payload)))
	copy(b[hdrLen:], payload)
	return b
}

// Decode returns the generation and a payload slice aliasing b.
// Foreign bytes, truncation and trailing junk are all ErrCorrupt.
func Decode(b []byte) (gen uint64, payload []byte, err error) {
	if len(b) < hdrLen || [4]byte(b[:4]) != magic || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	gen = binary.BigEndian.Uint64(b[5:13])
	vlen := int(binary.BigEndian.Uint32(b[13:17]))
	if vlen != len(b)-hdrLen {
		return 0, nil, ErrCorrupt
	}
	return gen, b[hdrLen:], nil
}
