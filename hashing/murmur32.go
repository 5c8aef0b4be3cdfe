// Package hashing provides the non-cryptographic hash used to derive stable
// event-type identifiers from names.
package hashing

import "encoding/binary"

const (
	c1 = 0xcc9e2d51
	c2 = 0x1b873593
)

// Murmur32 computes the 32-bit x86 variant of Murmur3 over data with the
// given seed. The output is bit-exact with the reference implementation, so
// identifiers derived from the same string and seed agree across independent
// processes and binaries.
func Murmur32(data []byte, seed uint32) uint32 {
	h := seed
	nblocks := len(data) / 4

	for i := 0; i < nblocks; i++ {
		k := binary.LittleEndian.Uint32(data[i*4:])

		k *= c1
		k = rotl32(k, 15)
		k *= c2

		h ^= k
		h = rotl32(h, 13)
		h = h*5 + 0xe6546b64
	}

	// Fold the 0-3 byte tail, most significant tail byte first. The tail
	// only xors into the hash; it does not run the block combine step.
	tail := data[nblocks*4:]
	var k uint32
	switch len(tail) {
	case 3:
		k ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(tail[0])
		k *= c1
		k = rotl32(k, 15)
		k *= c2
		h ^= k
	}

	h ^= uint32(len(data))

	return fmix32(h)
}

func rotl32(x uint32, r uint) uint32 {
	return (x << r) | (x >> (32 - r))
}

// fmix32 is the Murmur3 finalization avalanche.
func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}
