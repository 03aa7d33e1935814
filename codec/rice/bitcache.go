package rice

import (
	"github.com/ttar-go/libttar/crc32ttar"
	"github.com/ttar-go/libttar/internal/bits"
)

// EncodeCache is the LSB-first bit accumulator used while writing Rice
// codes. Bits are OR'd in starting at the low end of a 64-bit word wide
// enough to hold a full unary-zero plus cache flush without an intermediate
// drain; Count tracks how many of its low bits are live.
//
// The zero value is ready to use.
//
// ref: libttaR codec/rice.h struct BitCache_Enc, cache64
type EncodeCache struct {
	cache uint64
	count uint
}

// writeCache drains full bytes out of the low end of cache into dest,
// folding each into crc, until fewer than 8 bits remain.
//
// ref: libttaR codec/rice.h rice24_write_cache
func (c *EncodeCache) writeCache(dest []byte, pos int, crc *crc32ttar.Digest) int {
	for c.count >= 8 {
		b := byte(c.cache)
		crc.WriteByte(b)
		dest[pos] = b
		pos++
		c.cache >>= 8
		c.count -= 8
	}
	return pos
}

// writeUnary drains cache to dest, then loads a unary code (unary 1-bits
// followed by a 0 terminator) into cache.
//
// ref: libttaR codec/rice.h rice24_write_unary
func (c *EncodeCache) writeUnary(dest []byte, pos int, unary uint32, crc *crc32ttar.Digest) int {
	pos = c.writeCache(dest, pos, crc)
	for unary >= 32 {
		unary -= 32
		c.cache |= uint64(0xFFFFFFFF) << c.count
		c.count += 32
		pos = c.writeCache(dest, pos, crc)
	}
	c.cache |= uint64(lsmask32(uint(unary))) << c.count
	c.count += uint(unary) + 1 // + terminator
	return pos
}

// writeUnaryZero drains cache to dest, then loads a zero-length unary code
// (a lone terminator bit) into cache.
//
// ref: libttaR codec/rice.h rice24_write_unary_zero
func (c *EncodeCache) writeUnaryZero(dest []byte, pos int, crc *crc32ttar.Digest) int {
	pos = c.writeCache(dest, pos, crc)
	c.count++ // + terminator
	return pos
}

// cacheBinary loads a binK-bit binary code into cache without draining.
//
// ref: libttaR codec/rice.h rice24_cache_binary
func (c *EncodeCache) cacheBinary(binary uint32, binK uint) {
	c.cache |= uint64(binary) << c.count
	c.count += binK
}

// Flush pads any bits left in cache with zero bits out to a byte boundary
// (adding 7 to the bit count before draining whole bytes, matching the
// reference's end-of-frame flush, so a frame that already ends on a byte
// boundary gets no extra byte), drains them to dest, and empties the cache.
//
// ref: libttaR codec/rice.h rice24_encode_cacheflush
func (c *EncodeCache) Flush(dest []byte, pos int, crc *crc32ttar.Digest) int {
	c.count += 7
	pos = c.writeCache(dest, pos, crc)
	c.count = 0
	c.cache = 0
	return pos
}

// DecodeCache is the LSB-first bit accumulator used while reading Rice
// codes back.
//
// The zero value is ready to use.
//
// ref: libttaR codec/rice.h struct BitCache_Dec, cache32
type DecodeCache struct {
	cache uint32
	count uint
}

// readUnary reads a unary code (a run of 1-bits terminated by a 0) from
// src, refilling cache a byte at a time. If the run exceeds laxLimit the
// input is corrupt or malicious and ok is false.
//
// ref: libttaR codec/rice.h rice24_read_unary
func (c *DecodeCache) readUnary(src []byte, pos int, crc *crc32ttar.Digest, laxLimit uint) (unary uint32, newPos int, ok bool) {
	nbit := bits.TrailingOnes(byte(c.cache))
	unary = uint32(nbit)
	if nbit == c.count {
		for {
			b := src[pos]
			crc.WriteByte(b)
			pos++
			c.cache = uint32(b)
			nbit = bits.TrailingOnes(byte(c.cache))
			unary += uint32(nbit)
			if uint(unary) > laxLimit {
				return unary, pos, false
			}
			if nbit != 8 {
				break
			}
		}
		c.count = 8
	}
	c.cache >>= nbit + 1 // + terminator
	c.count -= nbit + 1
	return unary, pos, true
}

// readBinary reads a binK-bit binary code from src, refilling cache a byte
// at a time as needed.
//
// ref: libttaR codec/rice.h rice24_read_binary
func (c *DecodeCache) readBinary(src []byte, pos int, crc *crc32ttar.Digest, binK uint) (binary uint32, newPos int) {
	for c.count < binK {
		b := src[pos]
		crc.WriteByte(b)
		pos++
		c.cache |= uint32(b) << c.count
		c.count += 8
	}
	binary = c.cache & lsmask32(binK)
	c.cache >>= binK
	c.count -= binK
	return binary, pos
}
