package rice

import "github.com/ttar-go/libttar/crc32ttar"

// Decode reads one rice-coded value from src at pos, advancing the
// per-channel adaptive state, bitcache, and CRC. ok is false when the
// unary run exceeds laxLimit, meaning src is corrupt or malicious past
// this point; the caller should treat the frame as a decode failure.
//
// src must have DecMax12 (or DecMax3, for 24-bit samples) bytes of
// headroom past pos, or be known not to run past end of buffer before the
// terminator.
//
// ref: libttaR codec/rice.h rice24_decode
func Decode(src []byte, pos int, state *State, cache *DecodeCache, crc *crc32ttar.Digest, laxLimit uint) (value uint32, newPos int, ok bool) {
	unary, pos, ok := cache.readUnary(src, pos, crc, laxLimit)
	if !ok {
		return 0, pos, false
	}

	var binK uint
	if unary != 0 {
		binK = state.K[1]
	} else {
		binK = state.K[0]
	}

	binary, pos := cache.readBinary(src, pos, crc, binK)

	if unary != 0 {
		value = ((unary - 1) << binK) + binary
		update(&state.Sum[1], &state.K[1], value)
		value += binexp32(state.K[0])
	} else {
		value = binary
	}
	update(&state.Sum[0], &state.K[0], value)
	return value, pos, true
}
