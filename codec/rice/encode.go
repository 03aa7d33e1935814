package rice

import "github.com/ttar-go/libttar/crc32ttar"

// Encode rice-codes value (a folded, unsigned residual) into dest at pos,
// advancing the per-channel adaptive state, bitcache, and CRC, and returns
// the new write position.
//
// dest must have EncMax12 (or EncMax3, for 24-bit samples) bytes of
// headroom past pos.
//
// ref: libttaR codec/rice.h rice24_encode
func Encode(dest []byte, pos int, value uint32, state *State, cache *EncodeCache, crc *crc32ttar.Digest) int {
	binK := state.K[0]
	update(&state.Sum[0], &state.K[0], value)

	if value >= binexp32(binK) {
		value -= binexp32(binK)
		binK = state.K[1]
		update(&state.Sum[1], &state.K[1], value)

		unary := (value >> binK) + 1
		pos = cache.writeUnary(dest, pos, unary, crc)
	} else {
		pos = cache.writeUnaryZero(dest, pos, crc)
	}
	cache.cacheBinary(value&lsmask32(binK), binK)
	return pos
}
