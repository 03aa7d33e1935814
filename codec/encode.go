package codec

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/ttar-go/libttar/codec/rice"
	"github.com/ttar-go/libttar/crc32ttar"
	"github.com/ttar-go/libttar/internal/bits"
)

// EncodeFrame runs one encode call's worth of the per-frame codec loop:
// decorrelate (if channels has more than one element), predict, filter, and
// Rice-code ni32Target/len(channels) sample-steps from src into dest,
// stopping early once nbytesEnc exceeds writeSoftLimit so the caller always
// has room for the next step's worst-case Rice code.
//
// It returns the number of TTA bytes written to dest and the number of
// source i32 consumed; ni32 is always a multiple of len(channels), except
// when mono.
//
// ref: libttaR codec/tta_enc.c tta_encode_mch, tta_encode_1ch
func EncodeFrame(dest []byte, src []int32, crc *crc32ttar.Digest, cache *rice.EncodeCache, channels []ChannelState, params Params, ni32Target, writeSoftLimit int) (nbytesEnc, ni32 int) {
	if len(channels) == 1 {
		return encodeMono(dest, src, crc, cache, &channels[0], params, ni32Target, writeSoftLimit)
	}
	return encodeGeneral(dest, src, crc, cache, channels, params, ni32Target, writeSoftLimit)
}

// encodeMono is the dedicated single-channel loop: there is nothing to
// decorrelate against, so each sample goes straight through predict, filter,
// and rice coding.
//
// ref: libttaR codec/tta_enc.c tta_encode_1ch
func encodeMono(dest []byte, src []int32, crc *crc32ttar.Digest, cache *rice.EncodeCache, ch *ChannelState, params Params, ni32Target, writeSoftLimit int) (nbytesEnc, ni32 int) {
	i := 0
	for ; i < ni32Target; i++ {
		if nbytesEnc > writeSoftLimit {
			break
		}
		curr := src[i]
		nbytesEnc = encodeStep(dest, nbytesEnc, curr, ch, params, cache, crc)
	}
	return nbytesEnc, i
}

// encodeGeneral is the multichannel loop, stride nchan over src. Channel j
// carries the difference between itself and channel j+1; the final channel
// of a sample-step instead carries itself minus half the previous
// (pre-prediction) channel's difference, so the whole step can be undone on
// decode by working back from the final channel one neighbour at a time.
//
// ref: libttaR codec/tta_enc.c tta_encode_mch
func encodeGeneral(dest []byte, src []int32, crc *crc32ttar.Digest, cache *rice.EncodeCache, channels []ChannelState, params Params, ni32Target, writeSoftLimit int) (nbytesEnc, ni32 int) {
	nchan := len(channels)
	i := 0
	for ; i < ni32Target; i += nchan {
		if nbytesEnc > writeSoftLimit {
			break
		}
		var prev int32
		for j := 0; j < nchan; j++ {
			curr := src[i+j]
			if j < nchan-1 {
				curr = src[i+j+1] - curr
			} else {
				curr -= prev / 2
			}
			prev = curr
			nbytesEnc = encodeStep(dest, nbytesEnc, curr, &channels[j], params, cache, crc)
		}
	}
	return nbytesEnc, i
}

// encodeStep runs predict, filter, and rice coding for one channel's
// decorrelated value, in that order, and returns the advanced write position.
//
// ref: libttaR codec/tta_enc.c TTAENC_PREDICT, TTAENC_FILTER, TTAENC_ENCODE
func encodeStep(dest []byte, pos int, curr int32, ch *ChannelState, params Params, cache *rice.EncodeCache, crc *crc32ttar.Digest) int {
	raw := curr
	curr -= Predict1(ch.Prev, params.PredictK)
	ch.Prev = raw

	curr = ch.Filter.Encode(curr, params.FilterRound, params.FilterK)
	folded := bits.Fold(curr)

	if dbg.Debug {
		dbg.Println("predict prev:", ch.Prev, "filter out:", curr, "rice k:", ch.Rice.K)
	}

	return rice.Encode(dest, pos, folded, &ch.Rice, cache, crc)
}
