package codec

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/ttar-go/libttar/codec/rice"
	"github.com/ttar-go/libttar/crc32ttar"
	"github.com/ttar-go/libttar/internal/bits"
)

// DecodeFrame is EncodeFrame's inverse. ok is false the moment a Rice code's
// unary run exceeds the decoder's lax limit; src is corrupt or malicious
// past that point and the caller should fail the frame rather than keep
// decoding garbage.
//
// ref: libttaR codec/tta_dec.c tta_decode_mch, tta_decode_1ch
func DecodeFrame(dest []int32, src []byte, crc *crc32ttar.Digest, cache *rice.DecodeCache, channels []ChannelState, params Params, laxLimit uint, ni32Target, readSoftLimit int) (nbytesDec, ni32 int, ok bool) {
	if len(channels) == 1 {
		return decodeMono(dest, src, crc, cache, &channels[0], params, laxLimit, ni32Target, readSoftLimit)
	}
	return decodeGeneral(dest, src, crc, cache, channels, params, laxLimit, ni32Target, readSoftLimit)
}

// ref: libttaR codec/tta_dec.c tta_decode_1ch
func decodeMono(dest []int32, src []byte, crc *crc32ttar.Digest, cache *rice.DecodeCache, ch *ChannelState, params Params, laxLimit uint, ni32Target, readSoftLimit int) (nbytesDec, ni32 int, ok bool) {
	i := 0
	for ; i < ni32Target; i++ {
		if nbytesDec > readSoftLimit {
			break
		}
		value, pos, stepOK := decodeStep(src, nbytesDec, ch, params, cache, crc, laxLimit)
		if !stepOK {
			return nbytesDec, i, false
		}
		nbytesDec = pos
		dest[i] = value
	}
	return nbytesDec, i, true
}

// decodeGeneral undoes encodeGeneral's channel decorrelation in two passes
// over a sample-step: a forward pass that reconstructs each channel's rice
// residual (storing a placeholder and tracking the running prev needed by
// the last channel), then a backward pass that turns those placeholders
// into the actual samples by successively subtracting one already-finished
// neighbour from the running value.
//
// ref: libttaR codec/tta_dec.c tta_decode_mch
func decodeGeneral(dest []int32, src []byte, crc *crc32ttar.Digest, cache *rice.DecodeCache, channels []ChannelState, params Params, laxLimit uint, ni32Target, readSoftLimit int) (nbytesDec, ni32 int, ok bool) {
	nchan := len(channels)
	i := 0
	for ; i < ni32Target; i += nchan {
		if nbytesDec > readSoftLimit {
			break
		}
		var prev, curr int32
		j := 0
		for ; ; j++ {
			value, pos, stepOK := decodeStep(src, nbytesDec, &channels[j], params, cache, crc, laxLimit)
			if !stepOK {
				return nbytesDec, i, false
			}
			nbytesDec = pos
			curr = value

			if j+1 < nchan {
				dest[i+j] = curr
				prev = curr
				continue
			}
			curr += prev / 2
			dest[i+j] = curr
			break
		}
		for k := j; k > 0; {
			k--
			curr -= dest[i+k]
			dest[i+k] = curr
		}
	}
	return nbytesDec, i, true
}

// decodeStep runs rice decoding, filter, and predict for one channel, in
// that order, and returns the reconstructed sample and the advanced read
// position.
//
// ref: libttaR codec/tta_dec.c TTADEC_DECODE, TTADEC_FILTER, TTADEC_PREDICT
func decodeStep(src []byte, pos int, ch *ChannelState, params Params, cache *rice.DecodeCache, crc *crc32ttar.Digest, laxLimit uint) (value int32, newPos int, ok bool) {
	folded, pos, ok := rice.Decode(src, pos, &ch.Rice, cache, crc, laxLimit)
	if !ok {
		return 0, pos, false
	}

	v := bits.Unfold(folded)
	v = ch.Filter.Decode(v, params.FilterRound, params.FilterK)
	v += Predict1(ch.Prev, params.PredictK)
	ch.Prev = v

	if dbg.Debug {
		dbg.Println("sample:", v, "rice k:", ch.Rice.K)
	}

	return v, pos, true
}
