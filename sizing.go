package ttar

import "github.com/ttar-go/libttar/pcm"

// per-channel buffer headroom a caller must reserve past a frame's expected
// byte count, large enough for one more worst-case Rice code per channel
// before a write/read-soft-limit check can stop the codec loop.
//
// ref: libttaR codec/tta.h TTABUF_SAFETY_MARGIN_1_2, TTABUF_SAFETY_MARGIN_3
const (
	safetyMargin12 = 8207
	safetyMargin3  = 2097167
)

// SafetyMargin returns the total dest/src buffer headroom Encode/Decode
// need beyond a frame's expected byte count, for the given sample width and
// channel count.
//
// ref: libttaR codec/tta.h get_safety_margin
func SafetyMargin(samplebytes pcm.SampleBytes, nchan int) int {
	if samplebytes == pcm.SampleBytes3 {
		return nchan * safetyMargin3
	}
	return nchan * safetyMargin12
}

// NSamplesPerFrame returns the number of audio samples (per channel) in one
// TTA1 frame at the given sample rate, or 0 if samplerate is zero or large
// enough to overflow the computation.
//
// ref: libttaR codec/nsamples_perframe_tta1.c libttaR_nsamples_perframe_tta1
func NSamplesPerFrame(samplerate int) int {
	if samplerate < 0 || samplerate > (1<<63-1)/256 {
		return 0
	}
	return (samplerate * 256) / 245
}

// SupportsChannels reports whether nchan is a channel count this codec can
// encode/decode. Unlike the reference, which can be built with unrolled
// mono/stereo loops individually disabled, this port always supports every
// positive channel count through the same mono/general dispatch, so the
// only invalid value is zero.
//
// ref: libttaR codec/test_nchan.c libttaR_test_nchan
func SupportsChannels(nchan int) bool {
	return nchan > 0
}
