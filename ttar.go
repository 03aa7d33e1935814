package ttar

import (
	"github.com/ttar-go/libttar/codec"
	"github.com/ttar-go/libttar/codec/rice"
	"github.com/ttar-go/libttar/pcm"
)

// Result reports how far Encode/Decode got with the current frame.
type Result int

const (
	// Again means the frame has not finished; call again with more source.
	Again Result = iota
	// Done means the frame finished: its CRC is final and the codec's
	// per-frame counters are ready for the next IsNewFrame call.
	Done
	// DecodeFail means Decode consumed (or was about to consume) more TTA
	// bytes than the frame is supposed to contain, produced all of the
	// frame's samples without consuming all of its bytes, or the bitstream
	// was corrupt; the frame's samples cannot be trusted.
	DecodeFail
)

// Encode runs the codec forward over src, writing TTA-coded bytes to dest,
// until either ni32Target samples have been consumed or dest is exhausted.
// dest must have SafetyMargin(samplebytes, len(state.Channels)) bytes of
// headroom past the frame's expected size.
//
// ni32Target must be evenly divisible by len(state.Channels); it is the
// number of source i32 this call should consume, not the whole frame's size
// (ni32PerFrame is the frame's total size, used to detect frame completion
// across however many calls it takes to reach it).
//
// ref: libttaR tta_enc.c libttaR_tta_encode
func Encode(dest []byte, src []int32, state *EncodeState, samplebytes pcm.SampleBytes, ni32Target, ni32PerFrame int) (Result, error) {
	nchan := len(state.Channels)

	if len(dest) == 0 || len(src) == 0 || ni32Target == 0 || ni32PerFrame == 0 || nchan == 0 {
		return Again, ErrInvalidRange
	}
	if samplebytes == 0 || samplebytes > pcm.SampleBytes3 {
		return Again, ErrInvalidRange
	}
	if ni32Target%nchan != 0 {
		return Again, ErrInvalidTrunc
	}
	margin := SafetyMargin(samplebytes, nchan)
	if len(dest) < margin {
		return Again, ErrInvalidBounds
	}
	if ni32Target > len(src) || ni32Target > ni32PerFrame-state.NI32Total {
		return Again, ErrInvalidBounds
	}

	if state.IsNewFrame {
		state.NI32Total = 0
		state.NBytesTTATotal = 0
		state.crc.Reset()
		for i := range state.Channels {
			state.Channels[i] = codec.NewChannelState()
		}
		state.IsNewFrame = false
	}

	params := codec.ParamsFor(samplebytes)
	writeSoftLimit := len(dest) - margin

	nbytesEnc, ni32 := codec.EncodeFrame(dest, src, state.crc, &state.cache, state.Channels, params, ni32Target, writeSoftLimit)

	state.NI32 = ni32
	state.NI32Total += ni32

	result := Again
	if state.NI32Total == ni32PerFrame {
		nbytesEnc = state.cache.Flush(dest, nbytesEnc, state.crc)
		result = Done
		state.IsNewFrame = true
	}
	state.NBytesTTA = nbytesEnc
	state.NBytesTTATotal += nbytesEnc
	state.NCallsCodecTotal++

	return result, nil
}

// Decode runs the codec in reverse over src, writing reconstructed i32
// samples to dest, until either ni32Target samples have been produced or
// src's nbytesTTATarget budget is exhausted. src must have
// SafetyMargin(samplebytes, len(state.Channels)) bytes of headroom past the
// frame's expected size.
//
// nbytesTTAPerFrame is the number of TTA bytes the stream's seektable
// records for this frame (the container format's own bookkeeping, supplied
// by the caller — see pipeline.DecodeSeektable); it is how Decode
// distinguishes a cleanly finished frame from one that came up short.
//
// ref: libttaR tta_dec.c libttaR_tta_decode
func Decode(dest []int32, src []byte, state *DecodeState, samplebytes pcm.SampleBytes, ni32Target, nbytesTTATarget, ni32PerFrame, nbytesTTAPerFrame int) (Result, error) {
	nchan := len(state.Channels)

	if len(src) == 0 || len(dest) == 0 || ni32Target == 0 || nbytesTTATarget == 0 || ni32PerFrame == 0 || nbytesTTAPerFrame == 0 || nchan == 0 {
		return Again, ErrInvalidRange
	}
	if samplebytes == 0 || samplebytes > pcm.SampleBytes3 {
		return Again, ErrInvalidRange
	}
	if ni32Target%nchan != 0 {
		return Again, ErrInvalidTrunc
	}
	margin := SafetyMargin(samplebytes, nchan)
	if len(src) < margin ||
		len(src) < nbytesTTATarget ||
		nbytesTTATarget > nbytesTTAPerFrame-state.NBytesTTATotal {
		return Again, ErrInvalidBounds
	}
	if ni32Target > len(dest) || ni32Target > ni32PerFrame-state.NI32Total {
		return Again, ErrInvalidBounds
	}

	if state.IsNewFrame {
		state.NI32Total = 0
		state.NBytesTTATotal = 0
		state.crc.Reset()
		state.cache = rice.DecodeCache{}
		for i := range state.Channels {
			state.Channels[i] = codec.NewChannelState()
		}
		state.IsNewFrame = false
	}

	params := codec.ParamsFor(samplebytes)
	laxLimit := rice.UnaryLaxLimit(uint(samplebytes))
	// ref: spec.md §4.7 "A soft read-limit min(nbytesTTATarget, src_length
	// − safety_margin) drives the exit."
	readSoftLimit := nbytesTTATarget
	if bySrc := len(src) - margin; bySrc < readSoftLimit {
		readSoftLimit = bySrc
	}

	nbytesDec, ni32, ok := codec.DecodeFrame(dest, src, state.crc, &state.cache, state.Channels, params, laxLimit, ni32Target, readSoftLimit)

	state.NI32 = ni32
	state.NI32Total += ni32
	state.NBytesTTA = nbytesDec
	state.NBytesTTATotal += nbytesDec
	state.NCallsCodecTotal++

	result := Again
	if !ok || state.NI32Total == ni32PerFrame || state.NBytesTTATotal > nbytesTTAPerFrame {
		state.IsNewFrame = true
		if ok && state.NBytesTTATotal == nbytesTTAPerFrame {
			result = Done
		} else {
			result = DecodeFail
		}
	}

	return result, nil
}
