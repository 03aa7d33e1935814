package ttar

import (
	"github.com/ttar-go/libttar/codec"
	"github.com/ttar-go/libttar/codec/rice"
	"github.com/ttar-go/libttar/crc32ttar"
)

// EncodeState is the reentrant state one Encode caller thread carries across
// a frame: per-channel codec state (adaptive Rice/filter/predictor) plus the
// current frame's bookkeeping. Every TTA1 frame starts its codec state fresh
// (this is what lets a frame be decoded independently of every other one),
// so both reset together at a frame boundary.
//
// The zero value is not usable; construct with NewEncodeState.
//
// ref: libttaR.h struct LibTTAr_CodecState_User, struct LibTTAr_CodecState_Priv
type EncodeState struct {
	Channels []codec.ChannelState
	cache    rice.EncodeCache
	crc      *crc32ttar.Digest
	nchan    int

	// IsNewFrame is true before the first Encode call of each frame:
	// NewEncodeState sets it, and Encode sets it again when it reports Done.
	// Encode clears it after reinitializing the per-channel codec state and
	// the per-frame counters and CRC.
	IsNewFrame bool

	NI32             int // i32 consumed by the most recent call
	NI32Total        int // i32 consumed so far this frame
	NBytesTTA        int // TTA bytes produced by the most recent call
	NBytesTTATotal   int // TTA bytes produced so far this frame
	NCallsCodecTotal uint64
}

// NewEncodeState allocates fresh per-channel state for nchan channels, ready
// to encode the first frame of a new stream.
func NewEncodeState(nchan int) *EncodeState {
	return &EncodeState{
		Channels:   newChannelStates(nchan),
		crc:        crc32ttar.New(),
		nchan:      nchan,
		IsNewFrame: true,
	}
}

func newChannelStates(nchan int) []codec.ChannelState {
	channels := make([]codec.ChannelState, nchan)
	for i := range channels {
		channels[i] = codec.NewChannelState()
	}
	return channels
}

// CRC32 returns the running CRC-32 of the frame in progress; once Encode has
// reported Done, this is the frame's final checksum.
func (s *EncodeState) CRC32() uint32 {
	return s.crc.Sum32()
}

// NChan returns the channel count s was constructed with.
func (s *EncodeState) NChan() int {
	return s.nchan
}

// DecodeState is EncodeState's decode-direction counterpart.
type DecodeState struct {
	Channels []codec.ChannelState
	cache    rice.DecodeCache
	crc      *crc32ttar.Digest
	nchan    int

	IsNewFrame bool

	NI32             int
	NI32Total        int
	NBytesTTA        int
	NBytesTTATotal   int
	NCallsCodecTotal uint64
}

// NewDecodeState allocates fresh per-channel state for nchan channels, ready
// to decode the first frame of a new stream.
func NewDecodeState(nchan int) *DecodeState {
	return &DecodeState{
		Channels:   newChannelStates(nchan),
		crc:        crc32ttar.New(),
		nchan:      nchan,
		IsNewFrame: true,
	}
}

// CRC32 returns the running CRC-32 of the frame in progress; once Decode has
// reported Done, this is the frame's final checksum, comparable against the
// TTA stream's stored per-frame CRC.
func (s *DecodeState) CRC32() uint32 {
	return s.crc.Sum32()
}

// NChan returns the channel count s was constructed with.
func (s *DecodeState) NChan() int {
	return s.nchan
}
