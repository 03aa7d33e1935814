// Package pcm converts between raw little-endian PCM byte buffers and the
// int32 sample buffers the codec packages operate on.
//
// Only 8-bit unsigned, 16-bit signed little-endian, and 24-bit signed
// little-endian sample widths are supported, matching the widths the
// reference codec ships.
//
// ref: libttaR codec/pcm_read.c, codec/pcm_write.c
package pcm

import (
	"github.com/go-audio/audio"
	"github.com/mewkiz/pkg/errutil"

	"github.com/ttar-go/libttar/internal/bits"
)

// SampleBytes is the on-disk width of one PCM sample, in bytes.
type SampleBytes uint

// Supported sample widths.
const (
	SampleBytes1 SampleBytes = 1 // unsigned 8-bit
	SampleBytes2 SampleBytes = 2 // signed 16-bit little-endian
	SampleBytes3 SampleBytes = 3 // signed 24-bit little-endian
)

// Format describes the PCM layout of a stream, mirroring go-audio/audio's
// Format so the same value doubles as the frame pipeline's stream config.
type Format struct {
	SampleRate  int
	NumChannels int
	SampleBytes SampleBytes
}

// AudioFormat returns the go-audio/audio.Format equivalent of f.
func (f Format) AudioFormat() *audio.Format {
	return &audio.Format{SampleRate: f.SampleRate, NumChannels: f.NumChannels}
}

// Read decodes nsamples PCM samples of the given width from src into dest,
// returning the number of samples decoded. It returns an error if
// samplebytes names an unsupported width or src is too short.
//
// ref: libttaR_pcm_read
func Read(dest []int32, src []byte, nsamples int, samplebytes SampleBytes) (int, error) {
	if len(dest) < nsamples {
		return 0, errutil.Newf("pcm.Read: dest too small: have %d, need %d", len(dest), nsamples)
	}
	if len(src) < nsamples*int(samplebytes) {
		return 0, errutil.Newf("pcm.Read: src too short: have %d bytes, need %d", len(src), nsamples*int(samplebytes))
	}
	switch samplebytes {
	case SampleBytes1:
		return readU8(dest, src, nsamples), nil
	case SampleBytes2:
		return readI16LE(dest, src, nsamples), nil
	case SampleBytes3:
		return readI24LE(dest, src, nsamples), nil
	default:
		return 0, errutil.Newf("pcm.Read: unsupported sample width: %d bytes", samplebytes)
	}
}

// Write encodes nsamples int32 samples from src into dest as PCM of the
// given width, returning the number of samples encoded.
//
// ref: libttaR_pcm_write
func Write(dest []byte, src []int32, nsamples int, samplebytes SampleBytes) (int, error) {
	if len(src) < nsamples {
		return 0, errutil.Newf("pcm.Write: src too small: have %d, need %d", len(src), nsamples)
	}
	if len(dest) < nsamples*int(samplebytes) {
		return 0, errutil.Newf("pcm.Write: dest too short: have %d bytes, need %d", len(dest), nsamples*int(samplebytes))
	}
	switch samplebytes {
	case SampleBytes1:
		return writeU8(dest, src, nsamples), nil
	case SampleBytes2:
		return writeI16LE(dest, src, nsamples), nil
	case SampleBytes3:
		return writeI24LE(dest, src, nsamples), nil
	default:
		return 0, errutil.Newf("pcm.Write: unsupported sample width: %d bytes", samplebytes)
	}
}

func readU8(dest []int32, src []byte, nsamples int) int {
	for i := 0; i < nsamples; i++ {
		dest[i] = int32(src[i]) - 0x80
	}
	return nsamples
}

func readI16LE(dest []int32, src []byte, nsamples int) int {
	for i, j := 0, 0; i < nsamples; i, j = i+1, j+2 {
		v := uint64(src[j]) | uint64(src[j+1])<<8
		dest[i] = int32(bits.IntN(v, 16))
	}
	return nsamples
}

func readI24LE(dest []int32, src []byte, nsamples int) int {
	for i, j := 0, 0; i < nsamples; i, j = i+1, j+3 {
		v := uint64(src[j]) | uint64(src[j+1])<<8 | uint64(src[j+2])<<16
		dest[i] = int32(bits.IntN(v, 24))
	}
	return nsamples
}

func writeU8(dest []byte, src []int32, nsamples int) int {
	for i := 0; i < nsamples; i++ {
		dest[i] = byte(src[i]) + 0x80
	}
	return nsamples
}

func writeI16LE(dest []byte, src []int32, nsamples int) int {
	for i, j := 0, 0; i < nsamples; i, j = i+1, j+2 {
		x := uint32(src[i])
		dest[j] = byte(x)
		dest[j+1] = byte(x >> 8)
	}
	return nsamples
}

func writeI24LE(dest []byte, src []int32, nsamples int) int {
	for i, j := 0, 0; i < nsamples; i, j = i+1, j+3 {
		x := uint32(src[i])
		dest[j] = byte(x)
		dest[j+1] = byte(x >> 8)
		dest[j+2] = byte(x >> 16)
	}
	return nsamples
}

// NewIntBuffer allocates an audio.IntBuffer sized for nsamples samples in
// the given format, for callers that want the go-audio/audio interchange
// type; the codec and pipeline packages work on []int32 and do not use it.
func NewIntBuffer(format Format, nsamples int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format:         format.AudioFormat(),
		Data:           make([]int, nsamples),
		SourceBitDepth: int(format.SampleBytes) * 8,
	}
}

// ReadIntBuffer decodes nsamples PCM samples from src straight into buf's
// Data field, for callers that want the go-audio/audio interchange type
// instead of a raw []int32.
func ReadIntBuffer(buf *audio.IntBuffer, src []byte, nsamples int, samplebytes SampleBytes) (int, error) {
	i32 := make([]int32, nsamples)
	n, err := Read(i32, src, nsamples, samplebytes)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		buf.Data[i] = int(i32[i])
	}
	return n, nil
}

// WriteIntBuffer is ReadIntBuffer's inverse: it encodes buf's Data field
// back to PCM bytes.
func WriteIntBuffer(dest []byte, buf *audio.IntBuffer, nsamples int, samplebytes SampleBytes) (int, error) {
	i32 := make([]int32, nsamples)
	for i := 0; i < nsamples; i++ {
		i32[i] = int32(buf.Data[i])
	}
	return Write(dest, i32, nsamples, samplebytes)
}
