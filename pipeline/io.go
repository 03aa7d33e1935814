package pipeline

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ttar-go/libttar"
	"github.com/ttar-go/libttar/internal/bufseekio"
	"github.com/ttar-go/libttar/pcm"
)

// BufferedSource wraps a seekable stream (typically an *os.File) with
// read-ahead buffering, cutting the I/O goroutine's per-frame reads down to
// occasional whole-buffer refills instead of one syscall per frame. Encode
// and Decode both accept a plain io.Reader, so wrapping is the caller's
// choice; do it whenever src is backed by a file or other syscall-costly
// io.ReadSeeker.
func BufferedSource(rs io.ReadSeeker) io.Reader {
	return bufseekio.NewReadSeeker(rs)
}

// DecodeFrameAt decodes a single frame out of a TTA1 stream without
// touching any frame before it, using seektable to compute the frame's
// byte offset and src's Seek to jump straight there. This is the random-
// access counterpart to Decode's sequential full-stream pass: looking up
// one frame by index is the operation a seektable exists for.
//
// ref: libttaR cli/formats/tta.c seek-and-decode-one-frame usage of the
// seektable
func DecodeFrameAt(dst io.Writer, src io.ReadSeeker, seektable []uint32, frameIdx int, cfg Config) (Warning, error) {
	perFrameLens, err := DecodeSeektable(seektable)
	if err != nil {
		return Warning{}, err
	}
	if frameIdx < 0 || frameIdx >= len(perFrameLens) {
		return Warning{}, errors.Errorf("pipeline: frame index %d out of range [0,%d)", frameIdx, len(perFrameLens))
	}

	var offset int64
	for _, raw := range seektable[:frameIdx] {
		offset += int64(raw)
	}

	buffered := bufseekio.NewReadSeeker(src)
	if _, err := buffered.Seek(offset, io.SeekStart); err != nil {
		return Warning{}, errors.Wrap(err, "pipeline: seek to frame")
	}

	layout := newFrameLayout(cfg)
	slot := newDecodeSlot(layout, perFrameLens[frameIdx])
	slot.frameIdx = frameIdx
	if err := readTTAFrame(buffered, slot); err != nil {
		return Warning{}, errors.Wrap(err, "pipeline: read TTA frame")
	}

	state := ttar.NewDecodeState(layout.nchan)
	if slot.bodyAvail == 0 {
		return warnf(frameIdx, "corrupt or truncated frame: decoded 0/%d samples", len(slot.i32Buf)), errors.New("pipeline: empty frame")
	}
	result, derr := ttar.Decode(slot.i32Buf, slot.srcBuf, state, layout.samplebytes,
		len(slot.i32Buf), slot.bodyAvail, len(slot.i32Buf), slot.bodyAvail)
	if derr != nil {
		return Warning{}, errors.Wrapf(derr, "pipeline: decode frame %d", frameIdx)
	}
	if result != ttar.Done {
		zeroFill(slot.i32Buf[state.NI32Total:])
	}
	if _, err := pcm.Write(slot.pcmBuf, slot.i32Buf, len(slot.i32Buf), layout.samplebytes); err != nil {
		return Warning{}, errors.Wrapf(err, "pipeline: convert i32 to PCM for frame %d", frameIdx)
	}
	if _, err := dst.Write(slot.pcmBuf); err != nil {
		return Warning{}, errors.Wrap(err, "pipeline: write PCM frame")
	}

	if result != ttar.Done {
		return warnf(frameIdx, "corrupt or truncated frame: decoded %d/%d samples", state.NI32Total, len(slot.i32Buf)), nil
	}
	return Warning{}, nil
}
