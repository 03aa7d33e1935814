package pipeline

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/ttar-go/libttar"
	"github.com/ttar-go/libttar/crc32ttar"
	"github.com/ttar-go/libttar/pcm"
)

// decodeSlot is one ring element's per-frame scratch for decoding: the raw
// TTA bytes read for the frame body (sized to this frame's declared
// length, which may be shorter than nbytesTTAPerFrame for a truncated
// tail), the stream's own trailing CRC for that frame (if it was present),
// and the reconstructed i32/PCM output.
type decodeSlot struct {
	frameIdx int

	nbytesTTAPerFrame int // this frame's declared body length (seektable entry - 4)
	srcBuf            []byte
	bodyAvail         int // bytes of srcBuf that hold real (non-padding) data
	haveStoredCRC     bool
	storedCRC         uint32

	i32Buf []int32
	pcmBuf []byte

	result       ttar.Result
	ni32Produced int
	crc          uint32
	workErr      error

	done chan struct{}
}

func newDecodeSlot(layout frameLayout, nbytesTTAPerFrame int) *decodeSlot {
	return &decodeSlot{
		nbytesTTAPerFrame: nbytesTTAPerFrame,
		srcBuf:            make([]byte, nbytesTTAPerFrame+layout.margin),
		i32Buf:            make([]int32, layout.ni32PerFrame),
		pcmBuf:            make([]byte, layout.ni32PerFrame*int(layout.samplebytes)),
		done:              make(chan struct{}, 1),
	}
}

// Decode reads TTA1 frame bodies (each followed by its 4-byte little-endian
// CRC) from src, one per seektable entry, and writes reconstructed PCM to
// dst in the same order, fanning per-frame decode work out across
// cfg.Workers goroutines.
//
// seektable is the stream's raw seektable entries (frame body length plus
// 4, per spec.md §6); use DecodeSeektable first if you need the
// nbytesTTAPerFrame values validated independently.
//
// ref: libttaR cli/modes/mode_decode_loop.c, mt-struct.c
func Decode(dst io.Writer, src io.Reader, seektable []uint32, cfg Config) (warnings []Warning, err error) {
	layout := newFrameLayout(cfg)
	perFrameLens, err := DecodeSeektable(seektable)
	if err != nil {
		return nil, err
	}

	workers := cfg.workers()
	ring := ringSize(workers)

	jobs := make(chan *decodeSlot, ring)
	slots := make([]*decodeSlot, ring)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			decodeWorker(jobs, layout)
		}()
	}

	flush := func(slotPos int) error {
		slot := slots[slotPos]
		<-slot.done
		if slot.workErr != nil {
			return slot.workErr
		}
		if slot.result != ttar.Done {
			warnings = append(warnings, warnf(slot.frameIdx, "corrupt or truncated frame: decoded %d/%d samples", slot.ni32Produced, len(slot.i32Buf)))
		}
		if slot.haveStoredCRC && slot.crc != slot.storedCRC {
			warnings = append(warnings, warnf(slot.frameIdx, "frame CRC mismatch: got %#08x, want %#08x", slot.crc, slot.storedCRC))
		}
		if _, err := dst.Write(slot.pcmBuf); err != nil {
			return errors.Wrap(err, "pipeline: write PCM frame")
		}
		return nil
	}

	produced, nextFlush := 0, 0
	runErr := func() error {
		for _, nbytesTTAPerFrame := range perFrameLens {
			if produced-nextFlush == ring {
				if err := flush(nextFlush % ring); err != nil {
					return err
				}
				nextFlush++
			}

			slot := newDecodeSlot(layout, nbytesTTAPerFrame)
			slot.frameIdx = produced
			if err := readTTAFrame(src, slot); err != nil {
				return errors.Wrap(err, "pipeline: read TTA frame")
			}

			slots[produced%ring] = slot
			jobs <- slot
			produced++
		}
		close(jobs)
		for nextFlush < produced {
			if err := flush(nextFlush % ring); err != nil {
				return err
			}
			nextFlush++
		}
		return nil
	}()
	wg.Wait()

	return warnings, runErr
}

func decodeWorker(jobs <-chan *decodeSlot, layout frameLayout) {
	state := ttar.NewDecodeState(layout.nchan)
	for slot := range jobs {
		if slot.bodyAvail == 0 {
			// Nothing at all was read for this frame: no codec call can be
			// made (ni32Target/nbytesTTATarget must be non-zero), so the
			// whole frame is reported as a decode failure and zero-filled.
			slot.result = ttar.DecodeFail
			slot.crc = crc32ttar.New().Sum32()
			zeroFill(slot.i32Buf)
			pcm.Write(slot.pcmBuf, slot.i32Buf, len(slot.i32Buf), layout.samplebytes)
			slot.done <- struct{}{}
			continue
		}

		result, err := ttar.Decode(slot.i32Buf, slot.srcBuf, state, layout.samplebytes,
			len(slot.i32Buf), slot.bodyAvail, len(slot.i32Buf), slot.bodyAvail)
		if err != nil {
			slot.workErr = errors.Wrapf(err, "pipeline: decode frame %d", slot.frameIdx)
			slot.done <- struct{}{}
			continue
		}

		slot.result = result
		slot.ni32Produced = state.NI32Total
		slot.crc = state.CRC32()
		if result != ttar.Done {
			zeroFill(slot.i32Buf[state.NI32Total:])
		}
		if _, err := pcm.Write(slot.pcmBuf, slot.i32Buf, len(slot.i32Buf), layout.samplebytes); err != nil {
			slot.workErr = errors.Wrapf(err, "pipeline: convert i32 to PCM for frame %d", slot.frameIdx)
		}
		slot.done <- struct{}{}
	}
}

// DecodeSequential is the single-threaded fallback of Decode.
//
// ref: spec.md §4.8 "Single-threaded fallback"
func DecodeSequential(dst io.Writer, src io.Reader, seektable []uint32, cfg Config) (warnings []Warning, err error) {
	layout := newFrameLayout(cfg)
	perFrameLens, err := DecodeSeektable(seektable)
	if err != nil {
		return nil, err
	}

	state := ttar.NewDecodeState(layout.nchan)
	for frameIdx, nbytesTTAPerFrame := range perFrameLens {
		slot := newDecodeSlot(layout, nbytesTTAPerFrame)
		slot.frameIdx = frameIdx
		if err := readTTAFrame(src, slot); err != nil {
			return warnings, errors.Wrap(err, "pipeline: read TTA frame")
		}

		var result ttar.Result
		var ni32Produced int
		var crc uint32
		if slot.bodyAvail == 0 {
			result = ttar.DecodeFail
			crc = crc32ttar.New().Sum32()
			zeroFill(slot.i32Buf)
		} else {
			var derr error
			result, derr = ttar.Decode(slot.i32Buf, slot.srcBuf, state, layout.samplebytes,
				len(slot.i32Buf), slot.bodyAvail, len(slot.i32Buf), slot.bodyAvail)
			if derr != nil {
				return warnings, errors.Wrapf(derr, "pipeline: decode frame %d", frameIdx)
			}
			ni32Produced = state.NI32Total
			crc = state.CRC32()
			if result != ttar.Done {
				zeroFill(slot.i32Buf[ni32Produced:])
			}
		}

		if result != ttar.Done {
			warnings = append(warnings, warnf(frameIdx, "corrupt or truncated frame: decoded %d/%d samples", ni32Produced, len(slot.i32Buf)))
		}
		if slot.haveStoredCRC && crc != slot.storedCRC {
			warnings = append(warnings, warnf(frameIdx, "frame CRC mismatch: got %#08x, want %#08x", crc, slot.storedCRC))
		}

		if _, err := pcm.Write(slot.pcmBuf, slot.i32Buf, len(slot.i32Buf), layout.samplebytes); err != nil {
			return warnings, errors.Wrapf(err, "pipeline: convert i32 to PCM for frame %d", frameIdx)
		}
		if _, err := dst.Write(slot.pcmBuf); err != nil {
			return warnings, errors.Wrap(err, "pipeline: write PCM frame")
		}
	}
	return warnings, nil
}

// readTTAFrame reads one frame's raw bytes (its declared body length plus
// the trailing 4-byte CRC) from src into slot, tolerating an early EOF:
// whatever was actually read becomes slot.bodyAvail (capped at the body
// length), and the stored CRC is only recorded if all 4 of its bytes
// arrived.
//
// ref: spec.md §4.8 "Truncated tail: the I/O thread marks the slot and
// lets the worker decode"
func readTTAFrame(src io.Reader, slot *decodeSlot) error {
	raw := make([]byte, slot.nbytesTTAPerFrame+4)
	n, err := io.ReadFull(src, raw)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		// handled below via n
	default:
		return err
	}

	bodyAvail := n
	if bodyAvail > slot.nbytesTTAPerFrame {
		bodyAvail = slot.nbytesTTAPerFrame
	}
	copy(slot.srcBuf, raw[:bodyAvail])
	slot.bodyAvail = bodyAvail

	if n == slot.nbytesTTAPerFrame+4 {
		slot.storedCRC = binary.LittleEndian.Uint32(raw[slot.nbytesTTAPerFrame:])
		slot.haveStoredCRC = true
	}
	return nil
}

func zeroFill(dst []int32) {
	for i := range dst {
		dst[i] = 0
	}
}
