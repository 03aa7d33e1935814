package pipeline

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/ttar-go/libttar"
	"github.com/ttar-go/libttar/pcm"
)

// Config is the per-stream configuration the pipeline needs beyond what
// the codec core itself takes: the PCM layout and how many worker
// goroutines to spread frames across.
//
// ref: spec.md §4.8 "one per online CPU"
type Config struct {
	Format pcm.Format
	// Workers is the number of frame-codec worker goroutines. Values <= 0
	// are treated as 1.
	Workers int
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

// ringSize returns R = 2*W, the ring length spec.md §4.8 and §5 require
// for deadlock freedom (R > W).
func ringSize(workers int) int {
	return 2 * workers
}

// frameLayout bundles the per-frame sizes derived once from a Config,
// shared by both the concurrent pipeline and its sequential fallback.
type frameLayout struct {
	nchan       int
	samplebytes pcm.SampleBytes
	// ni32PerFrame is the nominal (un-truncated) total i32 count across all
	// channels in one frame.
	ni32PerFrame int
	margin       int
}

func newFrameLayout(cfg Config) frameLayout {
	nchan := cfg.Format.NumChannels
	samplebytes := cfg.Format.SampleBytes
	perChan := ttar.NSamplesPerFrame(cfg.Format.SampleRate)
	return frameLayout{
		nchan:        nchan,
		samplebytes:  samplebytes,
		ni32PerFrame: perChan * nchan,
		margin:       ttar.SafetyMargin(samplebytes, nchan),
	}
}

// encodeSlot is one ring element's per-frame scratch: the PCM bytes read
// from the source, the i32 samples converted from them, the TTA bytes
// produced by the worker, and the completion signal the I/O side waits on
// before reusing (or flushing) the slot.
//
// ref: spec.md §3 "Frame-pipeline slot"
type encodeSlot struct {
	frameIdx int
	pcmBuf   []byte
	i32Buf   []int32
	ttaBuf   []byte

	ni32PerFrame int // 0 is the "no more work" sentinel (unused: see Encode's use of channel close)
	truncated    bool

	result  ttar.Result
	nbytes  int
	crc     uint32
	workErr error

	done chan struct{}
}

func newEncodeSlot(layout frameLayout) *encodeSlot {
	return &encodeSlot{
		pcmBuf: make([]byte, layout.ni32PerFrame*int(layout.samplebytes)),
		i32Buf: make([]int32, layout.ni32PerFrame),
		ttaBuf: make([]byte, layout.ni32PerFrame*int(layout.samplebytes)+layout.margin),
		done:   make(chan struct{}, 1),
	}
}

// Encode reads PCM from src, frame by frame, and writes the encoded TTA1
// frame bodies (each immediately followed by its 4-byte little-endian CRC,
// per spec.md §6) to dst, fanning the per-frame codec work out across
// cfg.Workers goroutines while preserving frame order on output.
//
// It returns the stream's seektable (one entry per frame, the total byte
// length of the frame body plus its CRC, matching spec.md §6) and any
// non-fatal per-frame warnings encountered (currently just truncated-tail
// padding on the final frame).
//
// ref: libttaR cli/modes/mode_encode_loop.c, mt-struct.c
func Encode(dst io.Writer, src io.Reader, cfg Config) (seektable []uint32, warnings []Warning, err error) {
	layout := newFrameLayout(cfg)
	workers := cfg.workers()
	ring := ringSize(workers)

	jobs := make(chan *encodeSlot, ring)
	slots := make([]*encodeSlot, ring)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			encodeWorker(jobs, layout)
		}()
	}

	flush := func(slotPos int) error {
		slot := slots[slotPos]
		<-slot.done
		if slot.workErr != nil {
			return slot.workErr
		}
		if slot.truncated {
			warnings = append(warnings, warnf(slot.frameIdx, "truncated PCM input: zero-padded final frame to a whole sample boundary"))
		}
		if _, err := dst.Write(slot.ttaBuf[:slot.nbytes]); err != nil {
			return errors.Wrap(err, "pipeline: write TTA frame")
		}
		var crcBuf [4]byte
		putUint32LE(crcBuf[:], slot.crc)
		if _, err := dst.Write(crcBuf[:]); err != nil {
			return errors.Wrap(err, "pipeline: write frame CRC")
		}
		seektable = append(seektable, uint32(slot.nbytes+4))
		return nil
	}

	produced, nextFlush := 0, 0
	runErr := func() error {
		for {
			if produced-nextFlush == ring {
				if err := flush(nextFlush % ring); err != nil {
					return err
				}
				nextFlush++
			}

			slot := newEncodeSlot(layout)
			slot.frameIdx = produced
			n, truncated, rerr := readPCMFrame(src, slot.pcmBuf, layout)
			if rerr != nil {
				return errors.Wrap(rerr, "pipeline: read PCM")
			}
			if n == 0 {
				break
			}
			nsamples, perr := pcm.Read(slot.i32Buf, slot.pcmBuf[:n], n/int(layout.samplebytes), layout.samplebytes)
			if perr != nil {
				return errors.Wrap(perr, "pipeline: convert PCM to i32")
			}
			slot.ni32PerFrame = nsamples
			slot.truncated = truncated

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

	if runErr != nil {
		return seektable, warnings, runErr
	}
	return seektable, warnings, nil
}

func encodeWorker(jobs <-chan *encodeSlot, layout frameLayout) {
	state := ttar.NewEncodeState(layout.nchan)
	for slot := range jobs {
		result, err := ttar.Encode(slot.ttaBuf, slot.i32Buf[:slot.ni32PerFrame], state, layout.samplebytes, slot.ni32PerFrame, slot.ni32PerFrame)
		if err != nil {
			slot.workErr = errors.Wrapf(err, "pipeline: encode frame %d", slot.frameIdx)
			slot.done <- struct{}{}
			continue
		}
		if result != ttar.Done {
			slot.workErr = errors.Errorf("pipeline: encode frame %d: expected Done, got %v (dest/margin sizing bug)", slot.frameIdx, result)
			slot.done <- struct{}{}
			continue
		}
		slot.nbytes = state.NBytesTTATotal
		slot.crc = state.CRC32()
		slot.done <- struct{}{}
	}
}

// EncodeSequential is the single-threaded fallback of Encode: it runs the
// exact same per-frame codec call path, but fully encodes one frame before
// reading the next, with no ring and no worker goroutines.
//
// ref: spec.md §4.8 "Single-threaded fallback"
func EncodeSequential(dst io.Writer, src io.Reader, cfg Config) (seektable []uint32, warnings []Warning, err error) {
	layout := newFrameLayout(cfg)
	state := ttar.NewEncodeState(layout.nchan)
	slot := newEncodeSlot(layout)

	for frameIdx := 0; ; frameIdx++ {
		n, truncated, rerr := readPCMFrame(src, slot.pcmBuf, layout)
		if rerr != nil {
			return seektable, warnings, errors.Wrap(rerr, "pipeline: read PCM")
		}
		if n == 0 {
			return seektable, warnings, nil
		}
		nsamples, perr := pcm.Read(slot.i32Buf, slot.pcmBuf[:n], n/int(layout.samplebytes), layout.samplebytes)
		if perr != nil {
			return seektable, warnings, errors.Wrap(perr, "pipeline: convert PCM to i32")
		}
		if truncated {
			warnings = append(warnings, warnf(frameIdx, "truncated PCM input: zero-padded final frame to a whole sample boundary"))
		}

		result, err := ttar.Encode(slot.ttaBuf, slot.i32Buf[:nsamples], state, layout.samplebytes, nsamples, nsamples)
		if err != nil {
			return seektable, warnings, errors.Wrapf(err, "pipeline: encode frame %d", frameIdx)
		}
		if result != ttar.Done {
			return seektable, warnings, errors.Errorf("pipeline: encode frame %d: expected Done, got %v", frameIdx, result)
		}

		if _, err := dst.Write(slot.ttaBuf[:state.NBytesTTATotal]); err != nil {
			return seektable, warnings, errors.Wrap(err, "pipeline: write TTA frame")
		}
		var crcBuf [4]byte
		putUint32LE(crcBuf[:], state.CRC32())
		if _, err := dst.Write(crcBuf[:]); err != nil {
			return seektable, warnings, errors.Wrap(err, "pipeline: write frame CRC")
		}
		seektable = append(seektable, uint32(state.NBytesTTATotal+4))
	}
}

// readPCMFrame reads one frame's worth of interleaved PCM bytes
// (layout.ni32PerFrame samples) from src into buf, tolerating a short
// final read: on a read that ends mid-sample or mid-sample-step, it
// zero-pads buf up to the next whole-sample-per-channel boundary and
// reports truncated=true. n is the number of valid+padded bytes now in
// buf (always a multiple of nchan*samplebytes unless it is 0, meaning
// src had nothing left at all).
//
// ref: spec.md §4.8 "if file truncates mid-frame, zero-pad the incomplete
// last sample to a full sample-per-channel boundary, emit a warning"
func readPCMFrame(src io.Reader, buf []byte, layout frameLayout) (n int, truncated bool, err error) {
	want := layout.ni32PerFrame * int(layout.samplebytes)
	n, err = io.ReadFull(src, buf[:want])
	switch err {
	case nil:
		return n, false, nil
	case io.EOF:
		if n == 0 {
			return 0, false, nil
		}
	case io.ErrUnexpectedEOF:
		// n > 0, short read; fall through to padding.
	default:
		return 0, false, err
	}

	step := layout.nchan * int(layout.samplebytes)
	padded := ((n + step - 1) / step) * step
	for i := n; i < padded; i++ {
		buf[i] = 0
	}
	return padded, true, nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
