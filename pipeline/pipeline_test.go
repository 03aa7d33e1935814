package pipeline

import (
	"bytes"
	"testing"

	"github.com/ttar-go/libttar/pcm"
)

// genPCM fills a deterministic pseudo-random interleaved PCM stream of the
// given sample width so tests don't depend on real audio fixtures.
func genPCM(nsamples int, samplebytes pcm.SampleBytes, seed uint32) []byte {
	buf := make([]byte, nsamples*int(samplebytes))
	x := seed
	for i := 0; i < nsamples; i++ {
		x = x*1103515245 + 12345
		v := int32(x%60000) - 30000
		switch samplebytes {
		case pcm.SampleBytes1:
			buf[i] = byte(v) + 0x80
		case pcm.SampleBytes2:
			j := i * 2
			buf[j] = byte(v)
			buf[j+1] = byte(v >> 8)
		case pcm.SampleBytes3:
			j := i * 3
			buf[j] = byte(v)
			buf[j+1] = byte(v >> 8)
			buf[j+2] = byte(v >> 16)
		}
	}
	return buf
}

func testConfig(nchan int, samplebytes pcm.SampleBytes, workers int) Config {
	return Config{
		Format: pcm.Format{
			SampleRate:  44100,
			NumChannels: nchan,
			SampleBytes: samplebytes,
		},
		Workers: workers,
	}
}

// TestOrdering is property P1: for several worker counts, concurrent Encode
// output must be byte-for-byte identical to the sequential baseline, and
// the decoded PCM must round-trip back to the source.
func TestOrdering(t *testing.T) {
	const nchan = 2
	const samplebytes = pcm.SampleBytes2
	layout := newFrameLayout(testConfig(nchan, samplebytes, 1))
	// 5 frames plus a short final one.
	nsamplesPerChan := layout.ni32PerFrame/nchan*5 + 37
	pcmIn := genPCM(nsamplesPerChan*nchan, samplebytes, 12345)

	var seqOut bytes.Buffer
	seqTable, seqWarnings, err := EncodeSequential(&seqOut, bytes.NewReader(pcmIn), testConfig(nchan, samplebytes, 1))
	if err != nil {
		t.Fatalf("EncodeSequential: %v", err)
	}

	for _, workers := range []int{1, 2, 4, 8} {
		var out bytes.Buffer
		table, warnings, err := Encode(&out, bytes.NewReader(pcmIn), testConfig(nchan, samplebytes, workers))
		if err != nil {
			t.Fatalf("workers=%d: Encode: %v", workers, err)
		}
		if !bytes.Equal(out.Bytes(), seqOut.Bytes()) {
			t.Fatalf("workers=%d: Encode output differs from EncodeSequential baseline (%d vs %d bytes)", workers, out.Len(), seqOut.Len())
		}
		if len(table) != len(seqTable) {
			t.Fatalf("workers=%d: seektable length = %d, want %d", workers, len(table), len(seqTable))
		}
		for i := range table {
			if table[i] != seqTable[i] {
				t.Errorf("workers=%d: seektable[%d] = %d, want %d", workers, i, table[i], seqTable[i])
			}
		}
		if len(warnings) != len(seqWarnings) {
			t.Errorf("workers=%d: got %d warnings, want %d", workers, len(warnings), len(seqWarnings))
		}

		var pcmOut bytes.Buffer
		if _, err := Decode(&pcmOut, bytes.NewReader(out.Bytes()), table, testConfig(nchan, samplebytes, workers)); err != nil {
			t.Fatalf("workers=%d: Decode: %v", workers, err)
		}
		if !bytes.Equal(pcmOut.Bytes(), pcmIn) {
			t.Fatalf("workers=%d: round trip PCM mismatch", workers)
		}
	}
}

// TestTinyInput is property P2: fewer input frames than a ring (R = 2W)
// holds must still terminate and emit exactly those frames' worth of
// output.
func TestTinyInput(t *testing.T) {
	const nchan = 1
	const samplebytes = pcm.SampleBytes1
	layout := newFrameLayout(testConfig(nchan, samplebytes, 4)) // R = 8
	// One frame only, far fewer than R.
	pcmIn := genPCM(layout.ni32PerFrame, samplebytes, 999)

	var out bytes.Buffer
	table, _, err := Encode(&out, bytes.NewReader(pcmIn), testConfig(nchan, samplebytes, 4))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("seektable has %d entries, want 1", len(table))
	}

	var pcmOut bytes.Buffer
	if _, err := Decode(&pcmOut, bytes.NewReader(out.Bytes()), table, testConfig(nchan, samplebytes, 4)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(pcmOut.Bytes(), pcmIn) {
		t.Fatalf("round trip PCM mismatch for tiny input")
	}
}

// TestEmptyInput covers zero frames (narrower than TestTinyInput's one
// frame): the pipeline must terminate cleanly with an empty seektable.
func TestEmptyInput(t *testing.T) {
	var out bytes.Buffer
	table, warnings, err := Encode(&out, bytes.NewReader(nil), testConfig(1, pcm.SampleBytes1, 3))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(table) != 0 || out.Len() != 0 || len(warnings) != 0 {
		t.Fatalf("Encode of empty input produced table=%v out=%d warnings=%v, want all empty", table, out.Len(), warnings)
	}
}

// TestTruncatedTailDecode is scenario S4: stripping the trailing bytes of
// a frame's TTA body must surface as a non-fatal decode warning with
// zero-padded PCM, not a fatal pipeline error.
func TestTruncatedTailDecode(t *testing.T) {
	const nchan = 1
	const samplebytes = pcm.SampleBytes2
	cfg := testConfig(nchan, samplebytes, 1)
	layout := newFrameLayout(cfg)
	pcmIn := genPCM(layout.ni32PerFrame, samplebytes, 42)

	var out bytes.Buffer
	table, _, err := EncodeSequential(&out, bytes.NewReader(pcmIn), cfg)
	if err != nil {
		t.Fatalf("EncodeSequential: %v", err)
	}

	full := out.Bytes()
	truncated := full[:len(full)-8] // drop the CRC and a few body bytes

	var pcmOut bytes.Buffer
	warnings, err := Decode(&pcmOut, bytes.NewReader(truncated), table, cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatalf("expected at least one warning for a truncated frame")
	}
	if pcmOut.Len() != len(pcmIn) {
		t.Fatalf("zero-padded PCM length = %d, want %d", pcmOut.Len(), len(pcmIn))
	}
}

// TestDecodeFrameAt checks that decoding a single frame by seeking straight
// to it (using the seektable to find its offset) reproduces the same PCM
// as decoding that frame in the middle of a full sequential pass.
func TestDecodeFrameAt(t *testing.T) {
	const nchan = 2
	const samplebytes = pcm.SampleBytes2
	cfg := testConfig(nchan, samplebytes, 1)
	layout := newFrameLayout(cfg)
	nsamplesPerChan := layout.ni32PerFrame/nchan*3 + 11
	pcmIn := genPCM(nsamplesPerChan*nchan, samplebytes, 777)

	var out bytes.Buffer
	table, _, err := EncodeSequential(&out, bytes.NewReader(pcmIn), cfg)
	if err != nil {
		t.Fatalf("EncodeSequential: %v", err)
	}
	if len(table) < 3 {
		t.Fatalf("need at least 3 frames, got %d", len(table))
	}

	var full bytes.Buffer
	if _, err := Decode(&full, bytes.NewReader(out.Bytes()), table, cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	frameBytes := layout.ni32PerFrame * int(samplebytes)
	want := full.Bytes()[frameBytes : 2*frameBytes]

	var got bytes.Buffer
	src := bytes.NewReader(out.Bytes())
	if warning, err := DecodeFrameAt(&got, src, table, 1, cfg); err != nil {
		t.Fatalf("DecodeFrameAt: %v", err)
	} else if warning != (Warning{}) {
		t.Fatalf("DecodeFrameAt: unexpected warning %+v", warning)
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Fatalf("DecodeFrameAt produced %d bytes, want %d bytes matching the sequential decode", got.Len(), len(want))
	}
}

func TestDecodeSeektableRejectsMalformedEntry(t *testing.T) {
	for _, bad := range []uint32{0, 1, 4} {
		if _, err := DecodeSeektable([]uint32{bad}); err != ErrMalformedSeektableEntry {
			t.Errorf("DecodeSeektable(%d): got %v, want ErrMalformedSeektableEntry", bad, err)
		}
	}
	sizes, err := DecodeSeektable([]uint32{104, 5})
	if err != nil {
		t.Fatalf("DecodeSeektable: %v", err)
	}
	if sizes[0] != 100 || sizes[1] != 1 {
		t.Errorf("DecodeSeektable sizes = %v, want [100 1]", sizes)
	}
}
