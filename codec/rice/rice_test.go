package rice

import (
	"testing"

	"github.com/ttar-go/libttar/crc32ttar"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 4, 5, 8, 16, 100, 1000, 1 << 20, 0, 0, 7, 7, 7}

	dest := make([]byte, len(values)*EncMax12)
	encState := NewState()
	encCache := EncodeCache{}
	encCRC := crc32ttar.New()

	pos := 0
	for _, v := range values {
		pos = Encode(dest, pos, v, &encState, &encCache, encCRC)
	}
	pos = encCache.Flush(dest, pos, encCRC)
	dest = dest[:pos]

	decState := NewState()
	decCache := DecodeCache{}
	decCRC := crc32ttar.New()
	laxLimit := UnaryLaxLimit(2)

	rpos := 0
	for i, want := range values {
		got, newPos, ok := Decode(dest, rpos, &decState, &decCache, decCRC, laxLimit)
		if !ok {
			t.Fatalf("Decode[%d]: unexpected invalid unary run", i)
		}
		if got != want {
			t.Errorf("Decode[%d] = %d, want %d", i, got, want)
		}
		rpos = newPos
	}

	if encCRC.Sum32() != decCRC.Sum32() {
		t.Errorf("CRC mismatch: encode 0x%08X, decode 0x%08X", encCRC.Sum32(), decCRC.Sum32())
	}
}

func TestEncodeDecodeRoundTripManyValues(t *testing.T) {
	const n = 2000
	values := make([]uint32, n)
	x := uint32(12345)
	for i := range values {
		x = x*1103515245 + 12345
		values[i] = x % 5000
	}

	dest := make([]byte, n*EncMax12)
	encState := NewState()
	encCache := EncodeCache{}
	encCRC := crc32ttar.New()

	pos := 0
	for _, v := range values {
		pos = Encode(dest, pos, v, &encState, &encCache, encCRC)
	}
	pos = encCache.Flush(dest, pos, encCRC)
	dest = dest[:pos]

	decState := NewState()
	decCache := DecodeCache{}
	decCRC := crc32ttar.New()
	laxLimit := UnaryLaxLimit(2)

	rpos := 0
	for i, want := range values {
		got, newPos, ok := Decode(dest, rpos, &decState, &decCache, decCRC, laxLimit)
		if !ok {
			t.Fatalf("Decode[%d]: unexpected invalid unary run", i)
		}
		if got != want {
			t.Fatalf("Decode[%d] = %d, want %d", i, got, want)
		}
		rpos = newPos
	}

	if encCRC.Sum32() != decCRC.Sum32() {
		t.Errorf("CRC mismatch: encode 0x%08X, decode 0x%08X", encCRC.Sum32(), decCRC.Sum32())
	}
}

func TestUnaryLaxLimit(t *testing.T) {
	if got, want := UnaryLaxLimit(1), uint(8*8194-1); got != want {
		t.Errorf("UnaryLaxLimit(1) = %d, want %d", got, want)
	}
	if got, want := UnaryLaxLimit(2), uint(8*8194-1); got != want {
		t.Errorf("UnaryLaxLimit(2) = %d, want %d", got, want)
	}
	if got, want := UnaryLaxLimit(3), uint(8*2097154-1); got != want {
		t.Errorf("UnaryLaxLimit(3) = %d, want %d", got, want)
	}
}

func TestDecodeInvalidUnaryRun(t *testing.T) {
	src := make([]byte, DecMax12)
	for i := range src {
		src[i] = 0xFF
	}
	var state State = NewState()
	var cache DecodeCache
	crc := crc32ttar.New()

	_, _, ok := Decode(src, 0, &state, &cache, crc, UnaryLaxLimit(2))
	if ok {
		t.Error("Decode over an all-0xFF buffer: expected ok=false, got true")
	}
}
