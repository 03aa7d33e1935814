package pipeline

import "github.com/mewkiz/pkg/errutil"

// ErrMalformedSeektableEntry reports a seektable entry that cannot name a
// valid frame: either it is zero (no frame stored) or too small to leave
// room for the frame's trailing 4-byte CRC.
//
// ref: spec.md §4.8 "If the seektable entry is malformed (≤ sizeof(crc))
// or zero-length, the pipeline stops"
var ErrMalformedSeektableEntry = errutil.Newf("pipeline: malformed seektable entry")

// DecodeSeektable validates a TTA1 seektable (one little-endian u32 per
// frame, each the total byte length of that frame's body plus its trailing
// 4-byte CRC) and returns, per entry, the nbytesTTAPerFrame value the codec
// core expects: the entry with the CRC's 4 bytes subtracted off.
//
// Reading the on-disk seektable block itself (and its own trailing CRC) is
// a file-header concern out of this package's scope; DecodeSeektable takes
// the already-parsed entries and only does the validation and subtraction
// spec.md §6 describes as the codec core's expectation of its caller.
//
// ref: libttaR cli/formats/tta.c get_seektable entry validation
func DecodeSeektable(entries []uint32) ([]int, error) {
	out := make([]int, len(entries))
	for i, raw := range entries {
		if raw <= 4 {
			return nil, ErrMalformedSeektableEntry
		}
		out[i] = int(raw) - 4
	}
	return out, nil
}
