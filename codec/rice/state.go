package rice

// State holds the two-stage adaptive Rice coder state for a single channel:
// a running sum and Golomb parameter k for the low-order stage (index 0)
// and the high-order stage (index 1).
//
// ref: libttaR codec/rice.h struct Rice
type State struct {
	Sum [2]uint32
	K   [2]uint
}

// NewState returns the coder's initial per-channel state.
//
// ref: libttaR codecstate init (sum = 0x4000, k = 10)
func NewState() State {
	return State{
		Sum: [2]uint32{0x4000, 0x4000},
		K:   [2]uint{10, 10},
	}
}

// update adapts sum/k towards the coding distribution of value.
//
// ref: libttaR codec/rice.h rice24_update
func update(sum *uint32, k *uint, value uint32) {
	*sum += value - (*sum >> 4)
	test := binexp32p4[*k]
	switch {
	case *sum < test:
		*k--
	default:
		if *sum > binexp32p4[*k+1] {
			*k++
		}
	}
}

// UnaryLaxLimit returns the maximum plausible unary-code length (plus 8) for
// the given PCM sample width, used to bail out of decoding a corrupt run of
// 0xFF bytes instead of looping until the input is exhausted.
//
// ref: libttaR codec/rice.h UNARY_LAX_LIMIT_1_2, UNARY_LAX_LIMIT_3
func UnaryLaxLimit(samplebytes uint) uint {
	if samplebytes == 3 {
		return 8*2097154 - 1
	}
	return 8*8194 - 1
}

// Encode/decode byte-size bounds for a single rice24_encode/rice24_decode
// call, used by callers sizing scratch buffers.
//
// ref: libttaR codec/rice.h RICE_ENC_MAX_1_2, RICE_ENC_MAX_3,
// RICE_DEC_MAX_1_2, RICE_DEC_MAX_3
const (
	EncMax12 = 8200
	EncMax3  = 2097160
	DecMax12 = 8197
	DecMax3  = 2097157
)
