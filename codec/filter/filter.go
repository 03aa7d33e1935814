// Package filter implements TTA1's adaptive 8-tap FIR prediction-error
// filter: an LMS-like filter that refines the fixed-order-1 predictor's
// residual before it is Rice coded.
//
// ref: libttaR codec/filter/filter._C.h
package filter

// State holds one channel's adaptive filter state: the 8 filter
// coefficients (Qm), the 9-slot gradient-sign and history delay lines (the
// 9th slot in each exists purely so the left-shift-by-one below can be
// expressed as a single memmove-style copy), and the sign of the previous
// sample's error.
//
// The zero value (all-zero coefficients and history, error 0) is the
// correct initial state for a fresh channel.
//
// ref: libttaR codec/filter/filter._C.h struct Filter
type State struct {
	qm    [8]int32
	dx    [9]int32
	dl    [9]int32
	error int32
}

// Filterer is the filter-step abstraction: an architecture-specific
// implementation of the same adaptive filter. This codec ships only the
// portable scalar implementation; a SIMD implementation could satisfy the
// same interface without touching callers.
type Filterer interface {
	Encode(value int32, round int32, k uint) int32
	Decode(value int32, round int32, k uint) int32
}

// Scalar is the portable reference implementation of Filterer.
type Scalar struct {
	state State
}

// NewScalar returns a Scalar filter in its initial (all-zero) state.
func NewScalar() *Scalar {
	return &Scalar{}
}

// Encode runs one encode-direction filter step: it adapts the filter
// against the previous step's error, predicts the current step from the
// adapted filter, and returns the residual between value and that
// prediction. round is the per-samplewidth rounding bias
// (codec.Params.FilterRound) and k is the per-samplewidth shift
// (codec.Params.FilterK).
//
// ref: libttaR codec/filter/filter._C.h tta_filter_enc
func (s *Scalar) Encode(value int32, round int32, k uint) int32 {
	f := &s.state
	round = sumUpdateA(&f.qm, &f.dx, &f.dl, f.error, round)
	updateM(&f.dx, &f.dl)
	f.dl[8] = value
	updateB(&f.dl)
	shiftMB(&f.dx, &f.dl)

	retval := value - asr32(round, k)
	f.error = signOf32(retval)
	return retval
}

// Decode runs one decode-direction filter step, the exact inverse of
// Encode: it reconstructs value from a residual using the filter state as
// it stood before encoding produced that residual, then applies the same
// adaptation Encode would have.
//
// ref: libttaR codec/filter/filter._C.h tta_filter_dec
func (s *Scalar) Decode(residual int32, round int32, k uint) int32 {
	f := &s.state
	round = sumUpdateA(&f.qm, &f.dx, &f.dl, f.error, round)

	value := residual + asr32(round, k)
	f.dl[8] = value
	updateM(&f.dx, &f.dl)
	updateB(&f.dl)
	shiftMB(&f.dx, &f.dl)

	f.error = signOf32(residual)
	return value
}

// sumUpdateA adapts the coefficient vector a against the gradient-sign
// history m, weighted by the previous error, and sums the adapted filter
// against the history line b.
//
// ref: libttaR codec/filter/filter._C.h filter_sum_update_a
func sumUpdateA(a *[8]int32, m *[9]int32, b *[9]int32, errSign int32, round int32) int32 {
	for i := 0; i < 8; i++ {
		a[i] += m[i] * errSign
		round += a[i] * b[i]
	}
	return round
}

// updateM refreshes the 3 newest gradient-sign slots from the
// just-finished history differences.
//
// ref: libttaR codec/filter/filter._C.h filter_update_m
func updateM(m *[9]int32, b *[9]int32) {
	m[8] = updatedM(b[7], 2)
	m[7] = updatedM(b[6], 1)
	m[6] = updatedM(b[5], 1)
	m[5] = updatedM(b[4], 0)
}

// updatedM returns sign(b)|1, shifted left by k: a gradient step whose
// sign always follows the history sample, magnitude widening with k.
func updatedM(b int32, k uint) int32 {
	return int32((uint32(asr32(b, 30)) | 1) << k)
}

// updateB differentiates the tail of the history line in place.
//
// ref: libttaR codec/filter/filter._C.h filter_update_b
func updateB(b *[9]int32) {
	b[7] = b[8] - b[7]
	b[6] = b[7] - b[6]
	b[5] = b[6] - b[5]
}

// shiftMB shifts both delay lines left by one slot, discarding the oldest
// entry and making room for the next sample at the final slot.
//
// ref: libttaR codec/filter/filter._C.h filter_shift_mb
func shiftMB(m *[9]int32, b *[9]int32) {
	copy(m[:8], m[1:])
	copy(b[:8], b[1:])
}

// asr32 performs an arithmetic (sign-propagating) right shift, matching
// the reference's own asr32 (Go's >> on a signed type is already
// sign-propagating, so this is a direct translation, not a portability
// shim).
func asr32(x int32, k uint) int32 {
	return x >> k
}

// signOf32 returns the sign of x as -1, 0, or 1.
func signOf32(x int32) int32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
