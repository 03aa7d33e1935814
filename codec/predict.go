// Package codec implements the per-channel TTA1 codec engine: fixed-order-1
// prediction, the adaptive 8-tap filter, two-stage adaptive Rice coding,
// and the channel-decorrelation frame loops that tie them together.
//
// ref: libttaR codec/tta_enc.c, codec/tta_dec.c
package codec

// Predict1 is TTA's fixed-order-1 predictor: it extrapolates the next
// sample from prev, shifted down by k.
//
// ref: libttaR codec/tta.h tta_predict1
func Predict1(prev int32, k uint) int32 {
	x := uint64(int64(prev))
	return int32((x<<k - x) >> k)
}
