// Package ttar is a reentrant TTA1 lossless audio codec: fixed-order-1
// prediction, an adaptive 8-tap filter, and two-stage adaptive Rice coding,
// driven one frame at a time through Encode/Decode so a caller (typically
// the pipeline package) can pump arbitrarily large streams without the
// library ever touching a file or a container format.
//
// ref: libttaR tta_enc.c libttaR_tta_encode, tta_dec.c libttaR_tta_decode
package ttar

import "github.com/mewkiz/pkg/errutil"

// ErrInvalidRange reports that a size/count argument was zero or otherwise
// out of the range the codec accepts.
//
// ref: libttaR tta.h LIBTTAr_RET_INVAL_RANGE
var ErrInvalidRange = errutil.Newf("ttar: argument out of range")

// ErrInvalidTrunc reports that ni32Target was not a multiple of the channel
// count, so a frame could not end on a whole sample-step.
//
// ref: libttaR tta.h LIBTTAr_RET_INVAL_TRUNC
var ErrInvalidTrunc = errutil.Newf("ttar: ni32Target not a multiple of nchan")

// ErrInvalidBounds reports that a buffer was too small for the work
// requested of it (missing safety-margin headroom, or a target exceeding
// what remains of the frame).
//
// ref: libttaR tta.h LIBTTAr_RET_INVAL_BOUNDS
var ErrInvalidBounds = errutil.Newf("ttar: buffer too small for requested work")

// IsInvalid reports whether err is one of the three invalid-argument
// sentinels above. Callers that only care about the ABI-level
// "misuse" category, rather than the specific reason, can test with this
// instead of three separate comparisons.
func IsInvalid(err error) bool {
	return err == ErrInvalidRange || err == ErrInvalidTrunc || err == ErrInvalidBounds
}
