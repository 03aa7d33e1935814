package codec

import "github.com/ttar-go/libttar/pcm"

// Params bundles the per-samplewidth tuning constants the predictor, filter,
// and frame loop need; every codecstate of a given sample width shares one
// Params value.
//
// ref: libttaR codec/tta.h TTA_PREDICT_K, TTA_FILTER_ROUND_*, TTA_FILTER_K_*
type Params struct {
	PredictK    uint
	FilterRound int32
	FilterK     uint
}

// ParamsFor returns the tuning constants for the given PCM sample width.
func ParamsFor(samplebytes pcm.SampleBytes) Params {
	p := Params{PredictK: 4, FilterRound: 0x200, FilterK: 10}
	switch samplebytes {
	case pcm.SampleBytes2:
		p.FilterRound = 0x100
		p.FilterK = 9
		p.PredictK = 5
	case pcm.SampleBytes3:
		p.PredictK = 5
	}
	return p
}
