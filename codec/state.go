package codec

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/ttar-go/libttar/codec/filter"
	"github.com/ttar-go/libttar/codec/rice"
)

func init() {
	dbg.Debug = false
}

// ChannelState is one channel's complete codec state: the adaptive filter,
// the two-stage Rice coder, and the running previous sample the order-1
// predictor extrapolates from.
//
// The zero value is not usable directly because the Rice state's sum/k must
// start at their documented initial values; use NewChannelState.
//
// ref: libttaR codec/tta.h struct Codecstate_Priv_Enc, Codecstate_Priv_Dec
type ChannelState struct {
	Filter *filter.Scalar
	Rice   rice.State
	Prev   int32
}

// NewChannelState returns a fresh channel's initial encode/decode state.
func NewChannelState() ChannelState {
	return ChannelState{
		Filter: filter.NewScalar(),
		Rice:   rice.NewState(),
	}
}
