package bits

import "testing"

func TestFoldUnfold(t *testing.T) {
	golden := []struct {
		x    int32
		want uint32
	}{
		{x: 0, want: 0},
		{x: 1, want: 1},
		{x: -1, want: 2},
		{x: 2, want: 3},
		{x: -2, want: 4},
		{x: 3, want: 5},
		{x: -3, want: 6},
	}
	for _, g := range golden {
		got := Fold(g.x)
		if g.want != got {
			t.Errorf("result mismatch of Fold(x=%d); expected %d, got %d", g.x, g.want, got)
			continue
		}
		back := Unfold(got)
		if back != g.x {
			t.Errorf("Unfold(Fold(%d)) = %d, want %d", g.x, back, g.x)
		}
	}
}

func TestUnfoldInvolution(t *testing.T) {
	for x := int32(-1 << 16); x < (1 << 16); x++ {
		if got := Unfold(Fold(x)); got != x {
			t.Fatalf("Unfold(Fold(%d)) = %d, want %d", x, got, x)
		}
	}
}

func TestIntN24(t *testing.T) {
	golden := []struct {
		x    uint64
		want int64
	}{
		{x: 0x000000, want: 0},
		{x: 0x000001, want: 1},
		{x: 0x7FFFFF, want: 8388607},
		{x: 0x800000, want: -8388608},
		{x: 0xFFFFFF, want: -1},
	}
	for _, g := range golden {
		got := IntN(g.x, 24)
		if got != g.want {
			t.Errorf("IntN(0x%06X, 24) = %d, want %d", g.x, got, g.want)
		}
	}
}

func TestTrailingOnes(t *testing.T) {
	golden := []struct {
		b    uint8
		want uint
	}{
		{b: 0x00, want: 0},
		{b: 0x01, want: 1},
		{b: 0x03, want: 2},
		{b: 0xFF, want: 8},
		{b: 0xFE, want: 0},
	}
	for _, g := range golden {
		if got := TrailingOnes(g.b); got != g.want {
			t.Errorf("TrailingOnes(0x%02X) = %d, want %d", g.b, got, g.want)
		}
	}
}
