package pmp

import "testing"

func TestDeriveRangeOff(tt *testing.T) {
	tt.Parallel()

	cfg := NewConfigByte(All, Off, false)
	r := deriveRange(0x12345678, 0, false, cfg)

	if !r.Empty() {
		tt.Errorf("OFF entry should derive an empty range, got %+v", r)
	}
}

func TestDeriveRangeNA4(tt *testing.T) {
	tt.Parallel()

	cfg := NewConfigByte(All, NA4, false)
	addr := uint64(0x80200000) >> 2
	r := deriveRange(addr, 0, false, cfg)

	if r.Start != 0x80200000 || r.End != 0x80200004 {
		tt.Errorf("NA4 range = [%#x, %#x), want [0x80200000, 0x80200004)", r.Start, r.End)
	}
}

func TestDeriveRangeTOR(tt *testing.T) {
	tt.Parallel()

	cfg := NewConfigByte(All, TOR, false)

	lower := uint64(0x80000000) >> 2
	upper := uint64(0x80001000) >> 2

	r := deriveRange(upper, lower, true, cfg)

	if r.Start != 0x80000000 || r.End != 0x80001000 {
		tt.Errorf("TOR range = [%#x, %#x), want [0x80000000, 0x80001000)", r.Start, r.End)
	}
}

func TestDeriveRangeTORFirstEntryUsesZeroLowerBound(tt *testing.T) {
	tt.Parallel()

	cfg := NewConfigByte(All, TOR, false)
	upper := uint64(0x1000) >> 2

	r := deriveRange(upper, 0, false, cfg)

	if r.Start != 0 || r.End != 0x1000 {
		tt.Errorf("first TOR range = [%#x, %#x), want [0, 0x1000)", r.Start, r.End)
	}
}

func TestDeriveRangeTORNonIncreasingIsEmpty(tt *testing.T) {
	tt.Parallel()

	cfg := NewConfigByte(All, TOR, false)

	same := uint64(0x1000) >> 2
	r := deriveRange(same, same, true, cfg)

	if !r.Empty() {
		tt.Errorf("TOR entry with addr <= prev addr should be empty, got %+v", r)
	}
}

func TestDeriveRangeNAPOT(tt *testing.T) {
	tt.Parallel()

	cases := []struct {
		name        string
		addr        uint64
		base, size  uint64
	}{
		// 8-byte region at 0x8000_0000: low bit (k=0) clear, base bits above it set.
		{"8-byte", (uint64(0x80000000) >> 2) &^ 0b0, 0x80000000, 8},
		// 1 KiB region at 0x8000_0000: k=7 (size = 1<<(7+3) = 1024), trailing 7 ones then a 0.
		{"1KiB", (uint64(0x80000000) >> 2) | 0b0111_1111, 0x80000000, 1024},
	}

	for _, c := range cases {
		cfg := NewConfigByte(All, NAPOT, false)
		r := deriveRange(c.addr, 0, false, cfg)

		if r.Start != c.base || r.End != c.base+c.size {
			tt.Errorf("%s: range = [%#x, %#x), want [%#x, %#x)",
				c.name, r.Start, r.End, c.base, c.base+c.size)
		}
	}
}

func TestDeriveRangeNAPOTAllOnes(tt *testing.T) {
	tt.Parallel()

	// An address register that is all ones (within its valid width) encodes k = XLEN-2, the
	// largest representable NAPOT region, anchored at 0. On RV64 its size, 1<<65, does not fit in
	// 64 bits, so the range ends at the top of the address space.
	addr := addressMask(64)
	cfg := NewConfigByte(All, NAPOT, false)

	r := deriveRange(addr, 0, false, cfg)

	if r.Start != 0 {
		tt.Errorf("all-ones NAPOT base = %#x, want 0", r.Start)
	}

	wantEnd := ^uint64(0)
	if r.End != wantEnd {
		tt.Errorf("all-ones NAPOT end = %#x, want %#x", r.End, wantEnd)
	}
}
