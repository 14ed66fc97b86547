package halcore

import "testing"

func TestRetainedRoundTrip(t *testing.T) {
	for fp := uint8(0); fp < 32; fp++ {
		for _, locked := range []bool{false, true} {
			in := Retained{FastPresses: fp, Locked: locked}
			out, ok := UnpackRetained(in.Pack())
			if !ok || out != in {
				t.Fatalf("round trip %+v -> %+v ok=%v", in, out, ok)
			}
		}
	}
}

func TestRetainedRejectsGarbage(t *testing.T) {
	for _, v := range []uint32{0, 0xFFFFFFFF, 0xDEADBEEF, retainedTag<<16 | 0x40} {
		if r, ok := UnpackRetained(v); ok || r != (Retained{}) {
			t.Errorf("UnpackRetained(0x%08x) = %+v,%v; want zero,false", v, r, ok)
		}
	}
}
