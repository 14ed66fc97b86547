package mathx

import "testing"

func TestClamp(t *testing.T) {
	if Clamp(-5, 0, 10) != 0 {
		t.Fatal("clamp low failed")
	}
	if Clamp(15, 0, 10) != 10 {
		t.Fatal("clamp high failed")
	}
	if Clamp(7, 10, 0) != 7 {
		t.Fatal("clamp with swapped bounds failed")
	}
	if !Between(uint8(3), 3, 5) || Between(uint8(6), 3, 5) {
		t.Fatal("Between failed")
	}
}

func TestScale8(t *testing.T) {
	cases := []struct {
		in   uint8
		top  uint32
		want uint32
	}{
		{0, 1000, 0},
		{255, 1000, 1000},
		{128, 1000, 502},
		{20, 255, 20},
		{1, 0, 0},
	}
	for _, tc := range cases {
		if got := Scale8(tc.in, tc.top); got != tc.want {
			t.Errorf("Scale8(%d, %d) = %d, want %d", tc.in, tc.top, got, tc.want)
		}
	}
}
