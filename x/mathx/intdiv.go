package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
// b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// Scale8 maps an 8-bit level onto [0, top] with rounding.
func Scale8(level uint8, top uint32) uint32 {
	if level == 0xFF {
		return top
	}
	return RoundDiv(uint32(level)*top, 0xFF)
}
