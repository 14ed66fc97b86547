// Package press classifies the timing-capacitor reading taken at boot.
//
// The capacitor is charged while the light is on and decays while power is
// off, so a high reading means the power gap was short.
package press

import "torchcode-go/types"

type Class uint8

const (
	Long Class = iota
	Medium
	Short
)

func (c Class) String() string {
	switch c {
	case Short:
		return "short"
	case Medium:
		return "medium"
	default:
		return "long"
	}
}

// Classify is total over the byte domain. Both comparisons are strict, so a
// reading equal to a threshold falls to the lower class. Medium requires the
// MediumPress flag and is unavailable in Muggle mode.
func Classify(sample uint8, th types.PressThresholds, f types.Flags) Class {
	switch {
	case sample > th.Short:
		return Short
	case sample > th.Medium && f.MediumPress && !f.Muggle:
		return Medium
	default:
		return Long
	}
}

// FastMask bounds the fast-press counter to five bits.
const FastMask = 0x1f

// NextFast updates the fast-press counter for one classified press.
func NextFast(count uint8, c Class) uint8 {
	if c != Short {
		return 0
	}
	return (count + 1) & FastMask
}
