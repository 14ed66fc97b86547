// Package sequencer maps (index, press) to the next mode index.
//
// Every exported transition returns an index for which Bounds.Legal holds.
package sequencer

import (
	"torchcode-go/services/light/internal/catalog"
	"torchcode-go/services/light/internal/press"
	"torchcode-go/types"
	"torchcode-go/x/mathx"
)

// Bounds are derived once per boot from the catalog and the flags.
type Bounds struct {
	SolidLow, SolidHigh   uint8
	HiddenLow, HiddenHigh uint8
	HasHidden             bool
	Step                  uint8
	Dir                   int8
	Start                 uint8
}

// Derive applies group selection, moon skip, muggle cap and reversal.
func Derive(c *catalog.Catalog, f types.Flags) Bounds {
	g := c.Group(f.Group2)
	b := Bounds{SolidLow: g.Low, SolidHigh: g.High, Step: g.Step}
	if b.Step == 0 {
		b.Step = 1
	}
	if f.MoonDisabled && b.SolidHigh > b.SolidLow {
		b.SolidLow = mathx.Min(b.SolidLow+b.Step, b.SolidHigh)
	}
	if f.Muggle {
		cut := 2 * int(b.Step)
		if int(b.SolidHigh)-cut >= int(b.SolidLow) {
			b.SolidHigh -= uint8(cut)
		} else {
			b.SolidHigh = b.SolidLow
		}
	}
	b.HiddenLow, b.HiddenHigh, b.HasHidden = c.Hidden()
	if f.Reversed {
		b.Dir, b.Start = -1, b.SolidHigh
	} else {
		b.Dir, b.Start = 1, b.SolidLow
	}
	return b
}

func (b Bounds) inSolid(i uint8) bool { return i >= b.SolidLow && i <= b.SolidHigh }

func (b Bounds) inHidden(i uint8) bool {
	return b.HasHidden && i >= b.HiddenLow && i <= b.HiddenHigh
}

// Solid reports whether i is in the active solid range.
func (b Bounds) Solid(i uint8) bool { return b.inSolid(i) }

// Hidden reports whether i is in the hidden range.
func (b Bounds) Hidden(i uint8) bool { return b.inHidden(i) }

// Legal reports whether i may be rendered under these bounds.
func (b Bounds) Legal(i uint8) bool { return b.inSolid(i) || b.inHidden(i) }

// Normalize returns i when legal, else Start.
func (b Bounds) Normalize(i uint8) uint8 {
	if b.Legal(i) {
		return i
	}
	return b.Start
}

// step moves from i by n*Step; ok is false when the result leaves the solid
// range.
func (b Bounds) step(i uint8, n int) (uint8, bool) {
	j := int(i) + n*int(b.Step)
	if j < int(b.SolidLow) || j > int(b.SolidHigh) {
		return b.Start, false
	}
	return uint8(j), true
}

// Advance is the short-press transition. Leaving the solid range, or
// starting outside it, wraps to Start. A short press never reaches a hidden
// mode.
func (b Bounds) Advance(i uint8) uint8 {
	if !b.inSolid(i) {
		return b.Start
	}
	j, _ := b.step(i, int(b.Dir))
	return j
}

// RetreatOrCross is the medium-press transition: step back through the solid
// modes, cross into the hidden range from the first mode in press order,
// walk the hidden range forward and wrap to Start at its end.
func (b Bounds) RetreatOrCross(i uint8) uint8 {
	switch {
	case b.inHidden(i) && i == b.HiddenHigh:
		return b.Start
	case b.inHidden(i):
		return i + 1
	case b.inSolid(i):
		if j, ok := b.step(i, -int(b.Dir)); ok {
			return j
		}
		if b.HasHidden {
			return b.HiddenLow
		}
		return b.Start
	default:
		return b.Start
	}
}

// ResetOrHold is the long-press transition.
func (b Bounds) ResetOrHold(i uint8, memory bool) uint8 {
	if !memory {
		return b.Start
	}
	return b.Normalize(i)
}

// Next dispatches on the press class.
func (b Bounds) Next(i uint8, c press.Class, f types.Flags) uint8 {
	switch c {
	case press.Short:
		return b.Advance(i)
	case press.Medium:
		return b.RetreatOrCross(i)
	default:
		return b.ResetOrHold(i, f.Memory)
	}
}

// TurboStepDown is the index turbo drops to after its timeout: override when
// it is legal, else two indexes below SolidHigh, never below SolidLow.
func (b Bounds) TurboStepDown(override *uint8) uint8 {
	if override != nil && b.Legal(*override) {
		return *override
	}
	if int(b.SolidHigh)-2 < int(b.SolidLow) {
		return b.SolidLow
	}
	return b.SolidHigh - 2
}

// Dimmer is the protection step-down. Hidden modes drop to SolidLow, solid
// modes lose one index. floor is true when i is already at SolidLow.
func (b Bounds) Dimmer(i uint8) (next uint8, floor bool) {
	switch {
	case b.inHidden(i), !b.inSolid(i):
		return b.SolidLow, false
	case i == b.SolidLow:
		return b.SolidLow, true
	default:
		return i - 1, false
	}
}
