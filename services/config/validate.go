package config

import (
	"torchcode-go/errcode"
	"torchcode-go/types"
	"torchcode-go/x/conv"
)

// MaxModes is the number of indexes a record nibble can address.
const MaxModes = 16

// Validate checks profile correctness.
// It performs declarative validation only.
// It MUST NOT mutate the profile.
func Validate(p *types.Profile) error {
	if p == nil {
		return invalid("nil profile")
	}

	// ------------------------------------------------------------
	// MODE TABLES
	// ------------------------------------------------------------

	if len(p.Groups) == 0 || len(p.Groups) > 2 {
		return invalid("need one or two mode groups")
	}
	total := len(p.Hidden)
	for gi, g := range p.Groups {
		if len(g.Modes) == 0 {
			return invalid("group " + itoa(gi) + " is empty")
		}
		total += len(g.Modes)
		for _, m := range g.Modes {
			k, err := kindOf(m)
			if err != nil {
				return err
			}
			if !k.Levelled() {
				return invalid("group " + itoa(gi) + ": " + k.String() + " cannot be a solid mode")
			}
		}
		if g.Step != 0 && int(g.Step) >= len(g.Modes) && len(g.Modes) > 1 {
			return invalid("group " + itoa(gi) + ": step larger than group")
		}
	}
	for _, m := range p.Hidden {
		if _, err := kindOf(m); err != nil {
			return err
		}
	}
	if total > MaxModes {
		return &errcode.E{C: errcode.TooManyModes, Op: "config.validate", Msg: itoa(total) + " modes"}
	}

	// ------------------------------------------------------------
	// THRESHOLDS
	// ------------------------------------------------------------

	if p.Press.Short <= p.Press.Medium {
		return invalid("press.short must exceed press.medium")
	}
	if len(p.Battery.Buckets) != 5 {
		return invalid("battery.buckets needs five entries")
	}
	for i := 1; i < len(p.Battery.Buckets); i++ {
		if p.Battery.Buckets[i] < p.Battery.Buckets[i-1] {
			return invalid("battery.buckets must be ascending")
		}
	}
	if p.Battery.Critical > p.Battery.Low {
		return invalid("battery.critical above battery.low")
	}
	if p.Turbo.TimeoutTicks < 0 || p.Protect.LowRun < 0 || p.Protect.LockSettleTicks < 0 {
		return invalid("negative tick count")
	}
	if sd := p.Turbo.StepDown; sd != nil && int(*sd) >= total {
		return invalid("turbo.step_down out of range")
	}

	// ------------------------------------------------------------
	// STORE
	// ------------------------------------------------------------

	switch p.Store.Layout {
	case "", types.LayoutSplit, types.LayoutCombined:
	default:
		return invalid("unknown store.layout " + string(p.Store.Layout))
	}
	if n := p.Store.Cells; n != 0 && (n < 0 || n&(n-1) != 0) {
		return invalid("store.cells must be a power of two")
	}
	if p.Store.Calibration && p.Store.Layout == types.LayoutCombined {
		return invalid("calibration cell needs the split layout")
	}
	return nil
}

func kindOf(m types.ModeSpec) (types.Kind, error) {
	if m.Kind == "" {
		return types.KindSolid, nil
	}
	k, ok := types.ParseKind(m.Kind)
	if !ok {
		return 0, invalid("unknown mode kind " + m.Kind)
	}
	return k, nil
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidProfile, Op: "config.validate", Msg: msg}
}

func itoa(n int) string { return string(conv.AppendInt(nil, int64(n))) }
