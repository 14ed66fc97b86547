package config

import "torchcode-go/types"

const (
	defaultTurboTicks  = 30
	defaultLowRun      = 8
	defaultLockTicks   = 3
	defaultTickMs      = 1000
	defaultPwmHz       = 20000
	defaultStoreCells  = 32
	defaultBlinkLevel  = 30
	defaultBuzzLevel   = 20
	defaultGroupStride = 1
)

// Normalize fills defaults.
// It is allowed to mutate the profile.
// It MUST be called only after Validate().
func Normalize(p *types.Profile) {
	if p == nil {
		return
	}
	for gi := range p.Groups {
		g := &p.Groups[gi]
		if g.Step == 0 {
			g.Step = defaultGroupStride
		}
		for mi := range g.Modes {
			if g.Modes[mi].Kind == "" {
				g.Modes[mi].Kind = types.KindSolid.String()
			}
		}
	}
	if p.Turbo.TimeoutTicks == 0 {
		p.Turbo.TimeoutTicks = defaultTurboTicks
	}
	if p.Protect.LowRun == 0 {
		p.Protect.LowRun = defaultLowRun
	}
	if p.Protect.LockSettleTicks == 0 {
		p.Protect.LockSettleTicks = defaultLockTicks
	}
	if p.Timing.TickMs == 0 {
		p.Timing.TickMs = defaultTickMs
	}
	if p.Timing.SettleMs == 0 {
		p.Timing.SettleMs = p.Timing.TickMs
	}
	if p.Timing.PwmHz == 0 {
		p.Timing.PwmHz = defaultPwmHz
	}
	if p.Signal.Blink == ([2]uint8{}) {
		p.Signal.Blink = [2]uint8{defaultBlinkLevel, 0}
	}
	if p.Signal.Buzz == ([2]uint8{}) {
		p.Signal.Buzz = [2]uint8{defaultBuzzLevel, 0}
	}
	if p.Store.Layout == "" {
		p.Store.Layout = types.LayoutSplit
	}
	if p.Store.Cells == 0 {
		p.Store.Cells = defaultStoreCells
	}
}
