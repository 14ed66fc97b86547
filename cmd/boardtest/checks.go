package main

import (
	"time"

	"torchcode-go/services/light"
	"torchcode-go/types"
	"torchcode-go/x/logx"
	"torchcode-go/x/mathx"
	"torchcode-go/x/ramp"
)

const (
	pwmStep      = 300 * time.Millisecond
	fadeTime     = time.Second
	fadeSteps    = 16
	adcSamples   = 4
	scratchValue = 0xA5
	tempMinMC    = -20_000
	tempMaxMC    = 85_000
	fullLevel    = 255
)

var pwmLevels = []uint8{0, 8, 64, 128, 255}

type result struct {
	name   string
	ok     bool
	skip   bool
	detail string
	value  int64
}

// runChecks exercises every collaborator once. Output is left dark.
func runChecks(hw light.Hardware, p *types.Profile, log *logx.Logger) []result {
	res := []result{
		checkPWM(hw, log),
		checkBattery(hw, p),
		checkTimer(hw, p),
		checkStore(hw),
		checkThermo(hw),
	}
	for _, r := range res {
		switch {
		case r.skip:
			log.Info("check", "name", r.name, "result", "skip", "detail", r.detail)
		case r.ok:
			log.Info("check", "name", r.name, "result", "pass", "value", r.value, "detail", r.detail)
		default:
			log.Warn("check", "name", r.name, "result", "FAIL", "value", r.value, "detail", r.detail)
		}
	}
	return res
}

// checkPWM steps each channel through pwmLevels, then fades the main channel
// up and back down, for a visual check.
func checkPWM(hw light.Hardware, log *logx.Logger) result {
	for ch := 0; ch < 2; ch++ {
		for _, lvl := range pwmLevels {
			if ch == 0 {
				hw.Output.Render(lvl, 0)
			} else {
				hw.Output.Render(0, lvl)
			}
			log.Debug("pwm", "channel", ch, "level", lvl)
			hw.Delay.Delay(pwmStep)
		}
	}
	wait := func(d time.Duration) bool { hw.Delay.Delay(d); return true }
	set := func(l uint8) { hw.Output.Render(l, 0) }
	ramp.Linear(0, fullLevel, fadeTime, fadeSteps, wait, set)
	ramp.Linear(fullLevel, 0, fadeTime, fadeSteps, wait, set)
	hw.Output.Render(0, 0)
	return result{name: "pwm", ok: true, detail: "visual"}
}

func checkBattery(hw light.Hardware, p *types.Profile) result {
	hw.Sampler.Sample(light.ChannelBattery)
	sum := 0
	for i := 0; i < adcSamples; i++ {
		sum += int(hw.Sampler.Sample(light.ChannelBattery))
	}
	avg := sum / adcSamples
	r := result{name: "battery", value: int64(avg), ok: avg >= int(p.Battery.Critical)}
	if !r.ok {
		r.detail = "below critical"
	}
	return r
}

// checkTimer recharges the capacitor and expects a short-press reading.
func checkTimer(hw light.Hardware, p *types.Profile) result {
	hw.Sampler.ArmTimer()
	hw.Delay.Delay(10 * time.Millisecond)
	v := hw.Sampler.Sample(light.ChannelTimer)
	r := result{name: "timer", value: int64(v), ok: v > p.Press.Short}
	if !r.ok {
		r.detail = "capacitor did not charge"
	}
	return r
}

// checkStore writes a scratch byte to the last cell and restores it.
func checkStore(hw light.Hardware) result {
	r := result{name: "store"}
	i := hw.Store.Len() - 1
	if i < 0 {
		r.detail = "empty store"
		return r
	}
	orig, err := hw.Store.ReadCell(i)
	if err != nil {
		r.detail = err.Error()
		return r
	}
	if err := hw.Store.WriteCell(i, scratchValue); err != nil {
		r.detail = err.Error()
		return r
	}
	got, rerr := hw.Store.ReadCell(i)
	werr := hw.Store.WriteCell(i, orig)
	switch {
	case rerr != nil:
		r.detail = rerr.Error()
	case got != scratchValue:
		r.value = int64(got)
		r.detail = "read back mismatch"
	case werr != nil:
		r.detail = "restore: " + werr.Error()
	default:
		r.ok = true
		r.value = int64(i)
	}
	return r
}

func checkThermo(hw light.Hardware) result {
	r := result{name: "thermo"}
	if hw.Thermo == nil {
		r.skip, r.detail = true, "none fitted"
		return r
	}
	mc, err := hw.Thermo.MilliCelsius()
	if err != nil {
		r.detail = err.Error()
		return r
	}
	r.value = int64(mc)
	r.ok = mathx.Between(mc, tempMinMC, tempMaxMC)
	if !r.ok {
		r.detail = "out of range"
	}
	return r
}

func passed(res []result) bool {
	for _, r := range res {
		if !r.ok && !r.skip {
			return false
		}
	}
	return true
}
