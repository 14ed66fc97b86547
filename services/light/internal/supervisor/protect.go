package supervisor

import (
	"torchcode-go/types"
)

// protect counts consecutive bad ticks (low battery or over temperature)
// and steps the light down once LowRun of them have been seen. A bad tick
// at the lowest solid mode shuts the light off.
func (s *Supervisor) protect() {
	low := s.voltage < s.prof.Battery.Low
	hot := s.overTemp()
	if !low && !hot {
		s.badTicks = 0
		return
	}
	s.badTicks++
	s.badThermal = hot && !low
	if s.badTicks < s.prof.Protect.LowRun {
		return
	}
	s.badTicks = 0

	why := types.ReasonLowBattery
	if s.badThermal {
		why = types.ReasonThermal
	}
	next, floor := s.bounds.Dimmer(s.idx)
	if floor {
		s.idx = s.bounds.SolidLow
		s.persistMode()
		s.shutDown(why)
		return
	}
	s.log.Warn("stepping down", "reason", string(why), "from", s.idx, "to", next, "volts", s.voltage)
	s.setIndex(next, why)
}

func (s *Supervisor) overTemp() bool {
	limit := s.prof.Protect.ThermalMilliC
	if s.hw.Thermo == nil || limit <= 0 {
		return false
	}
	mc, err := s.hw.Thermo.MilliCelsius()
	if err != nil {
		s.log.Warn("thermometer read failed", "err", err)
		return false
	}
	return mc >= limit
}

// lockIn marks the current mode as locked once it has been held for
// LockSettleTicks.
func (s *Supervisor) lockIn() {
	if !s.flags.LockIn || s.ret.Locked {
		return
	}
	s.settleTicks++
	if s.settleTicks < s.prof.Protect.LockSettleTicks {
		return
	}
	s.ret.Locked = true
	s.hw.Retain.Store(s.ret.Pack())
	s.log.Info("mode locked", "mode", s.idx)
}
