package supervisor

import (
	"time"

	"torchcode-go/types"
)

const (
	blinkSpeed  = 124 * time.Millisecond
	buzzSpeed   = 15 * time.Millisecond
	buzzCount   = 48
	editGap     = 50 * time.Millisecond
	strobeSpeed = 25 * time.Millisecond
	strobeCount = 4
	warnSpeed   = 50 * time.Millisecond
	warnCount   = 2
	beaconFlash = 50 * time.Millisecond
	beaconPause = 2 * time.Second
	sosDot      = 200 * time.Millisecond
	sosDash     = 3 * sosDot
	sosPause    = 2 * time.Second
	battCeiling = 255
	fullBright  = 255
)

var (
	full      = [2]uint8{fullBright, 0}
	secondary = [2]uint8{0, fullBright}
)

// render draws the current mode for one tick.
func (s *Supervisor) render() {
	m := s.Mode()
	switch m.Kind {
	case types.KindSolid:
		s.hw.Output.Render(m.Primary, m.Secondary)
		s.hw.Delay.Delay(s.tick)

	case types.KindTurbo:
		s.turboTicks++
		if s.turboTicks > s.prof.Turbo.TimeoutTicks && !s.turboFired {
			down := s.bounds.TurboStepDown(s.prof.Turbo.StepDown)
			s.log.Info("turbo timeout", "from", s.idx, "to", down, "ticks", s.turboTicks)
			s.setIndex(down, types.ReasonTurbo)
			s.turboFired = true
			m = s.Mode()
		}
		s.hw.Output.Render(m.Primary, m.Secondary)
		s.hw.Delay.Delay(s.tick)

	case types.KindBatteryCheck:
		s.blink(BatteryBlinks(s.voltage, s.prof.Battery.Buckets), blinkSpeed, s.prof.Signal.Blink)
		s.hw.Delay.Delay(s.tick)

	case types.KindStrobe:
		s.blink(strobeCount, strobeSpeed, full)

	case types.KindBikingStrobe:
		s.blink(strobeCount, strobeSpeed, full)
		s.hw.Output.Render(secondary[0], secondary[1])
		s.hw.Delay.Delay(s.tick)

	case types.KindBeacon:
		s.flash(full, beaconFlash)
		s.hw.Delay.Delay(beaconPause)

	case types.KindSOS:
		s.sos()
	}
}

// BatteryBlinks counts the ascending thresholds strictly below v. The table
// ends with a 255 ceiling no reading can exceed.
func BatteryBlinks(v uint8, buckets []uint8) int {
	n := 0
	for _, b := range buckets {
		if v <= b || b == battCeiling {
			break
		}
		n++
	}
	return n
}

// blink: on for speed, off for twice speed, n times.
func (s *Supervisor) blink(n int, speed time.Duration, level [2]uint8) {
	for ; n > 0; n-- {
		s.hw.Output.Render(level[0], level[1])
		s.hw.Delay.Delay(speed)
		s.hw.Output.Render(0, 0)
		s.hw.Delay.Delay(2 * speed)
	}
}

func (s *Supervisor) flash(level [2]uint8, d time.Duration) {
	s.hw.Output.Render(level[0], level[1])
	s.hw.Delay.Delay(d)
	s.hw.Output.Render(0, 0)
}

// sos plays "... --- ..." with one-dot symbol gaps, three-dot letter gaps,
// then a long pause.
func (s *Supervisor) sos() {
	letters := [3][3]time.Duration{
		{sosDot, sosDot, sosDot},
		{sosDash, sosDash, sosDash},
		{sosDot, sosDot, sosDot},
	}
	for li, l := range letters {
		for si, d := range l {
			s.flash(full, d)
			if si < len(l)-1 {
				s.hw.Delay.Delay(sosDot)
			}
		}
		if li < len(letters)-1 {
			s.hw.Delay.Delay(3 * sosDot)
		}
	}
	s.hw.Delay.Delay(sosPause)
}
