package supervisor

import (
	"torchcode-go/services/light/internal/sequencer"
	"torchcode-go/types"
)

// configEdit walks the editable flags. For each one it blinks the flag's
// number, saves the flag toggled and buzzes. Cutting power during the buzz
// keeps the toggled value; otherwise the original value is restored and
// the walk moves on.
func (s *Supervisor) configEdit() {
	s.log.Info("config edit", "fast", s.ret.FastPresses)
	s.setState(types.StateConfigEdit, types.ReasonConfig)

	s.hw.Delay.Delay(s.settle)
	s.ret.FastPresses = 0
	s.hw.Retain.Store(s.ret.Pack())
	s.setIndex(s.bounds.SolidLow, types.ReasonConfig)

	ids := types.SplitEditable
	if s.store.Layout() == types.LayoutCombined {
		ids = types.CombinedEditable
	}
	for i, id := range ids {
		s.blink(i+1, blinkSpeed, s.prof.Signal.Blink)
		s.hw.Delay.Delay(editGap)

		s.saveFlags(s.flags.Toggle(id))
		s.blink(buzzCount, buzzSpeed, s.prof.Signal.Buzz)
		s.saveFlags(s.flags.Toggle(id))

		s.hw.Delay.Delay(s.settle)
	}

	s.bounds = sequencer.Derive(s.cat, s.flags)
	s.setState(types.StateRendering, types.ReasonConfig)
}

func (s *Supervisor) saveFlags(f types.Flags) {
	s.flags = f
	if err := s.store.SaveFlags(f); err != nil {
		s.log.Warn("save config failed", "flags", f.EncodeSplit(), "err", err)
	}
}
