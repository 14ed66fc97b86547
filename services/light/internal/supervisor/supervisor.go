// Package supervisor runs the light: the one-time boot sequence, then one
// Rendering pass per tick until shutdown.
//
// The supervisor is single-threaded. It owns every piece of mutable state
// (mode index, flags, counters, retained word) and calls its collaborators
// synchronously.
package supervisor

import (
	"context"
	"time"

	"torchcode-go/services/light/internal/catalog"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/services/light/internal/persist"
	"torchcode-go/services/light/internal/press"
	"torchcode-go/services/light/internal/sequencer"
	"torchcode-go/types"
	"torchcode-go/x/logx"
	"torchcode-go/x/mathx"
	"torchcode-go/x/timex"
)

// EventEmitter receives state and mode changes. Emit must not block.
type EventEmitter interface {
	Emit(ev types.Event)
}

type nopEmitter struct{}

func (nopEmitter) Emit(types.Event) {}

// configEntry is the fast-press count that opens the config edit sequence.
const configEntry = 0x0f

type Options struct {
	Profile  *types.Profile
	Catalog  *catalog.Catalog
	Hardware halcore.Hardware
	Log      *logx.Logger
	Events   EventEmitter
}

type Supervisor struct {
	prof   *types.Profile
	cat    *catalog.Catalog
	hw     halcore.Hardware
	store  *persist.Engine
	log    *logx.Logger
	events EventEmitter

	tick   time.Duration
	settle time.Duration

	state   types.State
	idx     uint8
	flags   types.Flags
	bounds  sequencer.Bounds
	ret     halcore.Retained
	calib   int
	voltage uint8
	class   press.Class

	badTicks    int
	badThermal  bool
	turboTicks  int
	turboFired  bool
	settleTicks int
	lastIdx     uint8
}

// New wires a supervisor. The catalog must come from the same profile.
func New(o Options) (*Supervisor, error) {
	p := o.Profile
	eng, err := persist.New(o.Hardware.Store, p.Store.Layout, p.Store.Cells, p.Store.Calibration)
	if err != nil {
		return nil, err
	}
	s := &Supervisor{
		prof:   p,
		cat:    o.Catalog,
		hw:     o.Hardware,
		store:  eng,
		log:    o.Log,
		events: o.Events,
		tick:   timex.Ms(p.Timing.TickMs),
		settle: timex.Ms(p.Timing.SettleMs),
		state:  types.StateBooting,
	}
	if s.log == nil {
		s.log = logx.Nop()
	}
	if s.events == nil {
		s.events = nopEmitter{}
	}
	return s, nil
}

func (s *Supervisor) State() types.State         { return s.state }
func (s *Supervisor) Index() uint8               { return s.idx }
func (s *Supervisor) Flags() types.Flags         { return s.flags }
func (s *Supervisor) Bounds() sequencer.Bounds   { return s.bounds }
func (s *Supervisor) Retained() halcore.Retained { return s.ret }
func (s *Supervisor) Voltage() uint8             { return s.voltage }
func (s *Supervisor) Press() press.Class         { return s.class }

// Mode returns the catalog entry for the current index.
func (s *Supervisor) Mode() types.Mode {
	m, _ := s.cat.At(s.idx)
	return m
}

// Boot runs the power-up sequence once. It ends in Rendering or ShutDown.
func (s *Supervisor) Boot() {
	if s.state != types.StateBooting {
		return
	}

	// The first conversion after power-up is settling noise.
	s.hw.Sampler.Sample(halcore.ChannelTimer)
	timer := s.hw.Sampler.Sample(halcore.ChannelTimer)

	rec, found, err := s.store.Restore()
	if err != nil {
		s.log.Warn("restore failed, using defaults", "err", err)
		rec, found = persist.Record{}, false
	}
	s.flags = rec.Flags
	if !found {
		rec.Mode = 0
	}
	if !s.flags.Set {
		s.flags = types.DefaultFlags()
		if err := s.store.SaveFlags(s.flags); err != nil {
			s.log.Warn("save default config failed", "err", err)
		}
		s.log.Info("config reset to defaults", "flags", s.flags.EncodeSplit())
	}
	s.calib = int(s.prof.Battery.Calibration) + int(rec.Calibration)
	s.bounds = sequencer.Derive(s.cat, s.flags)

	ret, ok := halcore.UnpackRetained(s.hw.Retain.Load())
	if !ok {
		s.log.Debug("retained word invalid, cleared")
	}
	s.class = press.Classify(timer, s.prof.Press, s.flags)
	ret.FastPresses = press.NextFast(ret.FastPresses, s.class)

	switch {
	case s.flags.LockIn && ret.Locked && s.class != press.Long:
		s.idx = s.bounds.Normalize(rec.Mode)
		s.log.Info("press ignored, locked", "mode", s.idx)
	default:
		ret.Locked = false
		s.idx = s.bounds.Next(rec.Mode, s.class, s.flags)
	}
	s.ret = ret
	s.hw.Retain.Store(s.ret.Pack())
	s.persistMode()

	s.hw.Sampler.ArmTimer()
	s.hw.Sampler.Sample(halcore.ChannelBattery)
	s.voltage = s.battery()
	s.lastIdx = s.idx

	s.log.Info("boot", "cap", timer, "class", s.class, "mode", s.idx,
		"kind", s.Mode().Kind, "volts", s.voltage, "fast", s.ret.FastPresses)

	if s.voltage < s.prof.Battery.Critical {
		s.log.Warn("battery critical at boot", "volts", s.voltage)
		s.shutDown(types.ReasonCritical)
		return
	}
	s.setState(types.StateRendering, types.ReasonPress)
	s.emitMode(types.ReasonPress)
}

// Run boots if needed and ticks until shutdown or until ctx is cancelled.
// Cancellation is observed between ticks.
func (s *Supervisor) Run(ctx context.Context) error {
	s.Boot()
	for s.state != types.StateShutDown {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Tick()
	}
	return nil
}

// Tick runs one Rendering pass. It is a no-op outside Rendering.
func (s *Supervisor) Tick() {
	if s.state != types.StateRendering {
		return
	}
	s.voltage = s.battery()

	if s.ret.FastPresses > configEntry {
		s.configEdit()
	}
	if s.idx != s.lastIdx {
		s.modeChanged()
	}

	s.render()
	if s.protect(); s.state == types.StateShutDown {
		return
	}
	s.lockIn()

	// A user who sat through a whole tick has stopped fast-pressing.
	if s.ret.FastPresses != 0 {
		s.ret.FastPresses = 0
		s.hw.Retain.Store(s.ret.Pack())
	}
}

// SetCalibration stores a battery calibration trim for the next boot.
func (s *Supervisor) SetCalibration(off int8) error {
	if err := s.store.SaveCalibration(off); err != nil {
		return err
	}
	s.calib = int(s.prof.Battery.Calibration) + int(off)
	return nil
}

func (s *Supervisor) battery() uint8 {
	raw := int(s.hw.Sampler.Sample(halcore.ChannelBattery))
	return uint8(mathx.Clamp(raw+s.calib, 0, 255))
}

// setIndex applies a forced change, persists and emits it.
func (s *Supervisor) setIndex(idx uint8, why types.Reason) {
	s.idx = s.bounds.Normalize(idx)
	s.persistMode()
	s.modeChanged()
	s.emitMode(why)
}

func (s *Supervisor) modeChanged() {
	s.lastIdx = s.idx
	s.turboTicks = 0
	s.turboFired = false
	s.settleTicks = 0
}

func (s *Supervisor) persistMode() {
	if err := s.store.SaveMode(s.idx); err != nil {
		s.log.Warn("save mode failed", "mode", s.idx, "err", err)
	}
}

func (s *Supervisor) setState(st types.State, why types.Reason) {
	s.state = st
	s.events.Emit(types.Event{Kind: types.EventState, Mode: s.idx, State: st, Voltage: s.voltage, Reason: why})
}

func (s *Supervisor) emitMode(why types.Reason) {
	s.events.Emit(types.Event{Kind: types.EventMode, Mode: s.idx, State: s.state, Voltage: s.voltage, Reason: why})
}

func (s *Supervisor) shutDown(why types.Reason) {
	s.blink(warnCount, warnSpeed, s.prof.Signal.Blink)
	s.hw.Output.Render(0, 0)
	s.hw.Power.PowerDown()
	s.log.Info("shutdown", "reason", string(why), "mode", s.idx, "volts", s.voltage)
	s.setState(types.StateShutDown, why)
}
