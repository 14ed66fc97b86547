// Package light is the public face of the flashlight core. It builds the
// mode catalog from a profile, wires the supervisor to a board's hardware
// and mirrors state and mode changes onto the bus.
//
// Topics (all retained):
//
//	light/state   types.Event  supervisor state changes
//	light/mode    types.Event  mode index changes
//	config/profile *types.Profile  the active profile, published once
package light

import (
	"context"

	"torchcode-go/bus"
	"torchcode-go/services/config"
	"torchcode-go/services/light/internal/catalog"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/services/light/internal/platform"
	"torchcode-go/services/light/internal/supervisor"
	"torchcode-go/types"
	"torchcode-go/x/logx"
)

// Hardware bundles one board's collaborators.
type Hardware = halcore.Hardware

type Channel = halcore.Channel

const (
	ChannelBattery = halcore.ChannelBattery
	ChannelTimer   = halcore.ChannelTimer
)

var (
	TopicState = bus.T("light", "state")
	TopicMode  = bus.T("light", "mode")
)

// DefaultHardware returns the build's default board: host fakes, or the
// RP2 peripherals on MCU builds.
func DefaultHardware(p *types.Profile) (Hardware, error) {
	return platform.DefaultHardware(p)
}

type Options struct {
	Profile  *types.Profile
	Hardware Hardware
	Log      *logx.Logger
	// Conn, when set, receives state and mode events.
	Conn *bus.Connection
}

type Light struct {
	prof *types.Profile
	sup  *supervisor.Supervisor
	log  *logx.Logger
}

func New(o Options) (*Light, error) {
	cat, err := catalog.Build(o.Profile)
	if err != nil {
		return nil, err
	}
	log := o.Log
	if log == nil {
		log = logx.Nop()
	}
	var ev supervisor.EventEmitter
	if o.Conn != nil {
		ev = busEmitter{conn: o.Conn}
		config.Publish(o.Conn, o.Profile)
	}
	sup, err := supervisor.New(supervisor.Options{
		Profile:  o.Profile,
		Catalog:  cat,
		Hardware: o.Hardware,
		Log:      log.With("light"),
		Events:   ev,
	})
	if err != nil {
		return nil, err
	}
	return &Light{prof: o.Profile, sup: sup, log: log}, nil
}

// Run builds a light and runs it until shutdown or cancellation.
func Run(ctx context.Context, o Options) error {
	l, err := New(o)
	if err != nil {
		return err
	}
	return l.Run(ctx)
}

func (l *Light) Boot()                         { l.sup.Boot() }
func (l *Light) Tick()                         { l.sup.Tick() }
func (l *Light) Run(ctx context.Context) error { return l.sup.Run(ctx) }

func (l *Light) Profile() *types.Profile { return l.prof }
func (l *Light) State() types.State      { return l.sup.State() }
func (l *Light) Index() uint8            { return l.sup.Index() }
func (l *Light) Mode() types.Mode        { return l.sup.Mode() }
func (l *Light) Flags() types.Flags      { return l.sup.Flags() }
func (l *Light) Voltage() uint8          { return l.sup.Voltage() }
func (l *Light) Press() string           { return l.sup.Press().String() }

// SetCalibration stores a battery trim applied from the next boot on.
func (l *Light) SetCalibration(off int8) error { return l.sup.SetCalibration(off) }

type busEmitter struct{ conn *bus.Connection }

func (e busEmitter) Emit(ev types.Event) {
	t := TopicMode
	if ev.Kind == types.EventState {
		t = TopicState
	}
	e.conn.Publish(e.conn.NewMessage(t, ev, true))
}
