//go:build rp2040 || rp2350

package platform

import (
	"device/rp"
	"machine"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"

	"torchcode-go/drivers/aht20"
	"torchcode-go/errcode"
	"torchcode-go/services/light/internal/halcore"
	"torchcode-go/types"
	"torchcode-go/x/mathx"
	"torchcode-go/x/timex"
)

// Board wiring (Pico / Pico 2 GP numbering).
const (
	pinPrimary   = machine.GPIO0 // PWM0 A
	pinSecondary = machine.GPIO1 // PWM0 B
	pinBattery   = machine.ADC0  // GP26, divided cell voltage
	pinTimer     = machine.ADC1  // GP27, timing capacitor
	eepromWrite  = 5 * time.Millisecond
)

// DefaultHardware configures the board collaborators for p.
func DefaultHardware(p *types.Profile) (halcore.Hardware, error) {
	out, err := newPWMOutput(p.Timing.PwmHz)
	if err != nil {
		return halcore.Hardware{}, err
	}
	buses := DefaultI2CFactory()
	i2c, _ := buses.ByID("i2c0")
	store := newEEPROM(i2c, StoreCells(p))

	// An AHT20 near the emitter beats the die sensor when one is fitted.
	var thermo halcore.Thermometer = dieThermometer{}
	if t := aht20.New(i2c); t.Configure() == nil {
		thermo = t
	}

	return halcore.Hardware{
		Output:  out,
		Sampler: newADCSampler(),
		Store:   store,
		Delay:   sleeper{},
		Retain:  scratchRetainer{},
		Power:   haltPower{out: out},
		Thermo:  thermo,
	}, nil
}

// DefaultI2CFactory configures i2c0 at 400 kHz on the board-default pins.
func DefaultI2CFactory() halcore.I2CBusFactory {
	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	return &rp2I2CFactory{buses: map[string]drivers.I2C{"i2c0": b0}}
}

type rp2I2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *rp2I2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// -----------------------------------------------------------------------------
// PWM output
// -----------------------------------------------------------------------------

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

type pwmOutput struct {
	ctrl pwmCtrl
	top  uint32
}

func newPWMOutput(hz uint32) (*pwmOutput, error) {
	ctrl := pwmCtrl(machine.PWM0)
	if err := ctrl.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(hz)}); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "platform.pwm", err)
	}
	pinPrimary.Configure(machine.PinConfig{Mode: machine.PinPWM})
	pinSecondary.Configure(machine.PinConfig{Mode: machine.PinPWM})
	o := &pwmOutput{ctrl: ctrl, top: ctrl.Top()}
	o.Render(0, 0)
	return o, nil
}

func (o *pwmOutput) Render(primary, secondary uint8) {
	o.ctrl.Set(0, mathx.Scale8(primary, o.top))
	o.ctrl.Set(1, mathx.Scale8(secondary, o.top))
}

// -----------------------------------------------------------------------------
// ADC sampler
// -----------------------------------------------------------------------------

type adcSampler struct {
	batt, timer machine.ADC
	armed       bool
}

func newADCSampler() *adcSampler {
	machine.InitADC()
	s := &adcSampler{
		batt:  machine.ADC{Pin: pinBattery},
		timer: machine.ADC{Pin: pinTimer},
	}
	s.batt.Configure(machine.ADCConfig{})
	s.timer.Configure(machine.ADCConfig{})
	return s
}

// Sample returns the top 8 bits of the 16-bit scaled reading.
func (s *adcSampler) Sample(ch halcore.Channel) uint8 {
	if ch == halcore.ChannelTimer {
		if s.armed {
			return 255
		}
		return uint8(s.timer.Get() >> 8)
	}
	return uint8(s.batt.Get() >> 8)
}

// ArmTimer drives the capacitor pin high so it charges while the light is
// on. It stays an output until the next power cycle.
func (s *adcSampler) ArmTimer() {
	pinTimer.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinTimer.High()
	s.armed = true
}

// -----------------------------------------------------------------------------
// EEPROM store (AT24C32 on i2c0)
// -----------------------------------------------------------------------------

type eepromStore struct {
	dev at24cx.Device
	n   int
}

func newEEPROM(bus drivers.I2C, n int) *eepromStore {
	dev := at24cx.New(bus)
	dev.Configure(at24cx.Config{})
	return &eepromStore{dev: dev, n: n}
}

func (e *eepromStore) Len() int { return e.n }

func (e *eepromStore) ReadCell(i int) (byte, error) {
	b, err := e.dev.ReadByte(uint16(i))
	if err != nil {
		return 0xFF, err
	}
	return b, nil
}

// WriteCell waits out the internal write cycle so the byte is durable on
// return.
func (e *eepromStore) WriteCell(i int, b byte) error {
	if err := e.dev.WriteByte(uint16(i), b); err != nil {
		return err
	}
	time.Sleep(eepromWrite)
	return nil
}

// -----------------------------------------------------------------------------
// Delay, retained tier, power, temperature
// -----------------------------------------------------------------------------

type sleeper struct{}

func (sleeper) Delay(d time.Duration) { time.Sleep(d) }

// scratchRetainer uses a watchdog scratch register, which survives a brief
// brown-out and a watchdog reboot but not a cold start.
type scratchRetainer struct{}

func (scratchRetainer) Load() uint32   { return rp.WATCHDOG.SCRATCH0.Get() }
func (scratchRetainer) Store(v uint32) { rp.WATCHDOG.SCRATCH0.Set(v) }

type haltPower struct{ out *pwmOutput }

// PowerDown zeroes the outputs and releases the timer pin. The caller parks
// the core afterwards.
func (p haltPower) PowerDown() {
	p.out.Render(0, 0)
	pinTimer.Configure(machine.PinConfig{Mode: machine.PinInput})
}

type dieThermometer struct{}

func (dieThermometer) MilliCelsius() (int32, error) { return machine.ReadTemperature(), nil }
