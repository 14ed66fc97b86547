// Package aht20 reads temperature from an AHT20 over I²C. It backs the
// light's optional thermometer on boards that carry one.
//
//	d := aht20.New(bus)
//	mc, err := d.MilliCelsius()   // trigger, wait, collect
//
// I2C.Tx must perform a write followed by a repeated-start read when both
// w and r are provided.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"torchcode-go/errcode"
)

const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

var ErrNotReady = errors.New("aht20: not ready")

// Config is optional; zero fields take defaults.
type Config struct {
	Address uint16
	// ConvWait is slept after a trigger before the first collect. Default 80ms.
	ConvWait time.Duration
	// PollInterval separates collect attempts while busy. Default 15ms.
	PollInterval time.Duration
	// Attempts bounds collect attempts per reading. Default 10.
	Attempts int
	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
}

type Device struct {
	bus  drivers.I2C
	cfg  Config
	buf  [7]byte
	init bool
	last Sample
}

func New(bus drivers.I2C, cfgs ...Config) *Device {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address == 0 {
		c.Address = Address
	}
	if c.ConvWait <= 0 {
		c.ConvWait = 80 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return &Device{bus: bus, cfg: c}
}

// Status reads the status byte.
func (d *Device) Status() (byte, error) {
	data := []byte{0}
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdStatus}, data); err != nil {
		return 0, errcode.Wrap(errcode.SensorIO, "aht20.status", err)
	}
	return data[0], nil
}

// Configure calibrates the device when its status says it is not.
func (d *Device) Configure() error {
	st, err := d.Status()
	if err != nil {
		return err
	}
	if st&statusCalibrated == 0 {
		if err := d.bus.Tx(d.cfg.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
			return errcode.Wrap(errcode.SensorIO, "aht20.configure", err)
		}
		d.cfg.Sleep(10 * time.Millisecond)
	}
	d.init = true
	return nil
}

// Reset issues a soft reset. Allow about 20ms before the next command.
func (d *Device) Reset() error {
	d.init = false
	return d.bus.Tx(d.cfg.Address, []byte{cmdSoftReset}, nil)
}

func (d *Device) trigger() error {
	if !d.init {
		if err := d.Configure(); err != nil {
			return err
		}
	}
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return errcode.Wrap(errcode.SensorIO, "aht20.trigger", err)
	}
	return nil
}

// collect reads one frame. ErrNotReady while the conversion runs.
func (d *Device) collect() (Sample, error) {
	data := d.buf[:]
	if err := d.bus.Tx(d.cfg.Address, nil, data); err != nil {
		return Sample{}, errcode.Wrap(errcode.SensorIO, "aht20.collect", err)
	}
	if data[0]&statusCalibrated == 0 || data[0]&statusBusy != 0 {
		return Sample{}, ErrNotReady
	}
	return Sample{
		RawHumidity: uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4,
		RawTemp:     uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5]),
	}, nil
}

// Read runs one full measurement.
func (d *Device) Read() (Sample, error) {
	if err := d.trigger(); err != nil {
		return Sample{}, err
	}
	d.cfg.Sleep(d.cfg.ConvWait)
	for i := 0; i < d.cfg.Attempts; i++ {
		s, err := d.collect()
		switch {
		case err == nil:
			d.last = s
			return s, nil
		case errors.Is(err, ErrNotReady):
			d.cfg.Sleep(d.cfg.PollInterval)
		default:
			return Sample{}, err
		}
	}
	return Sample{}, &errcode.E{C: errcode.Timeout, Op: "aht20.read"}
}

// MilliCelsius measures and returns the temperature.
func (d *Device) MilliCelsius() (int32, error) {
	s, err := d.Read()
	if err != nil {
		return 0, err
	}
	return s.MilliCelsius(), nil
}

// Last is the most recent good sample.
func (d *Device) Last() Sample { return d.last }

// Sample holds the 20-bit raw readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

const fullScale = 1 << 20

func (s Sample) MilliCelsius() int32 {
	return int32(int64(s.RawTemp)*200_000/fullScale - 50_000)
}

// DeciRelHumidity is tenths of %RH.
func (s Sample) DeciRelHumidity() int32 {
	return int32(int64(s.RawHumidity) * 1000 / fullScale)
}
