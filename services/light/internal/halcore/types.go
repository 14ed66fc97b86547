// Package halcore holds the collaborator interfaces the light core calls.
// Implementations live in internal/platform, split by build tag.
package halcore

import (
	"time"

	"tinygo.org/x/drivers"
)

// Output drives both dimming channels. Levels take effect before the next
// sample call.
type Output interface {
	Render(primary, secondary uint8)
}

type Channel uint8

const (
	ChannelBattery Channel = iota
	ChannelTimer           // press timing capacitor
)

func (c Channel) String() string {
	if c == ChannelTimer {
		return "timer"
	}
	return "battery"
}

// Sampler returns one 8-bit reading of ch. Blocking. ArmTimer recharges the
// timing capacitor for the next power cycle.
type Sampler interface {
	Sample(ch Channel) uint8
	ArmTimer()
}

// Store is the byte-addressable non-volatile store. WriteCell returns once
// the byte is durable.
type Store interface {
	Len() int
	ReadCell(i int) (byte, error)
	WriteCell(i int, b byte) error
}

// Delayer blocks for d. Not cancellable.
type Delayer interface {
	Delay(d time.Duration)
}

// Retainer is memory that survives a brief power gap but not a cold start.
// Its value at cold start is garbage and must be validated.
type Retainer interface {
	Load() uint32
	Store(v uint32)
}

// Power puts the device into its lowest-draw state.
type Power interface {
	PowerDown()
}

// Thermometer is optional. Readings are milli-degrees Celsius.
type Thermometer interface {
	MilliCelsius() (int32, error)
}

// I2CBusFactory injects configured I²C instances by id.
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// Hardware bundles one board's collaborators. Thermo may be nil.
type Hardware struct {
	Output  Output
	Sampler Sampler
	Store   Store
	Delay   Delayer
	Retain  Retainer
	Power   Power
	Thermo  Thermometer
}

// ---- Retained word ----

// Retained is the decoded retained-tier word.
//
//	bits 31..16  tag (retainedTag)
//	bit  8       locked
//	bits 4..0    fast press counter
type Retained struct {
	FastPresses uint8
	Locked      bool
}

const (
	retainedTag  = 0x7A3C
	fastMask     = 0x1f
	lockedBit    = 1 << 8
	reservedMask = 0xFFFF &^ (lockedBit | fastMask)
)

func (r Retained) Pack() uint32 {
	v := uint32(retainedTag)<<16 | uint32(r.FastPresses&fastMask)
	if r.Locked {
		v |= lockedBit
	}
	return v
}

// UnpackRetained validates v. A word without the tag, or with reserved bits
// set, decodes as the zero value with ok=false.
func UnpackRetained(v uint32) (r Retained, ok bool) {
	if v>>16 != retainedTag || v&reservedMask != 0 {
		return Retained{}, false
	}
	return Retained{FastPresses: uint8(v & fastMask), Locked: v&lockedBit != 0}, true
}
