package types

// Flags are the user configuration bits. The struct is the only form the
// core works with; bit layouts exist only at the storage boundary.
type Flags struct {
	Muggle       bool // cap the solid range, no medium press
	Memory       bool // resume last mode after a long press
	MoonDisabled bool // skip the lowest solid mode
	Reversed     bool // highest-first order
	Group2       bool // second solid group
	MediumPress  bool
	LockIn       bool // ignore presses once settled
	Set          bool // reset sentinel (split layout)
}

// Split layout bit positions.
const (
	bitMuggle       = 1 << 0
	bitMemory       = 1 << 1
	bitMoonDisabled = 1 << 2
	bitReversed     = 1 << 3
	bitGroup2       = 1 << 4
	bitMediumPress  = 1 << 5
	bitLockIn       = 1 << 6
	bitSet          = 1 << 7
)

// Combined layout bit positions (low nibble of the record byte).
const (
	cbGroup2      = 1 << 0
	cbMemory      = 1 << 1
	cbReversed    = 1 << 2
	cbMediumPress = 1 << 3
)

// DefaultFlags is CONFIG_DEFAULT: Set, Memory and MediumPress.
func DefaultFlags() Flags {
	return Flags{Set: true, Memory: true, MediumPress: true}
}

func (f Flags) EncodeSplit() uint8 {
	var b uint8
	if f.Muggle {
		b |= bitMuggle
	}
	if f.Memory {
		b |= bitMemory
	}
	if f.MoonDisabled {
		b |= bitMoonDisabled
	}
	if f.Reversed {
		b |= bitReversed
	}
	if f.Group2 {
		b |= bitGroup2
	}
	if f.MediumPress {
		b |= bitMediumPress
	}
	if f.LockIn {
		b |= bitLockIn
	}
	if f.Set {
		b |= bitSet
	}
	return b
}

func DecodeSplit(b uint8) Flags {
	return Flags{
		Muggle:       b&bitMuggle != 0,
		Memory:       b&bitMemory != 0,
		MoonDisabled: b&bitMoonDisabled != 0,
		Reversed:     b&bitReversed != 0,
		Group2:       b&bitGroup2 != 0,
		MediumPress:  b&bitMediumPress != 0,
		LockIn:       b&bitLockIn != 0,
		Set:          b&bitSet != 0,
	}
}

// EncodeCombined packs the four legacy bits. Fields the legacy layout cannot
// hold are dropped.
func (f Flags) EncodeCombined() uint8 {
	var b uint8
	if f.Group2 {
		b |= cbGroup2
	}
	if f.Memory {
		b |= cbMemory
	}
	if f.Reversed {
		b |= cbReversed
	}
	if f.MediumPress {
		b |= cbMediumPress
	}
	return b
}

// DecodeCombined unpacks the low nibble. Set is reported true: a decodable
// combined record is by definition a configured one.
func DecodeCombined(nibble uint8) Flags {
	return Flags{
		Group2:      nibble&cbGroup2 != 0,
		Memory:      nibble&cbMemory != 0,
		Reversed:    nibble&cbReversed != 0,
		MediumPress: nibble&cbMediumPress != 0,
		Set:         true,
	}
}

// FlagID names one editable flag, used by the config edit sequence.
type FlagID uint8

const (
	FlagMuggle FlagID = iota
	FlagMemory
	FlagMoonDisabled
	FlagReversed
	FlagGroup2
	FlagMediumPress
	FlagLockIn
)

var flagNames = [...]string{
	FlagMuggle:       "muggle",
	FlagMemory:       "memory",
	FlagMoonDisabled: "moon_disabled",
	FlagReversed:     "reversed",
	FlagGroup2:       "group2",
	FlagMediumPress:  "medium_press",
	FlagLockIn:       "lock_in",
}

func (id FlagID) String() string {
	if int(id) < len(flagNames) {
		return flagNames[id]
	}
	return "unknown"
}

// SplitEditable lists flags in split bit order; CombinedEditable in the
// legacy nibble order.
var (
	SplitEditable = []FlagID{
		FlagMuggle, FlagMemory, FlagMoonDisabled, FlagReversed,
		FlagGroup2, FlagMediumPress, FlagLockIn,
	}
	CombinedEditable = []FlagID{
		FlagGroup2, FlagMemory, FlagReversed, FlagMediumPress,
	}
)

// Toggle returns f with the named flag inverted.
func (f Flags) Toggle(id FlagID) Flags {
	switch id {
	case FlagMuggle:
		f.Muggle = !f.Muggle
	case FlagMemory:
		f.Memory = !f.Memory
	case FlagMoonDisabled:
		f.MoonDisabled = !f.MoonDisabled
	case FlagReversed:
		f.Reversed = !f.Reversed
	case FlagGroup2:
		f.Group2 = !f.Group2
	case FlagMediumPress:
		f.MediumPress = !f.MediumPress
	case FlagLockIn:
		f.LockIn = !f.LockIn
	}
	return f
}
