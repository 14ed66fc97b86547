package types

// Profile describes one driver board: its mode tables, analog thresholds,
// timing and store layout. Profiles are decoded from JSON or YAML by
// services/config and never mutated after Normalize.
type Profile struct {
	Name    string            `json:"name"    yaml:"name"`
	Groups  []Group           `json:"groups"  yaml:"groups"`
	Hidden  []ModeSpec        `json:"hidden"  yaml:"hidden"`
	Press   PressThresholds   `json:"press"   yaml:"press"`
	Battery VoltageThresholds `json:"battery" yaml:"battery"`
	Turbo   TurboConfig       `json:"turbo"   yaml:"turbo"`
	Protect ProtectConfig     `json:"protect" yaml:"protect"`
	Timing  TimingConfig      `json:"timing"  yaml:"timing"`
	Signal  SignalLevels      `json:"signal"  yaml:"signal"`
	Store   StoreConfig       `json:"store"   yaml:"store"`
}

// Group is one selectable list of solid modes.
type Group struct {
	Name  string     `json:"name"  yaml:"name"`
	Step  uint8      `json:"step"  yaml:"step"`
	Modes []ModeSpec `json:"modes" yaml:"modes"`
}

// ModeSpec is the serialised form of a Mode. An empty Kind means "solid".
type ModeSpec struct {
	Kind      string `json:"kind,omitempty"      yaml:"kind,omitempty"`
	Primary   uint8  `json:"primary,omitempty"   yaml:"primary,omitempty"`
	Secondary uint8  `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

// PressThresholds are raw capacitor readings. Short must exceed Medium.
type PressThresholds struct {
	Short  uint8 `json:"short"  yaml:"short"`
	Medium uint8 `json:"medium" yaml:"medium"`
}

// VoltageThresholds are raw battery readings. Buckets are the battery check
// thresholds for 0/25/50/75/100 percent, ascending.
type VoltageThresholds struct {
	Buckets     []uint8 `json:"buckets"     yaml:"buckets"`
	Low         uint8   `json:"low"         yaml:"low"`
	Critical    uint8   `json:"critical"    yaml:"critical"`
	Calibration int8    `json:"calibration" yaml:"calibration"`
}

type TurboConfig struct {
	TimeoutTicks int `json:"timeout_ticks" yaml:"timeout_ticks"`
	// StepDown overrides the derived step-down index when set.
	StepDown *uint8 `json:"step_down,omitempty" yaml:"step_down,omitempty"`
}

type ProtectConfig struct {
	LowRun          int   `json:"low_run"           yaml:"low_run"`
	ThermalMilliC   int32 `json:"thermal_milli_c"   yaml:"thermal_milli_c"` // 0 disables
	LockSettleTicks int   `json:"lock_settle_ticks" yaml:"lock_settle_ticks"`
}

type TimingConfig struct {
	TickMs   uint32 `json:"tick_ms"   yaml:"tick_ms"`
	SettleMs uint32 `json:"settle_ms" yaml:"settle_ms"`
	PwmHz    uint32 `json:"pwm_hz"    yaml:"pwm_hz"`
}

// SignalLevels are the level pairs used for blinks and the config buzz.
type SignalLevels struct {
	Blink [2]uint8 `json:"blink" yaml:"blink"`
	Buzz  [2]uint8 `json:"buzz"  yaml:"buzz"`
}

type Layout string

const (
	LayoutSplit    Layout = "split"
	LayoutCombined Layout = "combined"
)

type StoreConfig struct {
	Layout      Layout `json:"layout"      yaml:"layout"`
	Cells       int    `json:"cells"       yaml:"cells"`
	Calibration bool   `json:"calibration" yaml:"calibration"`
}
