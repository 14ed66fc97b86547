package types

import "errors"

var errUnknownState = errors.New("types: unknown state")

// State is the supervisor's coarse state.
type State uint8

const (
	StateBooting State = iota
	StateRendering
	StateConfigEdit
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateRendering:
		return "rendering"
	case StateConfigEdit:
		return "config_edit"
	case StateShutDown:
		return "shutdown"
	}
	return "unknown"
}

// MarshalText makes State encode by name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for st := StateBooting; st <= StateShutDown; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return errUnknownState
}

type EventKind uint8

const (
	EventState EventKind = iota // State changed
	EventMode                   // Mode index changed
)

// Reason says why an event fired.
type Reason string

const (
	ReasonPress      Reason = "press"
	ReasonTurbo      Reason = "turbo_timeout"
	ReasonLowBattery Reason = "low_battery"
	ReasonThermal    Reason = "thermal"
	ReasonCritical   Reason = "critical_battery"
	ReasonConfig     Reason = "config_edit"
)

// Event is emitted by the supervisor on state and mode changes.
type Event struct {
	Kind    EventKind `json:"kind"`
	Mode    uint8     `json:"mode"`
	State   State     `json:"state"`
	Voltage uint8     `json:"voltage"`
	Reason  Reason    `json:"reason,omitempty"`
}
