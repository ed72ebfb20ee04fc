package device

import "strings"

// State is the appliance state derived from the vendor status string.
type State uint8

const (
	StateUnknown State = iota
	StateOff
	StateIgniting
	StateRunning
	StateStandby
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateIgniting:
		return "IGNITING"
	case StateRunning:
		return "RUNNING"
	case StateStandby:
		return "STANDBY"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsOn reports whether the appliance is burning or starting to.
func (s State) IsOn() bool {
	return s == StateRunning || s == StateIgniting
}

// ParseStatus maps a raw vendor status description ("WORK 1", "START",
// "Spento", "ALARM 3", ...) onto a State. It is the only place vendor
// strings are inspected.
func ParseStatus(raw string) State {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case s == "":
		return StateUnknown
	case strings.Contains(s, "WORK"), strings.Contains(s, "MODULA"):
		return StateRunning
	case strings.Contains(s, "START"), strings.Contains(s, "ACCENSIONE"),
		strings.Contains(s, "IGNIT"), strings.Contains(s, "LOAD"),
		strings.Contains(s, "PRERISC"):
		return StateIgniting
	case strings.Contains(s, "ALARM"), strings.Contains(s, "ALLARME"),
		strings.Contains(s, "ERROR"), strings.Contains(s, "BLOCK"):
		return StateError
	case strings.Contains(s, "STANDBY"), strings.Contains(s, "ATTESA"):
		return StateStandby
	case strings.Contains(s, "OFF"), strings.Contains(s, "SPENT"),
		strings.Contains(s, "FINAL"), strings.Contains(s, "CLEAN"),
		strings.Contains(s, "PULIZIA"):
		return StateOff
	default:
		return StateUnknown
	}
}

// Status is the result of a status read.
type Status struct {
	Description string `json:"StatusDescription"`
	Result      int    `json:"Result"`
	Error       int    `json:"Error"`
}

// State classifies the status description.
func (s Status) State() State { return ParseStatus(s.Description) }
