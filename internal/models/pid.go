package models

// PIDAutomationConfig is persisted at users/{uid}/pidAutomation.
type PIDAutomationConfig struct {
	Enabled        bool    `json:"enabled" mapstructure:"enabled"`
	TargetRoomID   string  `json:"targetRoomId" mapstructure:"targetRoomId"`
	Kp             float64 `json:"kp" mapstructure:"kp"`
	Ki             float64 `json:"ki" mapstructure:"ki"`
	Kd             float64 `json:"kd" mapstructure:"kd"`
	ManualSetpoint float64 `json:"manualSetpoint,omitempty" mapstructure:"manualSetpoint"`
}

// PIDState is persisted at pidAutomation/state.
type PIDState struct {
	Integral    float64 `json:"integral" mapstructure:"integral"`
	PrevError   float64 `json:"prevError" mapstructure:"prevError"`
	Initialized bool    `json:"initialized" mapstructure:"initialized"`
	LastRun     int64   `json:"lastRun" mapstructure:"lastRun"`         // epoch ms
	LastCleanup int64   `json:"lastCleanup" mapstructure:"lastCleanup"` // epoch ms
}

// BoostOverlay is persisted at pidAutomation/boost.
type BoostOverlay struct {
	Active         bool  `json:"active" mapstructure:"active"`
	PowerLevel     int   `json:"powerLevel,omitempty" mapstructure:"powerLevel"`
	ScheduledPower int   `json:"scheduledPower,omitempty" mapstructure:"scheduledPower"`
	AppliedAt      int64 `json:"appliedAt,omitempty" mapstructure:"appliedAt"` // epoch ms
}

// ThermostatStatus is the cached thermostat snapshot at netatmo/currentStatus.
type ThermostatStatus struct {
	Rooms     []RoomStatus `json:"rooms" mapstructure:"rooms"`
	UpdatedAt int64        `json:"updatedAt" mapstructure:"updatedAt"` // epoch ms
}

// RoomStatus is one room of ThermostatStatus. Reachable is false when the
// room has no live sensor reading.
type RoomStatus struct {
	RoomID      string   `json:"roomId" mapstructure:"roomId"`
	Name        string   `json:"name,omitempty" mapstructure:"name"`
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	Setpoint    *float64 `json:"setpoint,omitempty" mapstructure:"setpoint"`
	Reachable   bool     `json:"reachable" mapstructure:"reachable"`
}

// Room returns the room with the given id.
func (s ThermostatStatus) Room(id string) (RoomStatus, bool) {
	for _, r := range s.Rooms {
		if r.RoomID == id {
			return r, true
		}
	}
	return RoomStatus{}, false
}
