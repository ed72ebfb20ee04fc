package models

// IgnitionIntervalMarker is persisted at scheduler/lastIgnitionInterval after
// a successful scheduled ignition.
type IgnitionIntervalMarker struct {
	Interval  string `json:"interval" mapstructure:"interval"`
	Timestamp int64  `json:"timestamp" mapstructure:"timestamp"` // epoch ms
}

// StoveStateRecord is persisted at stove/state and mirrors the last known
// appliance state as seen by the automation.
type StoveStateRecord struct {
	Status     string `json:"status" mapstructure:"status"`
	PowerLevel int    `json:"powerLevel,omitempty" mapstructure:"powerLevel"`
	FanLevel   int    `json:"fanLevel,omitempty" mapstructure:"fanLevel"`
	Source     string `json:"source" mapstructure:"source"`
	UpdatedAt  int64  `json:"updatedAt" mapstructure:"updatedAt"` // epoch ms
}

// Sources written into StoveStateRecord.Source.
const (
	SourceScheduler     = "scheduler"
	SourcePIDAutomation = "pid_automation"
	SourceTelemetry     = "telemetry"
)

// MaintenanceRecord is persisted at maintenance.
type MaintenanceRecord struct {
	CurrentHours          float64 `json:"currentHours" mapstructure:"currentHours"`
	TargetHours           float64 `json:"targetHours" mapstructure:"targetHours"`
	NeedsCleaning         bool    `json:"needsCleaning" mapstructure:"needsCleaning"`
	LastUpdatedAt         int64   `json:"lastUpdatedAt" mapstructure:"lastUpdatedAt"` // epoch ms
	LastNotificationLevel int     `json:"lastNotificationLevel" mapstructure:"lastNotificationLevel"`
	LastCleanedAt         int64   `json:"lastCleanedAt,omitempty" mapstructure:"lastCleanedAt"`
}

// PushToken is persisted at users/{uid}/fcmTokens/{tokenId}.
type PushToken struct {
	Token    string `json:"token" mapstructure:"token"`
	LastUsed int64  `json:"lastUsed" mapstructure:"lastUsed"` // epoch ms
}
