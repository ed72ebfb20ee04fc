package models

import "time"

// Event is a single entry of the append-only event log.
type Event struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CRON_EXECUTION | ANALYTICS | PID_TUNING | NOTIFICATION
	Description string    `json:"description"` // human-readable, or the analytics event name
	Metadata    any       `json:"metadata,omitempty"`
}

// Event types.
const (
	EventCronExecution = "CRON_EXECUTION"
	EventAnalytics     = "ANALYTICS"
	EventPIDTuning     = "PID_TUNING"
	EventNotification  = "NOTIFICATION"
)

// Analytics event names stored in Event.Description.
const (
	AnalyticsStoveIgnite   = "stove_ignite"
	AnalyticsStoveShutdown = "stove_shutdown"
	AnalyticsPowerChange   = "power_change"
	AnalyticsFanChange     = "fan_change"
)
