package models

// Notification categories, also the keys of users/{uid}/notificationPreferences.
const (
	CategoryScheduler     = "scheduler"
	CategoryMaintenance   = "maintenance"
	CategoryStoveStatus   = "stove_status"
	CategoryUnexpectedOff = "unexpected_off"
)

// Notification is a user-facing message.
type Notification struct {
	Category string         `json:"category"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data,omitempty"`
}

// NotifyOutcome distinguishes a delivered notification from one the notifier
// deliberately did not send.
type NotifyOutcome string

const (
	NotifySent    NotifyOutcome = "sent"
	NotifySkipped NotifyOutcome = "skipped"
)
