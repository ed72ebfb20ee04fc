package service

import "time"

// LogFilter selects event log entries.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "CRON_EXECUTION", "ANALYTICS", "PID_TUNING", "NOTIFICATION"
	Limit int       // newest N; 0 means all
}

// CronHealth reports the scheduler heartbeat.
type CronHealth struct {
	LastCall time.Time `json:"lastCall"`
	Age      string    `json:"age,omitempty"`
	Stale    bool      `json:"stale"`
}

// ActivitySummary aggregates the event log over a time range.
type ActivitySummary struct {
	From         time.Time      `json:"from,omitempty"`
	To           time.Time      `json:"to,omitempty"`
	Total        int            `json:"total"`
	ByType       map[string]int `json:"byType"`
	CronOutcomes map[string]int `json:"cronOutcomes"` // scheduler status -> count
	Ignitions    int            `json:"ignitions"`
	Shutdowns    int            `json:"shutdowns"`
	PowerChanges int            `json:"powerChanges"`
	FanChanges   int            `json:"fanChanges"`
	LastEventAt  time.Time      `json:"lastEventAt,omitempty"`
}
