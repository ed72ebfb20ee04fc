package models

import "fmt"

// Interval is one slot of a day schedule. Start and End are "HH:MM" local
// wall-clock times and never span midnight.
type Interval struct {
	Start string `json:"start" yaml:"start" mapstructure:"start"`
	End   string `json:"end" yaml:"end" mapstructure:"end"`
	Power int    `json:"power" yaml:"power" mapstructure:"power"` // 1-5
	Fan   int    `json:"fan" yaml:"fan" mapstructure:"fan"`       // 1-6
}

// Label is the "HH:MM-HH:MM" form used by IgnitionIntervalMarker.
func (i Interval) Label() string {
	return fmt.Sprintf("%s-%s", i.Start, i.End)
}

// WeeklySchedule maps an Italian day name (see schedule.DayName) to its slots.
type WeeklySchedule map[string][]Interval
