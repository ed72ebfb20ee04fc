package models

import (
	"strconv"
	"time"
)

// OperatingMode is persisted at schedules-v2/mode.
type OperatingMode struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	SemiManual bool `json:"semiManual" mapstructure:"semiManual"`
	// RFC3339, or epoch ms written by clients that store numbers
	ReturnToAutoAt string `json:"returnToAutoAt,omitempty" mapstructure:"returnToAutoAt"`
}

// ReturnTime parses ReturnToAutoAt. ok is false when it is absent or malformed.
func (m OperatingMode) ReturnTime() (t time.Time, ok bool) {
	if m.ReturnToAutoAt == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(m.ReturnToAutoAt, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	t, err := time.Parse(time.RFC3339, m.ReturnToAutoAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
