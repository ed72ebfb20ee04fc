package service

import (
	"time"

	"stove_automation/internal/repository"
)

// State Store paths.
const (
	pathMode             = "schedules-v2/mode"
	pathActiveScheduleID = "schedules-v2/activeScheduleId"
	pathBoost            = "pidAutomation/boost"
	pathPIDState         = "pidAutomation/state"
	pathIgnitionMarker   = "scheduler/lastIgnitionInterval"
	pathCronLastCall     = "cronHealth/lastCall"
	pathThermostatStatus = "netatmo/currentStatus"
	pathWeatherCurrent   = "weather/current"
	pathStoveState       = "stove/state"
	pathMaintenance      = "maintenance"
)

// Cooldown markers (epoch ms).
const (
	markerCalibration       = "scheduler/lastCalibration"
	markerWeatherRefresh    = "weather/lastRefresh"
	markerThermostatRefresh = "netatmo/lastRefresh"
	markerTokenCleanup      = "scheduler/lastTokenCleanup"
	markerWorkNotification  = "scheduler/lastWorkNotification"
	markerUnexpectedOff     = "scheduler/lastUnexpectedOffNotification"
	markerMaintenanceNotice = "scheduler/lastMaintenanceNotification"
)

const (
	cooldownCalibration       = 12 * time.Hour
	cooldownWeatherRefresh    = 30 * time.Minute
	cooldownThermostatRefresh = 5 * time.Minute
	cooldownTokenCleanup      = 7 * 24 * time.Hour
	cooldownWorkNotification  = 30 * time.Minute
	cooldownUnexpectedOff     = time.Hour
	cooldownMaintenanceNotice = 24 * time.Hour
)

func scheduleSlotsPath(scheduleID, day string) string {
	return repository.Join("schedules-v2", "schedules", scheduleID, "slots", day)
}

func pidConfigPath(userID string) string {
	return repository.Join("users", userID, "pidAutomation")
}

// SchedulerConfig tunes the Reconciler.
type SchedulerConfig struct {
	Location    *time.Location
	AdminUserID string

	// ConfirmationDelay is waited before the post-ignition status re-fetch;
	// ConfirmationRetries extra attempts are made when that re-fetch errors.
	ConfirmationDelay   time.Duration
	ConfirmationRetries int
	DefaultFan          int
	DefaultPower        int
	PIDLogRetention     time.Duration
	PIDDefaultDt        float64 // minutes
	IntegralLimit       float64
	TokenMaxAge         time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Location:            time.UTC,
		ConfirmationDelay:   2 * time.Second,
		ConfirmationRetries: 1,
		DefaultFan:          3,
		DefaultPower:        2,
		PIDLogRetention:     14 * 24 * time.Hour,
		PIDDefaultDt:        5,
		IntegralLimit:       20,
		TokenMaxAge:         60 * 24 * time.Hour,
	}
}

// withDefaults fills zero values from DefaultSchedulerConfig. A negative
// ConfirmationDelay disables the wait.
func (c SchedulerConfig) withDefaults() SchedulerConfig {
	d := DefaultSchedulerConfig()
	if c.Location == nil {
		c.Location = d.Location
	}
	if c.ConfirmationDelay == 0 {
		c.ConfirmationDelay = d.ConfirmationDelay
	}
	if c.ConfirmationRetries < 0 {
		c.ConfirmationRetries = 0
	}
	if c.DefaultFan == 0 {
		c.DefaultFan = d.DefaultFan
	}
	if c.DefaultPower == 0 {
		c.DefaultPower = d.DefaultPower
	}
	if c.PIDLogRetention <= 0 {
		c.PIDLogRetention = d.PIDLogRetention
	}
	if c.PIDDefaultDt <= 0 {
		c.PIDDefaultDt = d.PIDDefaultDt
	}
	if c.IntegralLimit <= 0 {
		c.IntegralLimit = d.IntegralLimit
	}
	if c.TokenMaxAge <= 0 {
		c.TokenMaxAge = d.TokenMaxAge
	}
	return c
}
