package service

import (
	"context"
	"time"

	"stove_automation"
	"stove_automation/internal/device"
	"stove_automation/internal/logger"
	"stove_automation/internal/models"
	"stove_automation/internal/repository"
	"stove_automation/internal/tasks"
)

// Scheduler runs one reconciliation cycle per call.
type Scheduler interface {
	Check(ctx context.Context) stove_automation.SchedulerResponse
	// LastResult returns the outcome of the most recent cycle, if any.
	LastResult() (stove_automation.SchedulerResponse, bool)
}

// Monitoring exposes read-only stove and cron state.
type Monitoring interface {
	GetState(ctx context.Context) (models.StoveStateRecord, error)
	CronHealth(ctx context.Context) (CronHealth, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Event, error)
	Summary(ctx context.Context, from, to time.Time) (ActivitySummary, error)
}

// Maintenance tracks burn hours until the next cleaning.
type Maintenance interface {
	CanIgnite(ctx context.Context) (bool, error)
	TrackUsage(ctx context.Context, running bool, now time.Time) (models.MaintenanceRecord, int, error)
	Status(ctx context.Context) (models.MaintenanceRecord, error)
	ConfirmCleaning(ctx context.Context) error
}

// Ticker drives the Scheduler in-process when no external cron exists.
// Stop via context cancellation.
type Ticker interface {
	Run(ctx context.Context, tick time.Duration)
}

// Notifier delivers user-facing notifications. NotifySkipped is not a failure.
type Notifier interface {
	Notify(ctx context.Context, userID string, n models.Notification) (models.NotifyOutcome, error)
}

// Thermostat is the smart-thermostat integration the stove cooperates with.
type Thermostat interface {
	HomeStatus(ctx context.Context) (models.ThermostatStatus, error)
	CalibrateValves(ctx context.Context) error
	SyncStoveState(ctx context.Context, stoveOn bool) error
}

// WeatherSource provides the forecast cached for the dashboard.
type WeatherSource interface {
	Current(ctx context.Context) (models.WeatherSnapshot, error)
}

type Service struct {
	Scheduler
	Monitoring
	EventLog
	Maintenance
	Ticker
}

// Deps are the collaborators of the service layer. Notifier, Thermostat and
// Weather may be nil; their dispatchers are then skipped.
type Deps struct {
	Repos      *repository.Repository
	Gateway    device.Gateway
	Notifier   Notifier
	Thermostat Thermostat
	Weather    WeatherSource
	Runner     *tasks.Runner
	Log        *logger.Logger
	Config     SchedulerConfig
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Runner == nil {
		d.Runner = tasks.NewRunner(d.Log, 0)
	}
	maintenance := NewMaintenanceService(d.Repos.Store)
	reconciler := NewReconciler(ReconcilerDeps{
		Store:       d.Repos.Store,
		Events:      d.Repos.EventRepo,
		Gateway:     d.Gateway,
		Maintenance: maintenance,
		Notifier:    d.Notifier,
		Thermostat:  d.Thermostat,
		Weather:     d.Weather,
		Runner:      d.Runner,
		Log:         d.Log.Named("scheduler"),
	}, d.Config)

	return &Service{
		Scheduler:   reconciler,
		Monitoring:  NewMonitoringService(d.Repos.Store),
		EventLog:    NewEventLogService(d.Repos.EventRepo),
		Maintenance: maintenance,
		Ticker:      NewTickerService(reconciler, d.Log.Named("ticker")),
	}
}
