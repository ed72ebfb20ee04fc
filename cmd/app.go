package main

import (
	"context"
	"errors"
	"fmt"

	"stove_automation/internal/config"
	"stove_automation/internal/device"
	"stove_automation/internal/logger"
	"stove_automation/internal/notify"
	"stove_automation/internal/repository"
	"stove_automation/internal/repository/db"
	"stove_automation/internal/service"
	"stove_automation/internal/tasks"
	"stove_automation/internal/thermostat"
	"stove_automation/internal/weather"

	"github.com/jackc/pgx/v5/pgxpool"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	repos    *repository.Repository
	runner   *tasks.Runner
	services *service.Service

	closers []func()
}

// newApp loads configuration and wires storage, integrations and services.
func newApp(ctx context.Context, log *logger.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}
	a := &app{cfg: cfg, log: log}

	if err := a.openRepository(ctx); err != nil {
		return nil, err
	}

	gateway, err := device.NewClient(device.Config{
		BaseURL: cfg.Device.BaseURL,
		APIKey:  cfg.Device.APIKey,
		Timeout: cfg.Device.Timeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.runner = tasks.NewRunner(log.Named("tasks"), 0)
	deps := service.Deps{
		Repos:   a.repos,
		Gateway: gateway,
		Runner:  a.runner,
		Log:     log,
		Config:  a.schedulerConfig(),
	}
	if n := a.openNotifier(); n != nil {
		deps.Notifier = n
	}
	if th := a.openThermostat(ctx); th != nil {
		deps.Thermostat = th
	}
	if cfg.Weather.Enabled() {
		deps.Weather = weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Device.Timeout)
	}

	a.services = service.NewService(deps)
	return a, nil
}

func (a *app) openRepository(ctx context.Context) error {
	switch a.cfg.DB.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.DB.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return err
		}
		a.repos = repository.NewPostgresRepository(pool)
		a.closers = append(a.closers, pool.Close)
	default:
		sqlDB, err := db.InitDB(a.cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("init sqlite: %w", err)
		}
		a.repos = repository.NewRepository(sqlDB)
		a.closers = append(a.closers, func() {
			if cerr := sqlDB.Close(); cerr != nil {
				a.log.Errorw("sqlite_close_failed", "err", cerr)
			}
		})
	}
	return nil
}

// openNotifier returns nil when no broker is configured or it is unreachable;
// notifications are then skipped.
func (a *app) openNotifier() *notify.Notifier {
	if a.cfg.MQTT.Broker == "" {
		return nil
	}
	client := notify.NewClient(a.cfg.MQTT.Broker, a.cfg.MQTT.ClientID, a.cfg.MQTT.TopicRoot)
	if err := client.Connect(); err != nil {
		a.log.Warnw("mqtt_connect_failed", "broker", a.cfg.MQTT.Broker, "err", err)
		return nil
	}
	a.closers = append(a.closers, client.Disconnect)
	return notify.NewNotifier(client, a.repos.Store)
}

func (a *app) openThermostat(ctx context.Context) *thermostat.Client {
	tc := a.cfg.Thermostat
	if !tc.Enabled() {
		return nil
	}
	client, err := thermostat.NewClient(context.WithoutCancel(ctx), thermostat.Config{
		BaseURL:      tc.BaseURL,
		TokenURL:     tc.TokenURL,
		ClientID:     tc.ClientID,
		ClientSecret: tc.ClientSecret,
		RefreshToken: tc.RefreshToken,
		HomeID:       tc.HomeID,
		StoveRoomID:  tc.StoveRoomID,
		SyncSetpoint: tc.SyncSetpoint,
		Timeout:      a.cfg.Device.Timeout,
	})
	if err != nil {
		if !errors.Is(err, thermostat.ErrNotConfigured) {
			a.log.Warnw("thermostat_disabled", "err", err)
		}
		return nil
	}
	return client
}

func (a *app) schedulerConfig() service.SchedulerConfig {
	sc := a.cfg.Scheduler
	return service.SchedulerConfig{
		Location:            a.cfg.Location(),
		AdminUserID:         a.cfg.AdminUserID,
		ConfirmationDelay:   sc.ConfirmationDelay,
		ConfirmationRetries: sc.ConfirmationRetries,
		DefaultFan:          sc.DefaultFan,
		DefaultPower:        sc.DefaultPower,
		PIDLogRetention:     sc.PIDLogRetention,
		PIDDefaultDt:        sc.PIDDefaultDt,
		IntegralLimit:       sc.IntegralLimit,
		TokenMaxAge:         sc.TokenMaxAge,
	}
}

// Close flushes pending side effects, then releases resources in reverse
// order of acquisition.
func (a *app) Close() {
	if a.runner != nil {
		a.runner.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}
