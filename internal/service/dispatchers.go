package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

// dispatchHousekeeping launches the cooldown-gated tasks that run on every
// cycle regardless of mode and schedule.
func (r *Reconciler) dispatchHousekeeping(now time.Time) {
	if r.thermostat != nil {
		r.gated("thermostat_refresh", markerThermostatRefresh, cooldownThermostatRefresh, now, func(ctx context.Context) (bool, error) {
			st, err := r.thermostat.HomeStatus(ctx)
			if err != nil {
				return false, fmt.Errorf("thermostat status: %w", err)
			}
			if err := r.store.Set(ctx, pathThermostatStatus, st); err != nil {
				return false, fmt.Errorf("cache thermostat status: %w", err)
			}
			return true, nil
		})
		r.gated("valve_calibration", markerCalibration, cooldownCalibration, now, func(ctx context.Context) (bool, error) {
			if err := r.thermostat.CalibrateValves(ctx); err != nil {
				return false, fmt.Errorf("calibrate valves: %w", err)
			}
			r.log.Infow("valves_calibrated")
			return true, nil
		})
	}

	if r.weather != nil {
		r.gated("weather_refresh", markerWeatherRefresh, cooldownWeatherRefresh, now, func(ctx context.Context) (bool, error) {
			snap, err := r.weather.Current(ctx)
			if err != nil {
				return false, fmt.Errorf("weather: %w", err)
			}
			if err := r.store.Set(ctx, pathWeatherCurrent, snap); err != nil {
				return false, fmt.Errorf("cache weather: %w", err)
			}
			return true, nil
		})
	}

	r.gated("token_cleanup", markerTokenCleanup, cooldownTokenCleanup, now, func(ctx context.Context) (bool, error) {
		removed, err := r.cleanupTokens(ctx, now)
		if err != nil {
			return false, err
		}
		r.log.Infow("stale_tokens_removed", "count", removed)
		return true, nil
	})
}

// cleanupTokens deletes push tokens at users/{uid}/fcmTokens/{id} unused for
// longer than TokenMaxAge. Tokens without lastUsed are kept.
func (r *Reconciler) cleanupTokens(ctx context.Context, now time.Time) (int, error) {
	all, err := r.store.List(ctx, "users")
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	removed := 0
	for path, v := range all {
		parts := strings.Split(path, "/")
		if len(parts) != 4 || parts[2] != "fcmTokens" {
			continue
		}
		var tok models.PushToken
		if ok, err := repository.Decode(v, &tok); err != nil || !ok || tok.LastUsed == 0 {
			continue
		}
		if now.Sub(time.UnixMilli(tok.LastUsed)) <= r.cfg.TokenMaxAge {
			continue
		}
		if err := r.store.Delete(ctx, path); err != nil {
			r.log.Warnw("stale_token_delete_failed", "path", path, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (r *Reconciler) notifyWorking(c *cycle) {
	power := c.tel.power
	r.gated("work_notification", markerWorkNotification, cooldownWorkNotification, c.now, func(ctx context.Context) (bool, error) {
		return r.sendNotification(ctx, models.Notification{
			Category: models.CategoryStoveStatus,
			Title:    "Stufa in funzione",
			Body:     fmt.Sprintf("La stufa è a regime (potenza %d)", power),
			Data:     map[string]any{"status": "WORK", "power": power},
		})
	})
}

func (r *Reconciler) notifyMaintenanceBlocked(c *cycle) {
	label := c.active.Label()
	r.gated("maintenance_blocked_notification", markerMaintenanceNotice, cooldownMaintenanceNotice, c.now, func(ctx context.Context) (bool, error) {
		return r.sendNotification(ctx, models.Notification{
			Category: models.CategoryMaintenance,
			Title:    "Manutenzione richiesta",
			Body:     fmt.Sprintf("Accensione bloccata per l'intervallo %s: pulire la stufa", label),
			Data:     map[string]any{"interval": label, "blocked": true},
		})
	})
}

// trackMaintenance accumulates burn time and alerts on each new threshold.
func (r *Reconciler) trackMaintenance(now time.Time, running bool) {
	if r.maintenance == nil {
		return
	}
	r.runner.Go("maintenance_tracking", func(ctx context.Context) error {
		rec, crossed, err := r.maintenance.TrackUsage(ctx, running, now)
		if err != nil {
			return err
		}
		if crossed == 0 {
			return nil
		}
		_, err = r.sendNotification(ctx, models.Notification{
			Category: models.CategoryMaintenance,
			Title:    "Manutenzione stufa",
			Body:     fmt.Sprintf("Raggiunto il %d%% delle ore prima della pulizia (%.1f/%.0f h)", crossed, rec.CurrentHours, rec.TargetHours),
			Data:     map[string]any{"level": crossed, "currentHours": rec.CurrentHours, "targetHours": rec.TargetHours},
		})
		return err
	})
}

// notify sends n in the background.
func (r *Reconciler) notify(name string, n models.Notification) {
	r.runner.Go(name, func(ctx context.Context) error {
		_, err := r.sendNotification(ctx, n)
		return err
	})
}

// sendNotification delivers n to the admin user. It reports false when the
// notification was not sent for a benign reason (no recipient, no notifier,
// or the notifier skipped it).
func (r *Reconciler) sendNotification(ctx context.Context, n models.Notification) (bool, error) {
	if r.cfg.AdminUserID == "" || r.notifier == nil {
		r.log.Debugw("notification_disabled", "category", n.Category)
		return false, nil
	}
	outcome, err := r.notifier.Notify(ctx, r.cfg.AdminUserID, n)
	if err != nil {
		return false, fmt.Errorf("notify %s: %w", n.Category, err)
	}
	if outcome == models.NotifySkipped {
		r.log.Infow("notification_skipped", "category", n.Category)
		return false, nil
	}

	err = r.events.Append(ctx, models.Event{
		Type:        models.EventNotification,
		Description: n.Title,
		Metadata:    map[string]any{"category": n.Category, "userId": r.cfg.AdminUserID},
	})
	if err != nil {
		r.log.Warnw("notification_log_failed", "err", err)
	}
	return true, nil
}

func (r *Reconciler) syncThermostat(stoveOn bool) {
	if r.thermostat == nil {
		return
	}
	r.runner.Go("thermostat_sync", func(ctx context.Context) error {
		return r.thermostat.SyncStoveState(ctx, stoveOn)
	})
}

func (r *Reconciler) analytics(name string, meta map[string]any) {
	r.runner.Go("analytics_"+name, func(ctx context.Context) error {
		return r.events.Append(ctx, models.Event{
			Type:        models.EventAnalytics,
			Description: name,
			Metadata:    meta,
		})
	})
}
