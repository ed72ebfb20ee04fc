package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"stove_automation/internal/device"
	"stove_automation/internal/models"
	"stove_automation/internal/pid"
	"stove_automation/internal/repository"
)

const (
	minSetpoint = 10.0
	maxSetpoint = 28.0

	// plausible indoor readings; anything else is a sensor fault
	minRoomTemp = -10.0
	maxRoomTemp = 50.0

	minPIDDt = 1.0  // minutes
	maxPIDDt = 30.0 // minutes

	pidCleanupEvery = 24 * time.Hour
)

type pidInputs struct {
	cfg         models.PIDAutomationConfig
	setpoint    float64
	temperature float64
}

// pidOverlay lets the PID controller override the scheduled power while the
// stove is running. Any skip resets the boost overlay.
func (r *Reconciler) pidOverlay(ctx context.Context, c *cycle) {
	in, reason := r.pidInputs(ctx, c)
	if reason != "" {
		r.log.Debugw("pid_skipped", "reason", reason)
		r.resetBoost(ctx)
		return
	}

	scheduled := c.active.Power
	current := c.tel.power

	state := r.loadPIDState(ctx)
	dt := r.pidDt(state, c.now)

	ctrl := pid.New(pid.Gains{Kp: in.cfg.Kp, Ki: in.cfg.Ki, Kd: in.cfg.Kd}, device.MinPower, device.MaxPower, r.cfg.IntegralLimit)
	ctrl.SetState(pid.Memory{Integral: state.Integral, PrevError: state.PrevError, Initialized: state.Initialized})
	res := ctrl.Compute(in.setpoint, in.temperature, dt)

	mem := ctrl.State()
	state.Integral, state.PrevError, state.Initialized = mem.Integral, mem.PrevError, mem.Initialized
	state.LastRun = c.now.UnixMilli()
	if c.now.Sub(time.UnixMilli(state.LastCleanup)) > pidCleanupEvery {
		state.LastCleanup = c.now.UnixMilli()
		r.cleanupPIDLogs(c.now)
	}

	out := res.Output
	applied := current
	if out != current {
		if err := r.gw.SetPowerLevel(ctx, out); err != nil {
			r.log.Errorw("pid_set_power_failed", "err", err, "from", current, "to", out)
		} else {
			applied = out
			c.tel.power = out
			r.onPIDPowerChange(ctx, c, in, res, dt, current)
		}
	}

	if err := r.store.Set(ctx, pathPIDState, state); err != nil {
		r.log.Errorw("pid_state_write_failed", "err", err)
	}

	switch {
	case out == scheduled:
		r.resetBoost(ctx)
	case applied == out:
		appliedAt := c.now.UnixMilli()
		if c.boost.Active && c.boost.PowerLevel == out && c.boost.AppliedAt > 0 {
			appliedAt = c.boost.AppliedAt
		}
		boost := models.BoostOverlay{Active: true, PowerLevel: out, ScheduledPower: scheduled, AppliedAt: appliedAt}
		if err := r.store.Set(ctx, pathBoost, boost); err != nil {
			r.log.Errorw("pid_boost_write_failed", "err", err)
		}
	}
}

func (r *Reconciler) onPIDPowerChange(ctx context.Context, c *cycle, in pidInputs, res pid.Result, dt float64, from int) {
	err := r.store.Update(ctx, pathStoveState, map[string]any{
		"powerLevel": res.Output,
		"source":     models.SourcePIDAutomation,
		"updatedAt":  c.now.UnixMilli(),
	})
	if err != nil {
		r.log.Errorw("pid_stove_state_write_failed", "err", err)
	}

	err = r.events.Append(ctx, models.Event{
		OccurredAt:  c.now,
		Type:        models.EventPIDTuning,
		Description: fmt.Sprintf("room %s setpoint %.1f output %d", in.cfg.TargetRoomID, in.setpoint, res.Output),
		Metadata: map[string]any{
			"roomId":      in.cfg.TargetRoomID,
			"setpoint":    in.setpoint,
			"temperature": in.temperature,
			"output":      res.Output,
			"raw":         res.Raw,
			"error":       res.Error,
			"integral":    res.Integral,
			"derivative":  res.Derivative,
			"dt":          dt,
			"kp":          in.cfg.Kp,
			"ki":          in.cfg.Ki,
			"kd":          in.cfg.Kd,
		},
	})
	if err != nil {
		r.log.Errorw("pid_tuning_log_failed", "err", err)
	}

	r.analytics(models.AnalyticsPowerChange, map[string]any{
		"from":           from,
		"to":             res.Output,
		"scheduledPower": c.active.Power,
		"source":         models.SourcePIDAutomation,
	})
}

// pidInputs gathers config, room reading and setpoint. A non-empty reason
// means the pass must be skipped.
func (r *Reconciler) pidInputs(ctx context.Context, c *cycle) (pidInputs, string) {
	var in pidInputs
	if c.semiExpired {
		return in, "semi_manual"
	}
	if r.cfg.AdminUserID == "" {
		return in, "no_admin_user"
	}

	raw, err := r.store.Get(ctx, pidConfigPath(r.cfg.AdminUserID))
	if err != nil {
		r.log.Warnw("pid_config_load_failed", "err", err)
		return in, "config_unavailable"
	}
	if ok, err := repository.Decode(raw, &in.cfg); err != nil || !ok || !in.cfg.Enabled {
		return in, "disabled"
	}
	if in.cfg.TargetRoomID == "" {
		return in, "no_target_room"
	}

	raw, err = r.store.Get(ctx, pathThermostatStatus)
	if err != nil {
		r.log.Warnw("pid_thermostat_status_load_failed", "err", err)
		return in, "no_thermostat_status"
	}
	var status models.ThermostatStatus
	if ok, err := repository.Decode(raw, &status); err != nil || !ok {
		return in, "no_thermostat_status"
	}
	room, found := status.Room(in.cfg.TargetRoomID)
	if !found || !room.Reachable {
		return in, "room_unreachable"
	}
	if room.Temperature == nil || math.IsNaN(*room.Temperature) ||
		*room.Temperature < minRoomTemp || *room.Temperature > maxRoomTemp {
		return in, "invalid_temperature"
	}
	in.temperature = *room.Temperature

	switch {
	case in.cfg.ManualSetpoint > 0:
		in.setpoint = in.cfg.ManualSetpoint
	case room.Setpoint != nil:
		in.setpoint = *room.Setpoint
	default:
		return in, "no_setpoint"
	}
	if math.IsNaN(in.setpoint) || in.setpoint < minSetpoint || in.setpoint > maxSetpoint {
		return in, "setpoint_out_of_range"
	}
	return in, ""
}

func (r *Reconciler) loadPIDState(ctx context.Context) models.PIDState {
	var st models.PIDState
	raw, err := r.store.Get(ctx, pathPIDState)
	if err != nil {
		r.log.Warnw("pid_state_load_failed", "err", err)
		return st
	}
	if _, err := repository.Decode(raw, &st); err != nil {
		r.log.Warnw("pid_state_decode_failed", "err", err)
		return models.PIDState{}
	}
	return st
}

// pidDt is the minutes elapsed since the previous run, clamped, or the
// default cron interval on the first run.
func (r *Reconciler) pidDt(st models.PIDState, now time.Time) float64 {
	dt := r.cfg.PIDDefaultDt
	if st.LastRun > 0 {
		if elapsed := now.Sub(time.UnixMilli(st.LastRun)).Minutes(); elapsed > 0 {
			dt = elapsed
		}
	}
	return math.Max(minPIDDt, math.Min(maxPIDDt, dt))
}

func (r *Reconciler) cleanupPIDLogs(now time.Time) {
	cutoff := now.Add(-r.cfg.PIDLogRetention)
	r.runner.Go("pid_log_cleanup", func(ctx context.Context) error {
		n, err := r.events.DeleteBefore(ctx, models.EventPIDTuning, cutoff)
		if err != nil {
			return err
		}
		r.log.Infow("pid_logs_cleaned", "deleted", n, "cutoff", cutoff)
		return nil
	})
}
