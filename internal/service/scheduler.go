package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stove_automation"
	"stove_automation/internal/device"
	"stove_automation/internal/logger"
	"stove_automation/internal/models"
	"stove_automation/internal/repository"
	"stove_automation/internal/schedule"
	"stove_automation/internal/tasks"
)

const defaultScheduleID = "default"

// semi-manual with no return time stays active until changed by hand
const msgNoReturnTime = "ritorno automatico non impostato"

// Mode labels written to the execution audit.
const (
	modeAuto       = "auto"
	modeManual     = "manual"
	modeSemiManual = "semi_manual"
)

type ReconcilerDeps struct {
	Store       repository.StateStore
	Events      repository.EventRepo
	Gateway     device.Gateway
	Maintenance Maintenance
	Notifier    Notifier
	Thermostat  Thermostat
	Weather     WeatherSource
	Runner      *tasks.Runner
	Log         *logger.Logger
}

// Reconciler is the scheduler check: it reconciles the weekly schedule
// against the live stove once per call. Check never fails; every error ends
// in a terminal status.
type Reconciler struct {
	store       repository.StateStore
	events      repository.EventRepo
	gw          device.Gateway
	maintenance Maintenance
	notifier    Notifier
	thermostat  Thermostat
	weather     WeatherSource
	runner      *tasks.Runner
	log         *logger.Logger

	cfg      SchedulerConfig
	resolver *schedule.Resolver
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	last *stove_automation.SchedulerResponse
}

var _ Scheduler = (*Reconciler)(nil)

func NewReconciler(d ReconcilerDeps, cfg SchedulerConfig) *Reconciler {
	cfg = cfg.withDefaults()
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Runner == nil {
		d.Runner = tasks.NewRunner(d.Log, 0)
	}
	return &Reconciler{
		store:       d.Store,
		events:      d.Events,
		gw:          d.Gateway,
		maintenance: d.Maintenance,
		notifier:    d.Notifier,
		thermostat:  d.Thermostat,
		weather:     d.Weather,
		runner:      d.Runner,
		log:         d.Log,
		cfg:         cfg,
		resolver:    schedule.NewResolver(cfg.Location),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// cycle carries the facts gathered during one Check.
type cycle struct {
	now         time.Time
	mode        models.OperatingMode
	modeLabel   string
	semiExpired bool
	active      *models.Interval
	scheduleID  string
	tel         telemetry
	boost       models.BoostOverlay
	resp        stove_automation.SchedulerResponse
}

func (c *cycle) finish(status, message string) {
	c.resp.Status = status
	c.resp.Message = message
}

// Check runs one reconciliation cycle. The cycle always runs to a terminal
// status: cancellation of ctx is ignored, its values are kept.
func (r *Reconciler) Check(ctx context.Context) (resp stove_automation.SchedulerResponse) {
	ctx = context.WithoutCancel(ctx)
	start := r.now()
	c := &cycle{now: start, modeLabel: modeAuto}
	c.resp.Giorno, c.resp.Ora = r.resolver.Clock(start)
	c.resp.Status = stove_automation.StatusNoChange

	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("scheduler_panic", "panic", p)
			c.finish(stove_automation.StatusError, fmt.Sprintf("errore interno: %v", p))
		}
		r.audit(ctx, c, r.now().Sub(start))
		r.remember(c.resp)
		resp = c.resp
	}()

	r.heartbeat(ctx, start)
	r.dispatchHousekeeping(start)
	r.reconcile(ctx, c)
	return c.resp
}

// LastResult returns the outcome of the most recent Check.
func (r *Reconciler) LastResult() (stove_automation.SchedulerResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return stove_automation.SchedulerResponse{}, false
	}
	return *r.last, true
}

func (r *Reconciler) remember(resp stove_automation.SchedulerResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &resp
}

func (r *Reconciler) reconcile(ctx context.Context, c *cycle) {
	mode, err := r.loadMode(ctx)
	if err != nil {
		r.log.Errorw("scheduler_mode_load_failed", "err", err)
		c.finish(stove_automation.StatusError, "modalità non disponibile")
		return
	}
	c.mode = mode

	if !mode.Enabled {
		c.modeLabel = modeManual
		c.finish(stove_automation.StatusManual, "")
		return
	}
	if mode.SemiManual {
		// A missing or unparsable return time keeps semi-manual indefinitely.
		if until, ok := mode.ReturnTime(); !ok || c.now.Before(until) {
			c.modeLabel = modeSemiManual
			c.resp.ReturnToAutoAt = mode.ReturnToAutoAt
			msg := ""
			if !ok {
				msg = msgNoReturnTime
			}
			c.finish(stove_automation.StatusSemiManual, msg)
			return
		}
		c.semiExpired = true
	}

	active, id, err := r.lookupInterval(ctx, c.now)
	if err != nil {
		r.log.Errorw("scheduler_schedule_load_failed", "err", err)
		c.finish(stove_automation.StatusError, "programma non disponibile")
		return
	}
	c.active, c.scheduleID = active, id
	if active != nil {
		iv := *active
		c.resp.ActiveSchedule = &iv
	}

	c.tel = r.fetchTelemetry(ctx)
	r.observe(ctx, c)

	state := c.tel.state()
	switch {
	case c.active != nil && c.tel.statusErr != nil:
		r.log.Errorw("scheduler_status_unavailable", "err", c.tel.statusErr, "interval", c.active.Label())
		c.finish(stove_automation.StatusUnavailable, "stato della stufa non disponibile")
	case c.active != nil && state.IsOn():
		r.adjustLevels(ctx, c)
	case c.active != nil && igniteable(state):
		r.ignite(ctx, c)
	case c.active != nil:
		r.log.Warnw("scheduler_device_not_ready", "state", state.String(), "raw", c.tel.status.Description)
		r.checkUnexpectedOff(ctx, c)
		c.finish(stove_automation.StatusNoChange, "stufa in stato "+state.String())
	case c.tel.statusErr == nil && state.IsOn():
		r.shutdown(ctx, c)
	default:
		if c.tel.statusErr != nil {
			r.log.Warnw("scheduler_status_unavailable_no_interval", "err", c.tel.statusErr)
		}
		c.finish(stove_automation.StatusNoSchedule, "")
	}
}

// igniteable reports whether the stove is idle and may be ignited.
func igniteable(s device.State) bool {
	return s == device.StateOff || s == device.StateStandby
}

func (r *Reconciler) loadMode(ctx context.Context) (models.OperatingMode, error) {
	raw, err := r.store.Get(ctx, pathMode)
	if err != nil {
		return models.OperatingMode{}, err
	}
	var mode models.OperatingMode
	if _, err := repository.Decode(raw, &mode); err != nil {
		return models.OperatingMode{}, err
	}
	return mode, nil
}

// lookupInterval resolves the active schedule id and today's active slot.
func (r *Reconciler) lookupInterval(ctx context.Context, now time.Time) (*models.Interval, string, error) {
	raw, err := r.store.Get(ctx, pathActiveScheduleID)
	if err != nil {
		return nil, "", fmt.Errorf("read active schedule id: %w", err)
	}
	id, _ := raw.(string)
	if id == "" {
		id = defaultScheduleID
	}

	day, _ := r.resolver.Clock(now)
	raw, err = r.store.Get(ctx, scheduleSlotsPath(id, day))
	if err != nil {
		return nil, id, fmt.Errorf("read slots %s/%s: %w", id, day, err)
	}
	var slots []models.Interval
	if _, err := repository.Decode(raw, &slots); err != nil {
		return nil, id, err
	}
	iv, ok := r.resolver.ActiveInterval(slots, now)
	if !ok {
		return nil, id, nil
	}
	return iv, id, nil
}

func (r *Reconciler) heartbeat(ctx context.Context, now time.Time) {
	if err := r.store.Set(ctx, pathCronLastCall, now.UTC().Format(time.RFC3339)); err != nil {
		r.log.Errorw("scheduler_heartbeat_failed", "err", err)
	}
}

// observe records the telemetry, feeds maintenance tracking and announces a
// stove that has started working.
func (r *Reconciler) observe(ctx context.Context, c *cycle) {
	if c.tel.statusErr != nil {
		return
	}
	state := c.tel.status.State()

	var prev models.StoveStateRecord
	if raw, err := r.store.Get(ctx, pathStoveState); err != nil {
		r.log.Warnw("scheduler_stove_state_load_failed", "err", err)
	} else if _, err := repository.Decode(raw, &prev); err != nil {
		r.log.Warnw("scheduler_stove_state_decode_failed", "err", err)
	}
	if state == device.StateRunning && device.ParseStatus(prev.Status) != device.StateRunning {
		r.notifyWorking(c)
	}

	fields := map[string]any{
		"status":    c.tel.status.Description,
		"source":    models.SourceTelemetry,
		"updatedAt": c.now.UnixMilli(),
	}
	if !c.tel.powerDefaulted {
		fields["powerLevel"] = c.tel.power
	}
	if !c.tel.fanDefaulted {
		fields["fanLevel"] = c.tel.fan
	}
	if err := r.store.Update(ctx, pathStoveState, fields); err != nil {
		r.log.Warnw("scheduler_stove_state_write_failed", "err", err)
	}

	r.trackMaintenance(c.now, state == device.StateRunning)
}

func (r *Reconciler) ignite(ctx context.Context, c *cycle) {
	label := c.active.Label()

	allowed := true
	if r.maintenance != nil {
		ok, err := r.maintenance.CanIgnite(ctx)
		if err != nil {
			// unknown maintenance state never ignites
			r.log.Errorw("scheduler_maintenance_check_failed", "err", err, "interval", label)
			r.checkUnexpectedOff(ctx, c)
			c.finish(stove_automation.StatusError, "stato manutenzione non disponibile")
			return
		}
		allowed = ok
	}
	if !allowed {
		r.log.Warnw("scheduler_ignition_blocked", "reason", "maintenance", "interval", label)
		r.notifyMaintenanceBlocked(c)
		r.checkUnexpectedOff(ctx, c)
		c.finish(stove_automation.StatusMaintenance, "pulizia richiesta prima dell'accensione")
		return
	}

	power := c.active.Power
	if err := r.gw.Ignite(ctx, power); err != nil {
		r.log.Errorw("scheduler_ignite_failed", "err", err, "power", power, "interval", label)
		r.checkUnexpectedOff(ctx, c)
		c.finish(stove_automation.StatusError, "accensione non riuscita")
		return
	}

	confirmed, err := r.confirm(ctx)
	if err != nil {
		r.log.Errorw("scheduler_confirmation_failed", "err", err, "interval", label)
		c.finish(stove_automation.StatusConfirmationFailed, "conferma dello stato non riuscita")
		return
	}
	switch confirmed.State() {
	case device.StateRunning:
		r.log.Infow("scheduler_ignite_race", "status", confirmed.Description, "interval", label)
		c.finish(stove_automation.StatusAlreadyOn, "la stufa risultava già accesa")
		return
	case device.StateIgniting:
	default:
		r.log.Warnw("scheduler_ignite_unconfirmed", "status", confirmed.Description, "interval", label)
	}

	marker := models.IgnitionIntervalMarker{Interval: label, Timestamp: c.now.UnixMilli()}
	if err := r.store.Set(ctx, pathIgnitionMarker, marker); err != nil {
		r.log.Errorw("scheduler_ignition_marker_failed", "err", err)
	}
	r.writeStoveState(ctx, models.StoveStateRecord{
		Status:     "START",
		PowerLevel: power,
		FanLevel:   c.active.Fan,
		Source:     models.SourceScheduler,
		UpdatedAt:  c.now.UnixMilli(),
	})

	r.notify("ignite_notification", models.Notification{
		Category: models.CategoryScheduler,
		Title:    "Stufa accesa",
		Body:     fmt.Sprintf("Accensione programmata %s a potenza %d", label, power),
		Data:     map[string]any{"action": "ignite", "interval": label, "power": power},
	})
	r.syncThermostat(true)
	r.analytics(models.AnalyticsStoveIgnite, map[string]any{
		"power":    power,
		"interval": label,
		"source":   models.SourceScheduler,
	})
	r.clearSemiManual(ctx, c)

	c.finish(stove_automation.StatusIgnited, "accesa per l'intervallo "+label)
}

// confirm re-fetches the status after ignition. Only a failing fetch is
// retried; whatever status comes back is final.
func (r *Reconciler) confirm(ctx context.Context) (device.Status, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.ConfirmationRetries; attempt++ {
		if r.cfg.ConfirmationDelay > 0 {
			if err := r.sleep(ctx, r.cfg.ConfirmationDelay); err != nil {
				return device.Status{}, err
			}
		}
		st, err := r.gw.GetStatus(ctx)
		if err == nil {
			return st, nil
		}
		lastErr = err
		r.log.Warnw("scheduler_confirmation_attempt_failed", "attempt", attempt+1, "err", err)
	}
	if lastErr == nil {
		lastErr = errors.New("no confirmation attempt made")
	}
	return device.Status{}, lastErr
}

func (r *Reconciler) shutdown(ctx context.Context, c *cycle) {
	if err := r.gw.Shutdown(ctx); err != nil {
		r.log.Errorw("scheduler_shutdown_failed", "err", err)
		c.finish(stove_automation.StatusError, "spegnimento non riuscito")
		return
	}

	r.writeStoveState(ctx, models.StoveStateRecord{
		Status:    "STANDBY",
		Source:    models.SourceScheduler,
		UpdatedAt: c.now.UnixMilli(),
	})
	r.resetBoost(ctx)

	r.notify("shutdown_notification", models.Notification{
		Category: models.CategoryScheduler,
		Title:    "Stufa spenta",
		Body:     "Spegnimento programmato: nessun intervallo attivo",
		Data:     map[string]any{"action": "shutdown"},
	})
	r.syncThermostat(false)
	r.analytics(models.AnalyticsStoveShutdown, map[string]any{
		"source":      models.SourceScheduler,
		"lastStatus":  c.tel.status.Description,
		"powerBefore": c.tel.power,
	})
	r.clearSemiManual(ctx, c)

	c.finish(stove_automation.StatusShutdown, "nessun intervallo attivo")
}

// adjustLevels aligns power and fan with the active interval. Each setter is
// isolated: a failed power change does not prevent the fan change.
func (r *Reconciler) adjustLevels(ctx context.Context, c *cycle) {
	c.boost = r.loadBoost(ctx)

	var changes []string
	fields := map[string]any{}

	if c.tel.power != c.active.Power && !c.boost.Active {
		from, to := c.tel.power, c.active.Power
		if err := r.gw.SetPowerLevel(ctx, to); err != nil {
			r.log.Errorw("scheduler_set_power_failed", "err", err, "from", from, "to", to)
		} else {
			c.tel.power = to
			fields["powerLevel"] = to
			changes = append(changes, fmt.Sprintf("potenza da %d a %d", from, to))
			r.analytics(models.AnalyticsPowerChange, map[string]any{"from": from, "to": to, "source": models.SourceScheduler})
		}
	}
	if c.tel.fan != c.active.Fan {
		from, to := c.tel.fan, c.active.Fan
		if err := r.gw.SetFanLevel(ctx, to); err != nil {
			r.log.Errorw("scheduler_set_fan_failed", "err", err, "from", from, "to", to)
		} else {
			c.tel.fan = to
			fields["fanLevel"] = to
			changes = append(changes, fmt.Sprintf("ventola da %d a %d", from, to))
			r.analytics(models.AnalyticsFanChange, map[string]any{"from": from, "to": to, "source": models.SourceScheduler})
		}
	}

	if len(fields) > 0 {
		fields["source"] = models.SourceScheduler
		fields["updatedAt"] = c.now.UnixMilli()
		if err := r.store.Update(ctx, pathStoveState, fields); err != nil {
			r.log.Errorw("scheduler_stove_state_write_failed", "err", err)
		}
		r.clearSemiManual(ctx, c)
	}

	if c.tel.state() == device.StateRunning {
		r.pidOverlay(ctx, c)
	}

	c.finish(stove_automation.StatusAlreadyOn, strings.Join(changes, ", "))
}

// checkUnexpectedOff notifies when the stove is off inside the very interval
// the scheduler ignited it for.
func (r *Reconciler) checkUnexpectedOff(ctx context.Context, c *cycle) {
	raw, err := r.store.Get(ctx, pathIgnitionMarker)
	if err != nil {
		r.log.Warnw("scheduler_ignition_marker_load_failed", "err", err)
		return
	}
	var marker models.IgnitionIntervalMarker
	if ok, err := repository.Decode(raw, &marker); err != nil || !ok {
		return
	}
	label := c.active.Label()
	if marker.Interval != label {
		return
	}

	status := c.tel.status.Description
	r.gated("unexpected_off_notification", markerUnexpectedOff, cooldownUnexpectedOff, c.now, func(ctx context.Context) (bool, error) {
		return r.sendNotification(ctx, models.Notification{
			Category: models.CategoryUnexpectedOff,
			Title:    "Stufa spenta inaspettatamente",
			Body:     fmt.Sprintf("La stufa risulta spenta durante l'intervallo %s", label),
			Data:     map[string]any{"interval": label, "status": status},
		})
	})
}

func (r *Reconciler) clearSemiManual(ctx context.Context, c *cycle) {
	if !c.semiExpired {
		return
	}
	err := r.store.Update(ctx, pathMode, map[string]any{"semiManual": false, "returnToAutoAt": nil})
	if err != nil {
		r.log.Errorw("scheduler_semi_manual_clear_failed", "err", err)
		return
	}
	c.semiExpired = false
	r.log.Infow("scheduler_semi_manual_cleared")
}

func (r *Reconciler) writeStoveState(ctx context.Context, rec models.StoveStateRecord) {
	if err := r.store.Set(ctx, pathStoveState, rec); err != nil {
		r.log.Errorw("scheduler_stove_state_write_failed", "err", err)
	}
}

func (r *Reconciler) loadBoost(ctx context.Context) models.BoostOverlay {
	var b models.BoostOverlay
	raw, err := r.store.Get(ctx, pathBoost)
	if err != nil {
		r.log.Warnw("scheduler_boost_load_failed", "err", err)
		return b
	}
	if _, err := repository.Decode(raw, &b); err != nil {
		r.log.Warnw("scheduler_boost_decode_failed", "err", err)
		return models.BoostOverlay{}
	}
	return b
}

func (r *Reconciler) resetBoost(ctx context.Context) {
	if err := r.store.Set(ctx, pathBoost, models.BoostOverlay{Active: false}); err != nil {
		r.log.Errorw("scheduler_boost_reset_failed", "err", err)
	}
}

// audit appends the execution record. Failures are only logged.
func (r *Reconciler) audit(ctx context.Context, c *cycle, took time.Duration) {
	meta := map[string]any{
		"mode":        c.modeLabel,
		"status":      c.resp.Status,
		"giorno":      c.resp.Giorno,
		"ora":         c.resp.Ora,
		"duration_ms": took.Milliseconds(),
	}
	if c.resp.Message != "" {
		meta["message"] = c.resp.Message
	}
	if c.active != nil {
		meta["interval"] = c.active.Label()
		meta["scheduleId"] = c.scheduleID
	}

	r.log.Infow("scheduler_check_done", "status", c.resp.Status, "mode", c.modeLabel, "took", took)

	err := r.events.Append(ctx, models.Event{
		OccurredAt:  c.now,
		Type:        models.EventCronExecution,
		Description: c.resp.Status,
		Metadata:    meta,
	})
	if err != nil {
		r.log.Errorw("scheduler_audit_failed", "err", err)
	}
}
