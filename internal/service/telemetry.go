package service

import (
	"context"
	"fmt"
	"sync"

	"stove_automation/internal/device"
)

// telemetry is one snapshot of the stove. Fan and power fall back to the
// configured defaults when their reads fail; a failed status read is kept as
// statusErr.
type telemetry struct {
	status    device.Status
	statusErr error

	fan, power                   int
	fanDefaulted, powerDefaulted bool
}

func (t telemetry) state() device.State {
	if t.statusErr != nil {
		return device.StateUnknown
	}
	return t.status.State()
}

// fetchTelemetry issues the three reads concurrently and joins them.
func (r *Reconciler) fetchTelemetry(ctx context.Context) telemetry {
	var (
		t        telemetry
		wg       sync.WaitGroup
		fanErr   error
		powerErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		t.statusErr = guard(func() (err error) {
			t.status, err = r.gw.GetStatus(ctx)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		fanErr = guard(func() (err error) {
			t.fan, err = r.gw.GetFanLevel(ctx)
			if err == nil {
				err = device.ValidateFan(t.fan)
			}
			return err
		})
	}()
	go func() {
		defer wg.Done()
		powerErr = guard(func() (err error) {
			t.power, err = r.gw.GetPowerLevel(ctx)
			if err == nil {
				err = device.ValidatePower(t.power)
			}
			return err
		})
	}()
	wg.Wait()

	if fanErr != nil {
		r.log.Warnw("scheduler_fan_level_defaulted", "err", fanErr, "default", r.cfg.DefaultFan)
		t.fan, t.fanDefaulted = r.cfg.DefaultFan, true
	}
	if powerErr != nil {
		r.log.Warnw("scheduler_power_level_defaulted", "err", powerErr, "default", r.cfg.DefaultPower)
		t.power, t.powerDefaulted = r.cfg.DefaultPower, true
	}
	return t
}

// guard turns a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
