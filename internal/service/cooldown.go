package service

import (
	"context"
	"fmt"
	"time"

	"stove_automation/internal/repository"
)

// markerTime reads a cooldown marker stored as epoch ms or an RFC3339
// string. ok is false when the marker is absent.
func markerTime(ctx context.Context, store repository.StateStore, path string) (t time.Time, ok bool, err error) {
	raw, err := store.Get(ctx, path)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read marker %s: %w", path, err)
	}
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false, nil
	case float64:
		return time.UnixMilli(int64(v)), true, nil
	case int64:
		return time.UnixMilli(v), true, nil
	case int:
		return time.UnixMilli(int64(v)), true, nil
	case string:
		parsed, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return time.Time{}, false, nil
		}
		return parsed, true, nil
	default:
		return time.Time{}, false, nil
	}
}

// cooldownElapsed reports whether at least threshold has passed since the
// marker. An absent or unreadable marker counts as elapsed.
func cooldownElapsed(ctx context.Context, store repository.StateStore, path string, threshold time.Duration, now time.Time) (bool, error) {
	last, ok, err := markerTime(ctx, store, path)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return now.Sub(last) >= threshold, nil
}

// gated dispatches fn in the background behind a cooldown marker. fn reports
// whether it actually performed its side effect; only then is the marker
// rewritten.
func (r *Reconciler) gated(name, marker string, threshold time.Duration, now time.Time, fn func(ctx context.Context) (bool, error)) {
	r.runner.Go(name, func(ctx context.Context) error {
		elapsed, err := cooldownElapsed(ctx, r.store, marker, threshold, now)
		if err != nil {
			return err
		}
		if !elapsed {
			r.log.Debugw("cooldown_active", "task", name, "marker", marker)
			return nil
		}
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		if err := r.store.Set(ctx, marker, now.UnixMilli()); err != nil {
			return fmt.Errorf("write marker %s: %w", marker, err)
		}
		return nil
	})
}
