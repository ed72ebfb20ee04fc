package service

import (
	"context"
	"fmt"
	"time"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

const (
	defaultTargetHours = 50.0
	// maxTrackedGap caps the running time credited per call so a missed
	// cron window is not billed as burn time.
	maxTrackedGap = 10 * time.Minute
)

// maintenanceLevels are the alert thresholds in percent of TargetHours.
var maintenanceLevels = []int{80, 90, 100}

type MaintenanceService struct {
	store repository.StateStore
	now   func() time.Time
}

func NewMaintenanceService(store repository.StateStore) *MaintenanceService {
	return &MaintenanceService{store: store, now: time.Now}
}

var _ Maintenance = (*MaintenanceService)(nil)

func (s *MaintenanceService) load(ctx context.Context) (models.MaintenanceRecord, error) {
	raw, err := s.store.Get(ctx, pathMaintenance)
	if err != nil {
		return models.MaintenanceRecord{}, fmt.Errorf("load maintenance: %w", err)
	}
	var rec models.MaintenanceRecord
	if _, err := repository.Decode(raw, &rec); err != nil {
		return models.MaintenanceRecord{}, err
	}
	if rec.TargetHours <= 0 {
		rec.TargetHours = defaultTargetHours
	}
	return rec, nil
}

// CanIgnite is false while the stove is flagged for cleaning.
func (s *MaintenanceService) CanIgnite(ctx context.Context) (bool, error) {
	rec, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return !rec.NeedsCleaning, nil
}

// TrackUsage credits the time since the previous call when the stove is
// running. It returns the updated record and the alert level newly crossed
// (0 when none).
func (s *MaintenanceService) TrackUsage(ctx context.Context, running bool, now time.Time) (models.MaintenanceRecord, int, error) {
	rec, err := s.load(ctx)
	if err != nil {
		return rec, 0, err
	}

	if running && rec.LastUpdatedAt > 0 {
		gap := now.Sub(time.UnixMilli(rec.LastUpdatedAt))
		if gap > maxTrackedGap {
			gap = maxTrackedGap
		}
		if gap > 0 {
			rec.CurrentHours += gap.Hours()
		}
	}
	rec.LastUpdatedAt = now.UnixMilli()

	crossed := 0
	pct := rec.CurrentHours / rec.TargetHours * 100
	for _, level := range maintenanceLevels {
		if pct >= float64(level) && level > rec.LastNotificationLevel {
			crossed = level
		}
	}
	if crossed > 0 {
		rec.LastNotificationLevel = crossed
	}
	if pct >= 100 {
		rec.NeedsCleaning = true
	}

	if err := s.store.Set(ctx, pathMaintenance, rec); err != nil {
		return rec, 0, fmt.Errorf("save maintenance: %w", err)
	}
	return rec, crossed, nil
}

func (s *MaintenanceService) Status(ctx context.Context) (models.MaintenanceRecord, error) {
	return s.load(ctx)
}

// ConfirmCleaning resets the counter after the stove was cleaned.
func (s *MaintenanceService) ConfirmCleaning(ctx context.Context) error {
	rec, err := s.load(ctx)
	if err != nil {
		return err
	}
	now := s.now().UnixMilli()
	rec.CurrentHours = 0
	rec.NeedsCleaning = false
	rec.LastNotificationLevel = 0
	rec.LastCleanedAt = now
	rec.LastUpdatedAt = now
	if err := s.store.Set(ctx, pathMaintenance, rec); err != nil {
		return fmt.Errorf("save maintenance: %w", err)
	}
	return nil
}
