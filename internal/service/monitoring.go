package service

import (
	"context"
	"fmt"
	"time"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

// cronStaleAfter marks the heartbeat stale after three missed 5-minute runs.
const cronStaleAfter = 15 * time.Minute

type MonitoringService struct {
	store repository.StateStore
	now   func() time.Time
}

func NewMonitoringService(store repository.StateStore) *MonitoringService {
	return &MonitoringService{store: store, now: time.Now}
}

// GetState returns the latest stove state record.
// If nothing is persisted yet, returns a baseline UNKNOWN snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.StoveStateRecord, error) {
	raw, err := s.store.Get(ctx, pathStoveState)
	if err != nil {
		return models.StoveStateRecord{}, err
	}
	var rec models.StoveStateRecord
	ok, err := repository.Decode(raw, &rec)
	if err != nil {
		return models.StoveStateRecord{}, err
	}
	if !ok {
		return s.baselineState(), nil
	}
	return rec, nil
}

func (s *MonitoringService) baselineState() models.StoveStateRecord {
	return models.StoveStateRecord{Status: "UNKNOWN"}
}

// CronHealth reports when the scheduler last ran.
func (s *MonitoringService) CronHealth(ctx context.Context) (CronHealth, error) {
	last, ok, err := markerTime(ctx, s.store, pathCronLastCall)
	if err != nil {
		return CronHealth{}, err
	}
	if !ok {
		return CronHealth{Stale: true}, nil
	}
	age := s.now().Sub(last)
	return CronHealth{
		LastCall: last.UTC(),
		Age:      fmt.Sprint(age.Truncate(time.Second)),
		Stale:    age > cronStaleAfter,
	}, nil
}
