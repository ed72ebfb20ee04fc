package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"stove_automation/internal/models"
)

func TestMaintenanceService_CanIgnite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    any
		getErr  error
		want    bool
		wantErr bool
	}{
		{name: "no record allows ignition", want: true},
		{name: "clean stove", seed: models.MaintenanceRecord{CurrentHours: 10}, want: true},
		{name: "needs cleaning", seed: models.MaintenanceRecord{CurrentHours: 50, NeedsCleaning: true}, want: false},
		{name: "store error", getErr: errors.New("db down"), wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			if tc.seed != nil {
				store.seed(t, pathMaintenance, tc.seed)
			}
			if tc.getErr != nil {
				store.getErr[pathMaintenance] = tc.getErr
			}
			svc := NewMaintenanceService(store)

			got, err := svc.CanIgnite(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err: want %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("CanIgnite: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMaintenanceService_TrackUsage(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 6, 19, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		seed        models.MaintenanceRecord
		running     bool
		wantHours   float64
		wantCrossed int
		wantLevel   int
		wantClean   bool
	}{
		{
			name:      "first call only stamps",
			running:   true,
			wantHours: 0,
		},
		{
			name:      "credits elapsed running time",
			seed:      models.MaintenanceRecord{CurrentHours: 1, TargetHours: 50, LastUpdatedAt: now.Add(-6 * time.Minute).UnixMilli()},
			running:   true,
			wantHours: 1.1,
		},
		{
			name:      "caps long gaps",
			seed:      models.MaintenanceRecord{CurrentHours: 1, TargetHours: 50, LastUpdatedAt: now.Add(-3 * time.Hour).UnixMilli()},
			running:   true,
			wantHours: 1 + 10.0/60,
		},
		{
			name:      "not running credits nothing",
			seed:      models.MaintenanceRecord{CurrentHours: 1, TargetHours: 50, LastUpdatedAt: now.Add(-6 * time.Minute).UnixMilli()},
			running:   false,
			wantHours: 1,
		},
		{
			name:        "crosses 80 percent",
			seed:        models.MaintenanceRecord{CurrentHours: 39.95, TargetHours: 50, LastUpdatedAt: now.Add(-6 * time.Minute).UnixMilli()},
			running:     true,
			wantHours:   40.05,
			wantCrossed: 80,
			wantLevel:   80,
		},
		{
			name:      "same level is not repeated",
			seed:      models.MaintenanceRecord{CurrentHours: 41, TargetHours: 50, LastNotificationLevel: 80, LastUpdatedAt: now.Add(-6 * time.Minute).UnixMilli()},
			running:   true,
			wantHours: 41.1,
			wantLevel: 80,
		},
		{
			name:        "reaching target flags cleaning",
			seed:        models.MaintenanceRecord{CurrentHours: 49.95, TargetHours: 50, LastNotificationLevel: 90, LastUpdatedAt: now.Add(-6 * time.Minute).UnixMilli()},
			running:     true,
			wantHours:   50.05,
			wantCrossed: 100,
			wantLevel:   100,
			wantClean:   true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			if tc.seed != (models.MaintenanceRecord{}) {
				store.seed(t, pathMaintenance, tc.seed)
			}
			svc := NewMaintenanceService(store)

			rec, crossed, err := svc.TrackUsage(context.Background(), tc.running, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(rec.CurrentHours-tc.wantHours) > 1e-9 {
				t.Errorf("CurrentHours: want %v, got %v", tc.wantHours, rec.CurrentHours)
			}
			if crossed != tc.wantCrossed {
				t.Errorf("crossed: want %d, got %d", tc.wantCrossed, crossed)
			}
			if rec.LastNotificationLevel != tc.wantLevel {
				t.Errorf("LastNotificationLevel: want %d, got %d", tc.wantLevel, rec.LastNotificationLevel)
			}
			if rec.NeedsCleaning != tc.wantClean {
				t.Errorf("NeedsCleaning: want %v, got %v", tc.wantClean, rec.NeedsCleaning)
			}
			if rec.TargetHours != defaultTargetHours {
				t.Errorf("TargetHours: want %v, got %v", defaultTargetHours, rec.TargetHours)
			}

			var saved models.MaintenanceRecord
			if !store.decode(t, pathMaintenance, &saved) {
				t.Fatalf("record not persisted")
			}
			if saved.LastUpdatedAt != now.UnixMilli() {
				t.Errorf("LastUpdatedAt: want %d, got %d", now.UnixMilli(), saved.LastUpdatedAt)
			}
		})
	}
}

func TestMaintenanceService_ConfirmCleaning(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 7, 9, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.seed(t, pathMaintenance, models.MaintenanceRecord{
		CurrentHours:          52,
		TargetHours:           60,
		NeedsCleaning:         true,
		LastNotificationLevel: 100,
	})
	svc := NewMaintenanceService(store)
	svc.now = func() time.Time { return now }

	if err := svc.ConfirmCleaning(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CurrentHours != 0 || rec.NeedsCleaning || rec.LastNotificationLevel != 0 {
		t.Fatalf("record not reset: %+v", rec)
	}
	if rec.TargetHours != 60 {
		t.Errorf("TargetHours must be kept: got %v", rec.TargetHours)
	}
	if rec.LastCleanedAt != now.UnixMilli() {
		t.Errorf("LastCleanedAt: want %d, got %d", now.UnixMilli(), rec.LastCleanedAt)
	}

	ok, err := svc.CanIgnite(context.Background())
	if err != nil || !ok {
		t.Fatalf("CanIgnite after cleaning: ok=%v err=%v", ok, err)
	}
}
