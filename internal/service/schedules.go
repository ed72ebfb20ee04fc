package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
	"stove_automation/internal/schedule"
)

var ErrUnknownDay = errors.New("unknown day name")

// ImportSchedule validates week and writes each day's slots under scheduleID.
// Days absent from week are left untouched. With activate set the schedule
// becomes the one the Reconciler reads.
func ImportSchedule(ctx context.Context, store repository.StateStore, scheduleID string, week models.WeeklySchedule, activate bool) error {
	if scheduleID == "" {
		scheduleID = defaultScheduleID
	}
	days := schedule.DayNames()
	for day, slots := range week {
		if !slices.Contains(days, day) {
			return fmt.Errorf("%w: %q", ErrUnknownDay, day)
		}
		if err := schedule.Validate(slots); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}

	for _, day := range days {
		slots, ok := week[day]
		if !ok {
			continue
		}
		if slots == nil {
			slots = []models.Interval{}
		}
		if err := store.Set(ctx, scheduleSlotsPath(scheduleID, day), slots); err != nil {
			return fmt.Errorf("write slots %s/%s: %w", scheduleID, day, err)
		}
	}

	if activate {
		if err := store.Set(ctx, pathActiveScheduleID, scheduleID); err != nil {
			return fmt.Errorf("activate schedule %s: %w", scheduleID, err)
		}
	}
	return nil
}
