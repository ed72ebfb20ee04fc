package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"stove_automation/internal/models"
	"stove_automation/internal/repository"
)

// EventLogService answers history queries over the event log.
type EventLogService struct {
	events repository.EventRepo
}

var _ EventLog = (*EventLogService)(nil)

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

var eventTypes = []string{
	models.EventCronExecution,
	models.EventAnalytics,
	models.EventPIDTuning,
	models.EventNotification,
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalize converts bounds to UTC, canonicalises the type and rejects
// inverted ranges or unknown types.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{
		From:  utc(f.From),
		To:    utc(f.To),
		Type:  strings.ToUpper(strings.TrimSpace(f.Type)),
		Limit: max(f.Limit, 0),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	if out.Type != "" && !slices.Contains(eventTypes, out.Type) {
		return LogFilter{}, fmt.Errorf("%w: %q", ErrUnknownEventType, out.Type)
	}
	return out, nil
}

// List returns matching events oldest first. A positive Limit keeps the
// newest Limit of them.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.Event, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, f.From, f.To, f.Type)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}

// Summary counts events in [from, to] by type, scheduler outcome and
// stove action.
func (s *EventLogService) Summary(ctx context.Context, from, to time.Time) (ActivitySummary, error) {
	f, err := LogFilter{From: from, To: to}.normalize()
	if err != nil {
		return ActivitySummary{}, err
	}
	events, err := s.events.List(ctx, f.From, f.To, "")
	if err != nil {
		return ActivitySummary{}, fmt.Errorf("list events: %w", err)
	}

	sum := ActivitySummary{
		From:         f.From,
		To:           f.To,
		Total:        len(events),
		ByType:       map[string]int{},
		CronOutcomes: map[string]int{},
	}
	for _, ev := range events {
		sum.ByType[ev.Type]++
		switch ev.Type {
		case models.EventCronExecution:
			sum.CronOutcomes[ev.Description]++
		case models.EventAnalytics:
			switch ev.Description {
			case models.AnalyticsStoveIgnite:
				sum.Ignitions++
			case models.AnalyticsStoveShutdown:
				sum.Shutdowns++
			case models.AnalyticsPowerChange:
				sum.PowerChanges++
			case models.AnalyticsFanChange:
				sum.FanChanges++
			}
		}
		if sum.LastEventAt.Before(ev.OccurredAt) {
			sum.LastEventAt = ev.OccurredAt
		}
	}
	return sum, nil
}
