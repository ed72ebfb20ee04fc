package service

import (
	"context"
	"time"

	"stove_automation/internal/logger"
)

// TickerService triggers the Scheduler on a fixed interval for deployments
// without an external cron.
type TickerService struct {
	scheduler Scheduler
	log       *logger.Logger
}

func NewTickerService(scheduler Scheduler, log *logger.Logger) *TickerService {
	if log == nil {
		log = logger.Nop()
	}
	return &TickerService{scheduler: scheduler, log: log}
}

// Run ticks at the given interval until ctx is canceled. A non-positive
// tick disables the loop. Cycles never overlap.
func (s *TickerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			resp := s.scheduler.Check(ctx)
			s.log.Debugw("ticker_cycle", "status", resp.Status)
		}
	}
}
