package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PreviewSweeper releases preview scopes that outlived their TTL
type PreviewSweeper interface {
	Sweep(ttl time.Duration) int
}

// CronService runs the console's scheduled jobs
type CronService struct {
	cron    *cron.Cron
	logger  *zap.Logger
	entryID cron.EntryID
}

// NewCronService schedules the preview sweep on spec, e.g. "@every 5m"
func NewCronService(previews PreviewSweeper, ttl time.Duration, spec string, logger *zap.Logger) (*CronService, error) {
	c := cron.New()
	s := &CronService{cron: c, logger: logger}

	id, err := c.AddFunc(spec, func() { s.sweepPreviews(previews, ttl) })
	if err != nil {
		return nil, fmt.Errorf("invalid PREVIEW_SWEEP_SPEC %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	s.logger.Info("cron service started", zap.Time("next_sweep", s.cron.Entry(s.entryID).Next))
}

// Stop stops the scheduler and waits for a running job
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron service stopped")
}

func (s *CronService) sweepPreviews(previews PreviewSweeper, ttl time.Duration) {
	if n := previews.Sweep(ttl); n > 0 {
		s.logger.Info("released expired previews", zap.Int("count", n))
	}
}
