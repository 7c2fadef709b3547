package report

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the nightly budget export on a cron expression.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers the nightly export with the given cron spec.
func NewScheduler(exporter *Exporter, spec string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := exporter.ExportNightly(); err != nil {
			logger.Error("Nightly report export failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running scheduled exports in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Report scheduler started")
}

// Stop halts the scheduler, waiting for a running export to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Report scheduler stopped")
}
