// internal/jobs/scheduler.go
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"coinquest/internal/domain"
)

// PriceTicker advances simulated stock prices by one step.
type PriceTicker interface {
	Tick(ctx context.Context) ([]domain.Stock, error)
}

// Scheduler runs background jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	ticker PriceTicker
	logger logrus.FieldLogger
}

// cronLogger routes cron's own messages, including recovered job panics, to logrus.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) fields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Info implements cron.Logger.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(l.fields(keysAndValues)).Debug("[CRON] " + msg)
}

// Error implements cron.Logger.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(l.fields(keysAndValues)).WithError(err).Error("[CRON] " + msg)
}

// NewScheduler creates a scheduler in UTC.
func NewScheduler(ticker PriceTicker, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.Recover(cronLogger{logger}))),
		ticker: ticker,
		logger: logger,
	}
}

// Start registers the price tick on schedule and starts the cron loop.
// An empty schedule starts nothing. A failed tick is logged and the next run proceeds.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		s.logger.Info("Price simulator schedule disabled")
		return nil
	}
	_, err := s.cron.AddFunc(schedule, func() { s.runTick(ctx) })
	if err != nil {
		return fmt.Errorf("invalid price tick schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("Scheduler started")
	return nil
}

func (s *Scheduler) runTick(ctx context.Context) {
	stocks, err := s.ticker.Tick(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Price tick failed")
		return
	}
	s.logger.WithField("stocks", len(stocks)).Debug("[CRON] Price tick done")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
