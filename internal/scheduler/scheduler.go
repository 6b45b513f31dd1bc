package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cashflow-api/internal/config"
	"cashflow-api/internal/service"
	"cashflow-api/internal/ws"
)

// Scheduler runs the daily closing job.
type Scheduler struct {
	cron      *cron.Cron
	reports   service.ReportService
	publisher service.Publisher
	spec      string
	now       func() time.Time
	logger    *zap.Logger
}

// NewScheduler evaluates the closing cron expression in the reporting timezone.
func NewScheduler(cfg config.ReportingConfig, reports service.ReportService, publisher service.Publisher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(cfg.Location())),
		reports:   reports,
		publisher: publisher,
		spec:      cfg.ClosingCron,
		now:       time.Now,
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("closing_cron", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.runDailyClosing); err != nil {
		return fmt.Errorf("schedule daily closing: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyClosing() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.DailyClosing(ctx); err != nil {
		s.logger.Error("daily closing failed", zap.Error(err))
	}
}

// DailyClosing computes today's summary, logs it and broadcasts it.
func (s *Scheduler) DailyClosing(ctx context.Context) (*service.ClosingSummary, error) {
	summary, err := s.reports.DailyClosing(ctx, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("daily closing",
		zap.String("day", summary.Day),
		zap.Int("sales", summary.SalesCount),
		zap.String("revenue", summary.Revenue.StringFixed(2)),
		zap.String("expenses", summary.Expenses.StringFixed(2)),
		zap.Int("low_stock", len(summary.LowStock)))

	if s.publisher != nil {
		s.publisher.Publish(ws.Event{
			Type:    ws.TypeReport,
			Action:  ws.EventDailyClosing,
			Data:    summary,
			Message: fmt.Sprintf("Closing %s: %d sales, revenue %s", summary.Day, summary.SalesCount, summary.Revenue.StringFixed(2)),
		})
	}
	return summary, nil
}
