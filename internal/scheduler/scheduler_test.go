package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow-api/internal/config"
	"cashflow-api/internal/service"
	"cashflow-api/internal/ws"

	"github.com/shopspring/decimal"
)

type fakeReports struct {
	service.ReportService
	day time.Time
	err error
}

func (f *fakeReports) DailyClosing(_ context.Context, day time.Time) (*service.ClosingSummary, error) {
	f.day = day
	if f.err != nil {
		return nil, f.err
	}
	return &service.ClosingSummary{
		Day:        day.Format("2006-01-02"),
		SalesCount: 3,
		Revenue:    decimal.NewFromInt(150),
		Expenses:   decimal.NewFromInt(20),
		Balance:    decimal.NewFromInt(130),
	}, nil
}

type capturePublisher struct {
	events []ws.Event
}

func (p *capturePublisher) Publish(event ws.Event) {
	p.events = append(p.events, event)
}

var reporting = config.ReportingConfig{Timezone: "UTC", ClosingCron: "0 22 * * *", LowStockThreshold: 5}

func TestDailyClosingPublishesSummary(t *testing.T) {
	reports := &fakeReports{}
	publisher := &capturePublisher{}
	s := NewScheduler(reporting, reports, publisher, nil)
	fixed := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	summary, err := s.DailyClosing(context.Background())
	if err != nil {
		t.Fatalf("DailyClosing: %v", err)
	}
	if !reports.day.Equal(fixed) {
		t.Fatalf("expected the closing to use the scheduler clock, got %v", reports.day)
	}
	if summary.Day != "2024-03-10" {
		t.Fatalf("unexpected day %s", summary.Day)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Type != ws.TypeReport || event.Action != ws.EventDailyClosing {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Message != "Closing 2024-03-10: 3 sales, revenue 150.00" {
		t.Fatalf("unexpected message %q", event.Message)
	}
}

func TestDailyClosingFailureIsNotPublished(t *testing.T) {
	publisher := &capturePublisher{}
	s := NewScheduler(reporting, &fakeReports{err: errors.New("db down")}, publisher, nil)

	if _, err := s.DailyClosing(context.Background()); err == nil {
		t.Fatalf("expected the report error")
	}
	s.runDailyClosing()
	if len(publisher.events) != 0 {
		t.Fatalf("failed closings must not be published, got %d events", len(publisher.events))
	}
}

func TestStartRejectsInvalidCron(t *testing.T) {
	cfg := reporting
	cfg.ClosingCron = "every evening"
	s := NewScheduler(cfg, &fakeReports{}, nil, nil)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected an invalid cron expression to fail")
	}

	s = NewScheduler(reporting, &fakeReports{}, nil, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
