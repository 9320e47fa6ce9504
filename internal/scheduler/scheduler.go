package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lrndwy/tradingbotv3/internal/collector"
	"github.com/lrndwy/tradingbotv3/internal/notifier"
)

// Scheduler manages the periodic background jobs: the market-data refresh
// cycle and the notification dispatch cycle. The two run independently so
// a slow exchange call never stalls notifications.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Sentiment  *collector.SentimentSource
	Dispatcher *notifier.Dispatcher
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sentiment *collector.SentimentSource, dispatcher *notifier.Dispatcher) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Sentiment:  sentiment,
		Dispatcher: dispatcher,
		Ctx:        ctx,
	}
}

// RegisterAll registers the refresh and dispatch tasks.
func (s *Scheduler) RegisterAll(refreshCron, notifyCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(notifyCron, s.notifyTask); err != nil {
		return fmt.Errorf("register notify task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the data refresh immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running market data refresh")
	s.Sentiment.Refresh(s.Ctx)
	s.Collector.RefreshAll(s.Ctx)
}

func (s *Scheduler) notifyTask() {
	log.Println("[INFO] running notification dispatch")
	s.Dispatcher.DispatchDue(s.Ctx, time.Now())
}
