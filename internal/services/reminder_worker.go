package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ScheduledRunner is the piece of the dispatcher the worker drives.
type ScheduledRunner interface {
	RunScheduled(ctx context.Context)
}

// ReminderWorker triggers the monthly reminder run. It wakes up on a short
// interval and fires the dispatcher once on the configured day of month.
type ReminderWorker struct {
	dispatcher ScheduledRunner
	interval   time.Duration
	runDay     int
	log        *zap.Logger

	cancel  context.CancelFunc
	lastRun string // date of the last fired run, "2006-01-02"
}

// NewReminderWorker creates a worker that fires on runDay of each month,
// checking the clock every interval.
func NewReminderWorker(dispatcher ScheduledRunner, runDay int, interval time.Duration, log *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		dispatcher: dispatcher,
		interval:   interval,
		runDay:     runDay,
		log:        log,
	}
}

// Start launches the background loop.
func (w *ReminderWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
	w.log.Info("reminder worker started",
		zap.Int("run_day", w.runDay),
		zap.Duration("check_interval", w.interval))
}

// Stop halts the background loop. Safe to call before Start.
func (w *ReminderWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx, time.Now())
		}
	}
}

// tick fires the scheduled run when today is the run day and no run has
// fired yet today.
func (w *ReminderWorker) tick(ctx context.Context, now time.Time) {
	if now.Day() != w.runDay {
		return
	}

	today := now.Format("2006-01-02")
	if w.lastRun == today {
		return
	}
	w.lastRun = today

	w.dispatcher.RunScheduled(ctx)
}
