package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type reminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// ReminderJob emails seekers shortly before their events start. Each tick
// covers one interval-wide window, so the tick interval and the window match.
type ReminderJob struct {
	sender   reminderSender
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewReminderJob(sender reminderSender, interval time.Duration, log *zap.Logger) *ReminderJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReminderJob{
		sender:   sender,
		interval: interval,
		log:      log.With(zap.String("job", "reminder")),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *ReminderJob) Start(ctx context.Context) {
	j.log.Info("Starting reminder job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("Reminder job stopped (context cancelled)")
			return
		case <-j.stop:
			j.log.Info("Reminder job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *ReminderJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *ReminderJob) run(ctx context.Context) {
	sent, err := j.sender.SendReminders(ctx, j.now())
	if err != nil {
		j.log.Error("Reminder run failed", zap.Error(err))
		return
	}
	if sent > 0 {
		j.log.Info("Reminder run finished", zap.Int("sent", sent))
	}
}
