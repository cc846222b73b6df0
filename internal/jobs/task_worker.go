package jobs

import (
	"context"
	"sync"
	"time"

	"events-platform/pkg/metrics"
	"events-platform/pkg/queue"

	"go.uber.org/zap"
)

const defaultBatchSize = 50

type dueSource interface {
	Due(ctx context.Context, now time.Time, limit int64) ([]queue.Task, error)
}

// TaskHandler runs one claimed task.
type TaskHandler func(ctx context.Context, task queue.Task) error

// TaskWorker polls the delayed queue and dispatches due tasks by name.
// A failed task is logged and dropped; there is no retry.
type TaskWorker struct {
	source   dueSource
	handlers map[string]TaskHandler
	interval time.Duration
	batch    int64
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewTaskWorker(source dueSource, interval time.Duration, m *metrics.Metrics, log *zap.Logger) *TaskWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &TaskWorker{
		source:   source,
		handlers: map[string]TaskHandler{},
		interval: interval,
		batch:    defaultBatchSize,
		metrics:  m,
		log:      log.With(zap.String("job", "task_worker")),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Handle registers the handler of a task name. Call before Start.
func (w *TaskWorker) Handle(name string, handler TaskHandler) {
	w.handlers[name] = handler
}

func (w *TaskWorker) Start(ctx context.Context) {
	w.log.Info("Starting task worker", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Task worker stopped (context cancelled)")
			return
		case <-w.stop:
			w.log.Info("Task worker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *TaskWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *TaskWorker) poll(ctx context.Context) {
	tasks, err := w.source.Due(ctx, w.now(), w.batch)
	if err != nil {
		w.log.Error("Failed to fetch due tasks", zap.Error(err))
	}

	for _, task := range tasks {
		w.dispatch(ctx, task)
	}
}

func (w *TaskWorker) dispatch(ctx context.Context, task queue.Task) {
	handler, ok := w.handlers[task.Name]
	if !ok {
		w.log.Warn("No handler for task", zap.String("task", task.Name), zap.String("task_id", task.ID))
		w.count(task.Name, "unhandled")
		return
	}

	if err := handler(ctx, task); err != nil {
		w.log.Error("Task failed",
			zap.Error(err),
			zap.String("task", task.Name),
			zap.String("task_id", task.ID),
		)
		w.count(task.Name, "failed")
		return
	}

	w.count(task.Name, "done")
}

func (w *TaskWorker) count(name, result string) {
	if w.metrics != nil {
		w.metrics.QueuedTasks.WithLabelValues(name, result).Inc()
	}
}
