// Package schedule runs named background tasks on fixed intervals.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrInvalidTask = errors.New("schedule: invalid task")

// Task is a registered background task. A task first fires one interval
// after registration and every interval after that.
type Task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)

	mu                sync.RWMutex
	nextExecuteAt     time.Time
	previousExecuteAt time.Time
}

func (t *Task) due(now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.nextExecuteAt.After(now)
}

func (t *Task) advance(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.previousExecuteAt = now
	t.nextExecuteAt = now.Add(t.interval)
}

// Scheduler drives its tasks from a single ticker loop. Due tasks run
// concurrently with each other; a task slower than its own interval may
// overlap itself.
type Scheduler struct {
	logger *slog.Logger
	tick   time.Duration

	mu    sync.RWMutex
	tasks []*Task
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		tick:   time.Second,
		tasks:  make([]*Task, 0),
	}
}

// Add registers run under name with the given interval.
func (scheduler *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context)) error {
	if name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTask)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: %s: interval must be positive", ErrInvalidTask, name)
	}
	if run == nil {
		return fmt.Errorf("%w: %s: missing function", ErrInvalidTask, name)
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.tasks = append(scheduler.tasks, &Task{
		name:          name,
		interval:      interval,
		run:           run,
		nextExecuteAt: time.Now().Add(interval),
	})
	return nil
}

// Run fires due tasks until ctx is canceled.
func (scheduler *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(scheduler.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			scheduler.mu.RLock()
			tasks := make([]*Task, len(scheduler.tasks))
			copy(tasks, scheduler.tasks)
			scheduler.mu.RUnlock()

			now := time.Now()
			for _, task := range tasks {
				if !task.due(now) {
					continue
				}
				task.advance(now)
				go scheduler.execute(ctx, task)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (scheduler *Scheduler) execute(ctx context.Context, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			scheduler.logger.Error("task panicked", "task", task.name, "panic", r)
		}
	}()

	start := time.Now()
	task.run(ctx)
	scheduler.logger.Debug("task ran", "task", task.name, "duration_ms", time.Since(start).Milliseconds())
}
