package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/blog-forge/app/cfg"
	"github.com/lysyi3m/blog-forge/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler fires one generation run per schedule entry per UTC day and
// drives the worker pool that executes them. Manual triggers share the same
// bounded queue via EnqueueTask, so scheduled and on-demand runs go through
// one dispatch path.
type Scheduler struct {
	runner      Runner
	entries     []cfg.ScheduleEntry
	interval    time.Duration
	grace       time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// firedOn[i] is the UTC day entry i last fired, touched only by the
	// scheduler loop goroutine.
	firedOn []string
}

func NewScheduler(c *cfg.Cfg, runner Runner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:      runner,
		entries:     c.ScheduleTimes,
		interval:    time.Duration(c.SchedulerInterval) * time.Second,
		grace:       time.Duration(c.MisfireGrace) * time.Second,
		workerCount: c.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 16),
		firedOn:     make([]string, len(c.ScheduleTimes)),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for _, entry := range s.entries {
			slog.Info("Armed schedule trigger", "time", entry.String()+" UTC")
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.checkTriggers(time.Now().UTC())
			}
		}
	}()
}

// Stop prevents new runs from being issued and waits for workers to drain.
// In-flight runs complete; they are not cancelled mid-publish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Entries returns the armed schedule triggers.
func (s *Scheduler) Entries() []cfg.ScheduleEntry {
	return s.entries
}

// NextRun returns the earliest upcoming trigger time in UTC.
func (s *Scheduler) NextRun() time.Time {
	return s.nextRunAfter(time.Now().UTC())
}

func (s *Scheduler) nextRunAfter(now time.Time) time.Time {
	var next time.Time
	for _, entry := range s.entries {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), entry.Hour, entry.Minute, 0, 0, time.UTC)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// checkTriggers fires every entry whose trigger time has passed for the
// current UTC day, is within the misfire grace window, and has not fired
// today. A trigger missed because the process was asleep still fires once;
// one older than the grace window is skipped for the day.
func (s *Scheduler) checkTriggers(now time.Time) {
	defer func() {
		// A panic in trigger bookkeeping must not kill the loop
		if r := recover(); r != nil {
			slog.Error("Scheduler bookkeeping failure, continuing", "panic", r)
		}
	}()

	day := now.Format("2006-01-02")

	for i, entry := range s.entries {
		triggerTime := time.Date(now.Year(), now.Month(), now.Day(), entry.Hour, entry.Minute, 0, 0, time.UTC)

		if now.Before(triggerTime) {
			continue
		}
		if now.Sub(triggerTime) > s.grace {
			continue
		}
		if s.firedOn[i] == day {
			continue
		}

		task := NewGeneratePostTask("scheduled "+entry.String(), s.runner, pipeline.Options{})
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue scheduled run, will retry next tick", "time", entry.String(), "error", err)
			continue
		}

		s.firedOn[i] = day
		slog.Info("Scheduled run dispatched", "time", entry.String()+" UTC", "task_id", task.ID)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	// Detached from the scheduler context: Stop prevents new dispatches
	// but never aborts a run that is already executing
	taskCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	// A failed run terminates only itself, never the workers or the loop
	slog.Error("Worker task execution failed",
		"worker_id", workerID,
		"type", string(task.GetType()),
		"id", task.GetID(),
		"retry_count", task.GetRetryCount(),
		"error", err)

	if !task.CanRetry() {
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled",
		"type", string(task.GetType()),
		"id", task.GetID(),
		"retry_count", task.GetRetryCount(),
		"max_retries", task.GetMaxRetries(),
		"delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "error", retryErr)
			}
		}
	}()
}
