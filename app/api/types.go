package api

import (
	"time"

	"github.com/lysyi3m/blog-forge/app/tasks"
)

// SchedulerInterface is what the handlers need from the scheduler: a way to
// dispatch a run and the next scheduled run time for the status endpoint.
type SchedulerInterface interface {
	EnqueueTask(task tasks.TaskInterface) error
	NextRun() time.Time
}

var _ SchedulerInterface = (*tasks.Scheduler)(nil)

type Handler struct {
	scheduler SchedulerInterface
	runner    tasks.Runner
	version   string
}
