package tasks

// TaskSchedulerInterface is the surface the HTTP layer uses to dispatch
// on-demand runs and report the next scheduled one.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
