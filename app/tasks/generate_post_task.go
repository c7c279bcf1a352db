package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/blog-forge/app/pipeline"
	"github.com/lysyi3m/blog-forge/app/publisher"
)

// Runner executes one content-generation run.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*publisher.Result, error)
}

var _ Runner = (*pipeline.Pipeline)(nil)

// GeneratePostTask runs the generation pipeline once. MaxRetries is zero:
// the completion client owns the only retry budget, and re-running a failed
// task here could publish the same post twice.
type GeneratePostTask struct {
	Task
	runner Runner
	opts   pipeline.Options
}

func NewGeneratePostTask(label string, runner Runner, opts pipeline.Options) *GeneratePostTask {
	return &GeneratePostTask{
		Task:   NewTask(TaskTypeGeneratePost, label, 0),
		runner: runner,
		opts:   opts,
	}
}

func (t *GeneratePostTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.runner.Run(ctx, t.opts)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "GeneratePost",
		"label", t.Label,
		"duration", t.GetDuration(),
		"platform", result.Platform,
		"post_id", result.ID)

	return nil
}
