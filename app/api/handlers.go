package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blog-forge/app/pipeline"
	"github.com/lysyi3m/blog-forge/app/tasks"
)

func NewHandler(scheduler SchedulerInterface, runner tasks.Runner, version string) *Handler {
	return &Handler{
		scheduler: scheduler,
		runner:    runner,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "running",
		"message":      "Blog generator service is running",
		"current_time": time.Now().UTC().Format(time.RFC3339),
		"next_run":     h.scheduler.NextRun().Format(time.RFC3339),
	})
}

type triggerRequest struct {
	Difficulty string   `json:"difficulty"`
	Topics     []string `json:"topics"`
	Companies  []string `json:"companies"`
	Platform   string   `json:"platform"`
}

// Trigger dispatches one on-demand generation run. Fire-and-forget: the
// response reports only whether dispatch succeeded; the run's own outcome
// is visible in logs, never to this caller.
func (h *Handler) Trigger(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "invalid request body: " + err.Error(),
			})
			return
		}
	}

	task := tasks.NewGeneratePostTask("manual trigger", h.runner, pipeline.Options{
		Difficulty: req.Difficulty,
		Topics:     req.Topics,
		Companies:  req.Companies,
		Platform:   req.Platform,
	})

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to dispatch manual run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	slog.Info("Manual run dispatched", "task_id", task.ID)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Blog generation started",
		"task_id": task.ID,
	})
}
