package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storebridge/backend/internal/infrastructure/scheduler"
)

// RunResponse is the wire form of one scheduled run.
type RunResponse struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Total       int       `json:"total"`
	Synced      int       `json:"synced"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
}

// SchedulerHandler exposes the recurring task runner.
type SchedulerHandler struct {
	BaseHandler
	sched *scheduler.SyncScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(sched *scheduler.SyncScheduler) *SchedulerHandler {
	return &SchedulerHandler{sched: sched}
}

// RegisterRoutes registers scheduler routes
func (h *SchedulerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/scheduler")
	{
		group.GET("/runs", h.Runs)
		group.POST("/run/:task", h.RunNow)
	}
}

// Runs returns the recent scheduled runs, newest first.
func (h *SchedulerHandler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs := h.sched.History(limit)
	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunResponse{
			ID:          run.ID.String(),
			Task:        run.Task,
			Status:      string(run.Status),
			Error:       run.Error,
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Total:       run.Total,
			Synced:      run.Synced,
			Failed:      run.Failed,
			Skipped:     run.Skipped,
		})
	}
	h.Success(c, out)
}

// RunNow kicks off one named sweep outside its schedule.
func (h *SchedulerHandler) RunNow(c *gin.Context) {
	task := c.Param("task")
	if err := h.sched.RunNow(c.Request.Context(), task); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, gin.H{"task": task})
}
