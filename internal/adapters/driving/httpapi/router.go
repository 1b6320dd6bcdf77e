// Package httpapi serves the status and admin HTTP endpoints of the daemon.
//
// Public: /health
// Engine: /api/status, /api/check, /api/dates/:date/rebuild
// Scheduler: /api/tasks, /api/tasks/:id/history
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
)

// defaultHistoryLimit is used when ?limit is absent.
const defaultHistoryLimit = 20

// NewRouter wires the endpoints onto a gin engine.
func NewRouter(orch driving.SyncOrchestrator, sched driving.Scheduler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	registerSyncRoutes(api, orch)
	if sched != nil {
		registerTaskRoutes(api, sched)
	}
	return r
}

func registerSyncRoutes(r gin.IRoutes, orch driving.SyncOrchestrator) {
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, statusResponse(orch.Status(c.Request.Context())))
	})

	// Runs a sweep synchronously. Overlapping sweeps answer 409. The sweep
	// outlives a client that hangs up.
	r.POST("/check", func(c *gin.Context) {
		result, err := orch.CheckForUpdates(context.WithoutCancel(c.Request.Context()))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepResponse(result))
	})

	r.POST("/dates/:date/rebuild", func(c *gin.Context) {
		result, err := orch.RebuildDates(context.WithoutCancel(c.Request.Context()), []string{c.Param("date")})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepResponse(result))
	})
}

func registerTaskRoutes(r gin.IRoutes, sched driving.Scheduler) {
	r.GET("/tasks", func(c *gin.Context) {
		tasks, err := sched.Tasks(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]taskJSON, 0, len(tasks))
		for i := range tasks {
			out = append(out, newTaskJSON(&tasks[i]))
		}
		c.JSON(http.StatusOK, gin.H{"tasks": out})
	})

	// GET /api/tasks/:id/history?limit=N, newest first.
	r.GET("/tasks/:id/history", func(c *gin.Context) {
		limit := defaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		results, err := sched.History(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]taskResultJSON, 0, len(results))
		for i := range results {
			out = append(out, newTaskResultJSON(&results[i]))
		}
		c.JSON(http.StatusOK, gin.H{"task_id": c.Param("id"), "results": out})
	})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSyncInProgress):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
