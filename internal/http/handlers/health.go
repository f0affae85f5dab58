package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks       map[string]Pinger
	shuttingDown atomic.Bool
}

// NewHealthHandler takes the named dependencies /readyz should ping.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// MarkShuttingDown makes /readyz fail so load balancers drain this instance
// while in-flight requests finish.
func (h *HealthHandler) MarkShuttingDown() {
	h.shuttingDown.Store(true)
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.shuttingDown.Load() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
	defer cancel()

	failed := gin.H{}
	for name, ping := range h.checks {
		if ping == nil {
			continue
		}
		if err := ping(cctx); err != nil {
			failed[name] = "unavailable"
		}
	}

	if len(failed) > 0 {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": failed})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
