package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/insight"
	"github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http/middleware"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

const runNowTimeout = 90 * time.Second

// InsightAPIHandler exposes the background analysis loop: its current
// status and an on-demand trigger for a full cycle.
type InsightAPIHandler struct {
	runner *insight.Runner
	logger *logger.Logger
}

func NewInsightAPIHandler(runner *insight.Runner, log *logger.Logger) *InsightAPIHandler {
	return &InsightAPIHandler{
		runner: runner,
		logger: log,
	}
}

func (h *InsightAPIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.runner.Snapshot())
}

func (h *InsightAPIHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runNowTimeout)
	defer cancel()

	summary, err := h.runner.RunOnce(ctx)
	if err != nil {
		h.logger.Error("On-demand insight cycle failed", err)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}
