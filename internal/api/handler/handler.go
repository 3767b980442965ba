// Package handler provides HTTP handlers for the status server.
package handler

import (
	"net/http"
	"time"

	"github.com/albapepper/doctolib-checker/internal/api/respond"
	"github.com/albapepper/doctolib-checker/internal/config"
	"github.com/albapepper/doctolib-checker/internal/poller"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	status *poller.Status
	cfg    *config.Config
}

// New creates a Handler.
func New(status *poller.Status, cfg *config.Config) *Handler {
	return &Handler{status: status, cfg: cfg}
}

// Health reports that the process is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status returns the poll loop snapshot. Before the first cycle completes
// there is nothing to report and the endpoint answers 503.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.status.Snapshot()
	if snap.LastCycle == nil {
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "NO_CYCLE_YET",
			"No poll cycle has completed yet", "state: "+string(snap.State))
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":     snap,
		"start_date": h.cfg.StartDate,
		"limit_date": h.cfg.LimitDate,
		"interval":   h.cfg.Interval().String(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
