package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gighunt-engine/internal/poll"
)

type RunHandler struct {
	Runner Runner
	Log    *slog.Logger
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run starts a cycle in the background and returns immediately. Progress
// is visible through /run/status and /events.
func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Runner.Status().Running {
		WriteError(w, r, http.StatusConflict, "already_running", "a run is already in progress")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := h.Runner.PollOnce(ctx); errors.Is(err, poll.ErrRunning) {
			h.logger().InfoContext(ctx, "manual run skipped, another run is in progress")
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h RunHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}
