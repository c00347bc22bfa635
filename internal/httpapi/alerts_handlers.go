package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/events"
	"gighunt-engine/internal/store"
)

type AlertsHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // stores config.Config
	Hub    *events.Hub
}

// List serves alert history. Query: sort=date|recommendation|difficulty,
// window=24h|7d|all, limit.
func (h AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	alerts, err := store.ListAlerts(r.Context(), h.DB, store.ListAlertsOpts{
		Sort: q.Get("sort"), Window: q.Get("window"), Limit: limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if alerts == nil {
		alerts = []store.Alert{}
	}
	writeJSON(w, alerts)
}

// Prune applies the retention policy now. Loopback callers only.
func (h AlertsHandler) Prune(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	retention := store.DefaultRetention
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok && cfg.Store.RetentionDays > 0 {
			retention = time.Duration(cfg.Store.RetentionDays) * 24 * time.Hour
		}
	}

	n, err := store.CleanupOldAlerts(r.Context(), h.DB, retention, time.Now())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "deleted": n})
}
