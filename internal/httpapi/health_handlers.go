package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Runner Runner
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if h.Runner != nil {
		resp["running"] = h.Runner.Status().Running
	}
	writeJSON(w, resp)
}
