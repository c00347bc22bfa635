package httpapi

import "net/http"

// NewMux returns the raw mux; main wraps it with the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Runner: d.Runner}.Health,
	}))

	// Alerts
	ah := AlertsHandler{DB: d.DB, CfgVal: d.CfgVal, Hub: d.Hub}
	mux.HandleFunc("/alerts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.List,
	}))
	mux.HandleFunc("/alerts/prune", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Prune,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/secrets/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    sh.Get,
		http.MethodPut:    sh.Set,
		http.MethodDelete: sh.Delete,
	}))

	// Runs
	rh := RunHandler{Runner: d.Runner, Log: d.Log}
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
	}))
	mux.HandleFunc("/run/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
