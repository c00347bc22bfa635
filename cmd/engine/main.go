package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/events"
	"gighunt-engine/internal/httpapi"
	"gighunt-engine/internal/llm"
	"gighunt-engine/internal/poll"
	"gighunt-engine/internal/scheduler"
	"gighunt-engine/internal/secrets"
	"gighunt-engine/internal/store"
)

type options struct {
	once    bool
	dryRun  bool
	cfgPath string
	dataDir string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var opts options
	flag.BoolVar(&opts.once, "once", false, "run one cycle, print its report and exit")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "log alerts instead of sending them and leave dedup state untouched")
	flag.StringVar(&opts.cfgPath, "config", "", "config file (default <data-dir>/config.yml)")
	flag.StringVar(&opts.dataDir, "data-dir", "", "data directory (default $GIGHUNT_DATA_DIR, else .)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "gighunt:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("GIGHUNT_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	userCfgPath := opts.cfgPath
	if userCfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return fmt.Errorf("config bootstrap failed: %w", err)
		}
		userCfgPath = p
	}

	cfg, warnings, err := loadConfig(userCfgPath, dataDir)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}

	log := newLogger(cfg.App.LogLevel)
	slog.SetDefault(log)
	for _, w := range warnings {
		log.Warn("config warning", "warning", w)
	}

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	db, err := store.Open(config.ResolvePath(dataDir, cfg.Store.Path))
	if err != nil {
		return fmt.Errorf("open alert store: %w", err)
	}
	defer db.Close()

	hub := events.NewHub()
	hc := &http.Client{Timeout: 30 * time.Second}

	runner := &poll.Runner{
		Config:     func() config.Config { return cfgVal.Load().(config.Config) },
		Fetch:      poll.FetchFromConfig(hc, log),
		OpenSeen:   poll.SeenFromConfig(dataDir, opts.dryRun, log),
		Classifier: poll.ClassifierFromConfig(func(c config.Config) llm.Completer { return newCompleter(c, log) }, log),
		Notifier:   poll.NotifierFromConfig(func(c config.Config) string { return telegramToken(c, log) }, opts.dryRun, log),
		DB:         db.Pool,
		Hub:        hub,
		Log:        log,
		DryRun:     opts.dryRun,
	}

	if opts.once {
		rep, err := runner.PollOnce(ctx)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
		return err
	}

	sched := scheduler.New(cfg.Polling.Schedule, "poll", func(ctx context.Context) error {
		_, err := runner.PollOnce(ctx)
		if errors.Is(err, poll.ErrRunning) {
			log.InfoContext(ctx, "scheduled run skipped, another run is in progress")
			return nil
		}
		return err
	}, log)
	runner.NextRun = sched.Next
	if err := sched.Start(ctx, true); err != nil {
		return err
	}
	defer sched.Stop()

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg: func() (config.Config, error) {
			c, _, err := loadConfig(userCfgPath, dataDir)
			return c, err
		},
		Runner: runner,
	})
	return serve(ctx, cfg.App.Port, httpapi.Handler(mux, log, cfg.App.AllowedOrigins), log)
}

// loadConfig reads path, applies the optional templates.yml overlay from
// dataDir and normalizes the result.
func loadConfig(path, dataDir string) (config.Config, []string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if err := config.OverlayTemplates(&cfg, config.ResolvePath(dataDir, "templates.yml")); err != nil {
		return cfg, nil, fmt.Errorf("templates overlay: %w", err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		return cfg, v.Warnings, config.Validate(cfg)
	}
	return cfg, v.Warnings, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newCompleter returns nil when the model is off or no key is available;
// the classifier then runs on rules alone.
func newCompleter(cfg config.Config, log *slog.Logger) llm.Completer {
	if mode, _ := llm.ParseMode(cfg.LLM.Mode); mode == llm.ModeOff {
		return nil
	}
	key, err := secrets.LLMKey(cfg.LLM.KeyringAccount)
	if err != nil {
		log.Warn("no LLM API key, classification falls back to rules", "category", "adapter_unavailable", "error", err)
		return nil
	}
	c, err := llm.NewOpenAI(llm.Config{
		APIKey:           key,
		BaseURL:          cfg.LLM.BaseURL,
		Model:            cfg.LLM.Model,
		StructuredOutput: cfg.LLM.StructuredOutput,
	})
	if err != nil {
		log.Warn("LLM client unavailable", "category", "adapter_unavailable", "error", err)
		return nil
	}
	return c
}

func telegramToken(cfg config.Config, log *slog.Logger) string {
	if !cfg.Notify.Telegram.Enabled {
		return ""
	}
	tok, err := secrets.TelegramToken(cfg.Notify.Telegram.KeyringAccount)
	if err != nil {
		log.Debug("telegram token lookup", "error", err)
		return ""
	}
	return tok
}

func serve(ctx context.Context, port int, h http.Handler, log *slog.Logger) error {
	if port == 0 {
		port = 38471
	}
	// loopback only; the API has no auth
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info("engine listening", "addr", "http://"+addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("engine stopped")
	return nil
}
