package httpapi

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/events"
	"gighunt-engine/internal/poll"
)

// Runner is the part of poll.Runner the API drives.
type Runner interface {
	PollOnce(ctx context.Context) (poll.RunReport, error)
	Status() poll.Status
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub
	Log *slog.Logger

	// stores config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Runner Runner
}
