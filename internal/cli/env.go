package cli

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/glasswatch/glasswatch/internal/config"
	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/observability"
	"github.com/glasswatch/glasswatch/internal/remote"
	"github.com/glasswatch/glasswatch/internal/store"
	gwsync "github.com/glasswatch/glasswatch/internal/sync"
	"github.com/glasswatch/glasswatch/internal/votes"
)

// runtime is one fully wired core: config, store, voting engine.
// Each command builds one, runs, and closes it.
type runtime struct {
	cfg    *config.Config
	store  *store.Store
	votes  *votes.Engine
	clock  clockwork.Clock
	logger *slog.Logger
}

// openRuntime loads config and opens the entity store (running any due
// migrations as a side effect of Open).
func (o *RootOptions) openRuntime() (*runtime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := cfg.LogLevel
	if o.Verbose {
		level = "debug"
	}
	logger := observability.NewLogger(level, cfg.LogFormat)
	clock := clockwork.NewRealClock()

	s, err := store.Open(cfg.DBPath, clock)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	return &runtime{
		cfg:    cfg,
		store:  s,
		votes:  votes.New(s, model.UUIDv7Generator{}, clock, logger),
		clock:  clock,
		logger: logger,
	}, nil
}

func (rt *runtime) close() {
	rt.store.Close()
}

// syncEngine wires a one-shot sync engine over the configured remote.
// The change feed is not attached - CLI syncs are single runs, not
// long-lived subscriptions.
func (rt *runtime) syncEngine() (*gwsync.Engine, error) {
	if rt.cfg.RemoteBaseURL == "" {
		return nil, WrapExitError(ExitCommandError, "no remote configured (set GLASSWATCH_REMOTE_URL)", nil)
	}
	r := remote.NewHTTPStore(rt.cfg.RemoteBaseURL, rt.cfg.RemoteTimeout, rt.logger)
	return gwsync.New(rt.store, r, nil, rt.logger, observability.NewMetrics()), nil
}

// newFormatter builds the command's output formatter.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}
