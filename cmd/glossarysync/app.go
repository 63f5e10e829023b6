package main

import (
	"context"
	"encoding/json"
	"io"

	"glossarysync/internal/modkit"
	"glossarysync/internal/platform/config"
	"glossarysync/internal/platform/logger"
	"glossarysync/internal/platform/store"
	"glossarysync/internal/services/glossary/domain"
	glossarymod "glossarysync/internal/services/glossary/module"
)

const appName = "glossarysync"

// app carries the per-invocation state shared by subcommands
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string

	log *logger.Logger
}

// logger builds the process logger once from LOG_* with flag overrides
func (a *app) logger() *logger.Logger {
	if a.log != nil {
		return a.log
	}
	opt := logger.FromEnv()
	if a.logLevel != "" {
		opt.Level = a.logLevel
	}
	if a.logFormat != "" {
		opt.Format = a.logFormat
	}
	opt.Service = appName
	// the root logger serves adapters that log through logger.Named
	logger.Init(opt)

	opt.Writer = a.stderr
	l := logger.New(opt)
	a.log = &l
	return a.log
}

// options layers defaults, the YAML file and the environment; flags are applied by callers
func (a *app) options() (glossarymod.Options, error) {
	o := glossarymod.Defaults()
	if err := config.LoadFile(a.configPath, &o); err != nil {
		return o, err
	}
	return glossarymod.FromConfig(config.New(), o), nil
}

// openStore opens the ledger database when configured; nil store means no ledger
func (a *app) openStore(ctx context.Context, o glossarymod.Options) (*store.Store, error) {
	if o.LedgerDBURL == "" {
		return nil, nil
	}
	pg := config.New().Prefix("LEDGER_PG_")
	return store.Open(ctx, store.Config{
		AppName: appName,
		PG: store.PGConfig{
			Enabled:     true,
			URL:         o.LedgerDBURL,
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*a.logger()))
}

func (a *app) deps(st *store.Store) modkit.Deps {
	d := modkit.Deps{Log: *a.logger(), Cfg: config.New()}
	if st != nil {
		d.PG = st.PG
	}
	return d
}

// withSync loads settings, applies mutate, wires the module and runs fn
// a ledger that cannot be opened is logged and skipped; the sync still runs
func (a *app) withSync(ctx context.Context, mutate func(*glossarymod.Options), fn func(domain.SyncPort) error) error {
	o, err := a.options()
	if err != nil {
		return err
	}
	if mutate != nil {
		mutate(&o)
	}

	st, err := a.openStore(ctx, o)
	if err != nil {
		a.logger().Warn().Err(err).Msg("ledger: database unavailable, runs will not be recorded")
		st = nil
	}
	defer a.closeStore(ctx, st)

	m, err := glossarymod.New(ctx, a.deps(st), o)
	if err != nil {
		return err
	}
	return fn(m.Ports().Sync)
}

func (a *app) closeStore(ctx context.Context, st *store.Store) {
	if err := st.Close(ctx); err != nil {
		a.logger().Error().Err(err).Msg("failed to close store")
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
