// Package pg opens the pgxpool behind the run ledger, with optional query tracing
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger pool defaults; a sync writes a few rows per run from one goroutine
const (
	DefaultMaxConns    int32 = 2
	DefaultIdleTimeout       = 30 * time.Second
	DefaultConnTimeout       = 5 * time.Second
)

// Config configures the ledger pool; zero values take the defaults above
// pool sizing in the url is replaced, connect_timeout in the url is kept
type Config struct {
	URL         string
	AppName     string
	MaxConns    int32
	IdleTimeout time.Duration
	ConnTimeout time.Duration
	SlowMs      int
}

// PG holds the pool and the tracer the sql adapter reports to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL, applies the ledger defaults then poolCfgMut, and builds the pool
// the pool connects lazily so Open does not prove the server is reachable
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolCfgMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	applyLedgerDefaults(pcfg, cfg)
	if poolCfgMut != nil {
		poolCfgMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

func applyLedgerDefaults(pcfg *pgxpool.Config, cfg Config) {
	pcfg.MaxConns = DefaultMaxConns
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.MinConns = 0

	pcfg.MaxConnIdleTime = DefaultIdleTimeout
	if cfg.IdleTimeout > 0 {
		pcfg.MaxConnIdleTime = cfg.IdleTimeout
	}

	// a connect_timeout in the url wins over the default
	if pcfg.ConnConfig.ConnectTimeout == 0 {
		pcfg.ConnConfig.ConnectTimeout = DefaultConnTimeout
	}
	if cfg.ConnTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnTimeout
	}

	if cfg.AppName != "" {
		if pcfg.ConnConfig.RuntimeParams == nil {
			pcfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
}

// Close closes the pool; nil safe
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
