package service

import (
	"context"

	"glossarysync/internal/modkit/repokit"
	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"
	"glossarysync/internal/services/glossary/domain"
)

// pgLedger writes runs through the repo binder and only logs its own failures
type pgLedger struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.LedgerRepo]
	log    logger.Logger
}

// NewLedger returns a ledger backed by db
func NewLedger(db repokit.TxRunner, binder repokit.Binder[domain.LedgerRepo], log logger.Logger) domain.Ledger {
	if db == nil {
		panic("glossary ledger requires a non nil TxRunner")
	}
	if binder == nil {
		panic("glossary ledger requires a non nil Repo binder")
	}
	return &pgLedger{db: db, binder: binder, log: log}
}

func (l *pgLedger) repo() domain.LedgerRepo { return repokit.MustBind(l.binder, l.db) }

func (l *pgLedger) warn(ctx context.Context, err error, what string) {
	logger.C(ctx, l.log).Warn().Err(err).Bool("retryable", perr.Retryable(err)).Msg("ledger: " + what + " failed")
}

func (l *pgLedger) StartRun(ctx context.Context, r domain.Run) {
	if err := l.repo().InsertRun(ctx, r); err != nil {
		l.warn(ctx, err, "start run")
	}
}

func (l *pgLedger) RecordItem(ctx context.Context, runID string, it domain.UploadItem) {
	if err := l.repo().InsertItem(ctx, runID, it); err != nil {
		l.warn(ctx, err, "record item")
	}
}

func (l *pgLedger) FinishRun(ctx context.Context, r domain.Run) {
	if err := l.repo().FinishRun(ctx, r); err != nil {
		l.warn(ctx, err, "finish run")
	}
}

func (l *pgLedger) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	return l.repo().ListRuns(ctx, limit)
}

type nopLedger struct{}

// NopLedger is used when no ledger database is configured
func NopLedger() domain.Ledger { return nopLedger{} }

func (nopLedger) StartRun(context.Context, domain.Run)                   {}
func (nopLedger) RecordItem(context.Context, string, domain.UploadItem) {}
func (nopLedger) FinishRun(context.Context, domain.Run)                  {}
func (nopLedger) Runs(context.Context, int) ([]domain.Run, error) {
	return nil, perr.InvalidArgf("run ledger is disabled; set LEDGER_PG_DBURL")
}
