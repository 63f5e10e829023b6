// Package repo provides postgres access for the glossary run ledger
package repo

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"glossarysync/internal/modkit/repokit"
	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/store"
	"glossarysync/internal/services/glossary/domain"
)

//go:embed schema.sql
var schemaSQL string

// DefaultRunsLimit applies when ListRuns gets a non-positive limit
const DefaultRunsLimit = 20

type (
	// PG is a Postgres binder for domain.LedgerRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.LedgerRepo
func NewPG() repokit.Binder[domain.LedgerRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.LedgerRepo { return &queries{q: q} }

// statements splits the schema on statement terminators
func statements(sql string) []string {
	var out []string
	for s := range strings.SplitSeq(sql, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureSchema creates the ledger tables when missing
func (r *queries) EnsureSchema(ctx context.Context) error {
	for _, stmt := range statements(schemaSQL) {
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return perr.FromPostgresf(err, "ensure ledger schema")
		}
	}
	return nil
}

// InsertRun records the start of a run
func (r *queries) InsertRun(ctx context.Context, run domain.Run) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO glossary_sync_runs (run_id, tenant_id, source, dry_run, started_at, status)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
	`, run.ID, run.TenantID, run.Source, run.DryRun, run.StartedAt.UTC(), string(run.Status))
	return perr.FromPostgresf(err, "insert run %s", run.ID)
}

// InsertItem records one record outcome
func (r *queries) InsertItem(ctx context.Context, runID string, it domain.UploadItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO glossary_sync_items (run_id, ordinal, name, domain, domain_id, action, term_id)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, NULLIF($7,''))
	`, runID, it.Ordinal, it.Name, it.Domain, it.DomainID, string(it.Action), it.TermID)
	return perr.FromPostgresf(err, "insert item %s/%d", runID, it.Ordinal)
}

// FinishRun closes a run; the run must have been inserted first
func (r *queries) FinishRun(ctx context.Context, run domain.Run) error {
	err := store.ExecOne(ctx, r.q, `
		UPDATE glossary_sync_runs SET
			finished_at = $2,
			status = $3,
			created = $4,
			skipped = $5,
			error = NULLIF($6,'')
		WHERE run_id = $1::uuid
	`, run.ID, run.FinishedAt, string(run.Status), run.Created, run.Skipped, run.Error)
	if errors.Is(err, perr.ErrNotFound) {
		return perr.WithField(perr.NotFoundf("run %s not in ledger", run.ID), run.ID)
	}
	return perr.FromPostgresf(err, "finish run %s", run.ID)
}

// ListRuns returns the newest runs first
func (r *queries) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = DefaultRunsLimit
	}
	runs, err := store.Many(ctx, r.q, scanRun, `
		SELECT run_id::text, tenant_id, source, dry_run, started_at, finished_at,
		       status, created, skipped, COALESCE(error, '')
		FROM glossary_sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list runs")
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	return runs, nil
}

func scanRun(row store.Row) (domain.Run, error) {
	var (
		run    domain.Run
		status string
	)
	err := row.Scan(&run.ID, &run.TenantID, &run.Source, &run.DryRun, &run.StartedAt, &run.FinishedAt,
		&status, &run.Created, &run.Skipped, &run.Error)
	run.Status = domain.RunStatus(status)
	return run, err
}
