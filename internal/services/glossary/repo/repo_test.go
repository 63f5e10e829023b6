package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"glossarysync/internal/modkit/repokit"
	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/services/glossary/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

type tag int64

func (t tag) String() string      { return "UPDATE" }
func (t tag) RowsAffected() int64 { return int64(t) }

type exec struct {
	sql  string
	args []any
}

type fakeQ struct {
	execs    []exec
	affected int64
	err      error
	rows     *runRows
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	f.execs = append(f.execs, exec{sql: sql, args: args})
	return tag(f.affected), f.err
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (repokit.Rows, error) {
	f.execs = append(f.execs, exec{sql: sql, args: args})
	return f.rows, f.err
}

func (f *fakeQ) QueryRow(context.Context, string, ...any) repokit.Row { return nil }

type runRows struct {
	runs []domain.Run
	i    int
}

func (r *runRows) Next() bool { r.i++; return r.i <= len(r.runs) }
func (r *runRows) Err() error { return nil }
func (r *runRows) Close()     {}
func (r *runRows) Scan(dst ...any) error {
	run := r.runs[r.i-1]
	*dst[0].(*string) = run.ID
	*dst[1].(*string) = run.TenantID
	*dst[2].(*string) = run.Source
	*dst[3].(*bool) = run.DryRun
	*dst[4].(*time.Time) = run.StartedAt
	*dst[5].(**time.Time) = run.FinishedAt
	*dst[6].(*string) = string(run.Status)
	*dst[7].(*int) = run.Created
	*dst[8].(*int) = run.Skipped
	*dst[9].(*string) = run.Error
	return nil
}

func TestStatements(t *testing.T) {
	got := statements(schemaSQL)
	if len(got) != 3 {
		t.Fatalf("statements = %d, want 3", len(got))
	}
	for _, s := range got {
		if !strings.HasPrefix(s, "CREATE ") || strings.HasSuffix(s, ";") {
			t.Fatalf("bad statement %q", s)
		}
	}
}

func TestEnsureSchema(t *testing.T) {
	q := &fakeQ{}
	if err := NewPG().Bind(q).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(q.execs) != 3 || !strings.Contains(q.execs[0].sql, "glossary_sync_runs") {
		t.Fatalf("execs = %+v", q.execs)
	}

	q = &fakeQ{err: &pgconn.PgError{Code: "42501", Message: "permission denied for schema public"}}
	err := NewPG().Bind(q).EnsureSchema(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}

func TestInsertRunAndItem(t *testing.T) {
	q := &fakeQ{affected: 1}
	r := NewPG().Bind(q)
	ctx := context.Background()
	start := time.Date(2026, 10, 14, 9, 30, 0, 0, time.FixedZone("X", 3600))

	if err := r.InsertRun(ctx, domain.Run{ID: "r1", TenantID: "contoso", Source: "a.xlsx", StartedAt: start, Status: domain.RunRunning}); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	args := q.execs[0].args
	if args[0] != "r1" || args[4].(time.Time).Location() != time.UTC || args[5] != "running" {
		t.Fatalf("run args = %v", args)
	}

	if err := r.InsertItem(ctx, "r1", domain.UploadItem{Ordinal: 2, Name: "Revenue", Action: domain.ActionSkipped}); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	if got := q.execs[1].args; got[1] != 2 || got[5] != "skipped" || got[6] != "" {
		t.Fatalf("item args = %v", got)
	}

	q.err = &pgconn.PgError{Code: "23505"}
	if err := r.InsertRun(ctx, domain.Run{ID: "r1"}); !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate run code = %v", perr.CodeOf(err))
	}
}

func TestFinishRun(t *testing.T) {
	ctx := context.Background()
	fin := time.Now()

	q := &fakeQ{affected: 1}
	if err := NewPG().Bind(q).FinishRun(ctx, domain.Run{ID: "r1", FinishedAt: &fin, Status: domain.RunSucceeded}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	q = &fakeQ{affected: 0}
	err := NewPG().Bind(q).FinishRun(ctx, domain.Run{ID: "r2"})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing run code = %v", perr.CodeOf(err))
	}
	if e, _ := perr.As(err); e.Field() != "r2" {
		t.Fatalf("field = %q", e.Field())
	}
}

func TestListRuns(t *testing.T) {
	fin := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	want := []domain.Run{
		{ID: "r2", Status: domain.RunFailed, Error: "boom", Created: 1},
		{ID: "r1", Status: domain.RunSucceeded, FinishedAt: &fin, Skipped: 4},
	}
	q := &fakeQ{rows: &runRows{runs: want}}

	got, err := NewPG().Bind(q).ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(got) != 2 || got[0].Error != "boom" || got[1].FinishedAt == nil || got[1].Status != domain.RunSucceeded {
		t.Fatalf("runs = %+v", got)
	}
	if q.execs[0].args[0] != DefaultRunsLimit {
		t.Fatalf("limit = %v", q.execs[0].args[0])
	}

	empty, err := NewPG().Bind(&fakeQ{rows: &runRows{}}).ListRuns(context.Background(), 5)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty = %#v, %v", empty, err)
	}
}
