package domain

import "context"

// SyncPort is the public port exposed by the glossary module
type SyncPort interface {
	ListTerms(ctx context.Context) ([]Term, error)
	ListDomains(ctx context.Context) (DomainIndex, error)
	GetTerm(ctx context.Context, sel TermSelector) ([]Term, error)
	CreateTerm(ctx context.Context, in TermInput) (*Term, error)
	DeleteTerm(ctx context.Context, id string) (DeleteResult, error)
	DeleteAllTerms(ctx context.Context) (DeleteAllReport, error)
	UploadGlossaryTerms(ctx context.Context, records []TermRecord) (UploadReport, error)
	UploadFrom(ctx context.Context, location, sheet string) (UploadReport, error)
	Runs(ctx context.Context, limit int) ([]Run, error)
}

// Catalog is the raw catalog surface the service drives
// DeleteTerm reports the status and errors only on transport failure
type Catalog interface {
	ListTerms(ctx context.Context) ([]Term, error)
	GetTerm(ctx context.Context, id string) (Term, error)
	CreateTerm(ctx context.Context, req CreateRequest) (Term, error)
	DeleteTerm(ctx context.Context, id string) (int, error)
	ListDomains(ctx context.Context) ([]Domain, error)
}

// Source reads term records from a location
type Source interface {
	Read(ctx context.Context, location, sheet string) ([]TermRecord, error)
}

// LedgerRepo is the storage surface for the run ledger
type LedgerRepo interface {
	EnsureSchema(ctx context.Context) error
	InsertRun(ctx context.Context, r Run) error
	InsertItem(ctx context.Context, runID string, it UploadItem) error
	FinishRun(ctx context.Context, r Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Ledger records runs; implementations never block a sync on their own failures
type Ledger interface {
	StartRun(ctx context.Context, r Run)
	RecordItem(ctx context.Context, runID string, it UploadItem)
	FinishRun(ctx context.Context, r Run)
	Runs(ctx context.Context, limit int) ([]Run, error)
}
