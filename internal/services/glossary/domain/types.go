// Package domain holds the glossary sync types and ports
package domain

import (
	"time"

	perr "glossarysync/internal/platform/errors"
)

// Term is a catalog glossary term; Domain is the owning domain id
// identity is (Name, Domain)
type Term struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Domain      string `json:"domain"`
}

// TermInput is a term as authored in the spreadsheet; Domain is the display name
type TermInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Domain      string `json:"domain"`
}

// CreateRequest is what the catalog receives; DomainID is already resolved
type CreateRequest struct {
	Name        string
	Description string
	Status      string
	DomainID    string
}

// Domain is a governance domain
type Domain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DomainIndex maps a domain display name to its id
type DomainIndex map[string]string

// NewDomainIndex builds an index; a repeated name takes the last id listed
func NewDomainIndex(ds []Domain) DomainIndex {
	idx := make(DomainIndex, len(ds))
	for _, d := range ds {
		idx[d.Name] = d.ID
	}
	return idx
}

// Resolve returns the id for name; exact, case-sensitive match
func (idx DomainIndex) Resolve(name string) (string, error) {
	if id, ok := idx[name]; ok {
		return id, nil
	}
	return "", perr.WithField(perr.Unresolvedf("governance domain %q does not exist in the catalog", name), name)
}

// Snapshot is the catalog state captured once per batch
type Snapshot struct {
	Terms   []Term
	Domains DomainIndex
}

// TermRecord is one spreadsheet row keyed by lower-cased header
type TermRecord = map[string]string

// Required record fields, already lower-cased
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldDomain      = "domain"
)

// TermSelector picks a term by id or by name; exactly one must be set
type TermSelector struct {
	ID   string
	Name string
}

// TermKey is the identity of a term once its domain is resolved
type TermKey struct {
	Name     string `json:"name"`
	DomainID string `json:"domain_id"`
}

// Action is what the sync did with one record
type Action string

// Actions recorded per record
const (
	ActionCreated Action = "created"
	ActionSkipped Action = "skipped"
	ActionPlanned Action = "planned"
)

// UploadItem is the outcome for one input record
type UploadItem struct {
	Ordinal  int    `json:"ordinal"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	DomainID string `json:"domain_id"`
	Action   Action `json:"action"`
	TermID   string `json:"term_id,omitempty"`
}

// UploadReport summarizes one batch; on error it holds what completed before the failure
type UploadReport struct {
	RunID   string       `json:"run_id"`
	DryRun  bool         `json:"dry_run"`
	Created []Term       `json:"created"`
	Skipped []TermKey    `json:"skipped"`
	Planned []TermKey    `json:"planned,omitempty"`
	Items   []UploadItem `json:"items"`
}

// DeleteOutcome classifies a delete status
type DeleteOutcome string

// Delete outcomes
const (
	DeleteDeleted   DeleteOutcome = "deleted"
	DeleteForbidden DeleteOutcome = "forbidden"
	DeleteFailed    DeleteOutcome = "failed"
)

// DeleteResult is the outcome of one delete; Status is 0 when the request never completed
type DeleteResult struct {
	TermID  string        `json:"term_id"`
	Name    string        `json:"name,omitempty"`
	Status  int           `json:"status"`
	Outcome DeleteOutcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
}

// DeleteAllReport collects every per-term result
type DeleteAllReport struct {
	Results   []DeleteResult `json:"results"`
	Deleted   int            `json:"deleted"`
	Forbidden int            `json:"forbidden"`
	Failed    int            `json:"failed"`
}

// RunStatus is the ledger state of a run
type RunStatus string

// Run states
const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one upload invocation as the ledger stores it
type Run struct {
	ID         string     `json:"run_id"`
	TenantID   string     `json:"tenant_id"`
	Source     string     `json:"source"`
	DryRun     bool       `json:"dry_run"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     RunStatus  `json:"status"`
	Created    int        `json:"created"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
}
