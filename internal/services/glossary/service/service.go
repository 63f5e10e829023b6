// Package service provides the glossary sync manager
package service

import (
	"context"
	"net/http"
	"time"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"
	"glossarysync/internal/services/glossary/domain"

	"github.com/google/uuid"
)

// Config holds the per-invocation knobs of the manager
type Config struct {
	// DryRun resolves and checks every record but never posts
	DryRun bool

	// TenantID tags logs and ledger runs
	TenantID string

	// Source labels runs started from in-memory records
	Source string
}

// Manager drives the catalog for one authenticated tenant
// calls are sequential; a Manager is not meant for concurrent use
type Manager struct {
	cat    domain.Catalog
	src    domain.Source
	ledger domain.Ledger
	log    logger.Logger
	cfg    Config

	now   func() time.Time
	runID func() string
}

// New constructs the manager; src may be nil when only records are uploaded
// a nil ledger records nothing
func New(cat domain.Catalog, src domain.Source, ledger domain.Ledger, log logger.Logger, cfg Config) *Manager {
	if cat == nil {
		panic("glossary.Manager requires a non nil Catalog")
	}
	if ledger == nil {
		ledger = NopLedger()
	}
	return &Manager{
		cat:    cat,
		src:    src,
		ledger: ledger,
		log:    log,
		cfg:    cfg,
		now:    time.Now,
		runID:  uuid.NewString,
	}
}

// ListTerms returns every glossary term in the catalog
func (m *Manager) ListTerms(ctx context.Context) ([]domain.Term, error) {
	return m.cat.ListTerms(ctx)
}

// ListDomains returns the governance domains indexed by display name
func (m *Manager) ListDomains(ctx context.Context) (domain.DomainIndex, error) {
	ds, err := m.cat.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewDomainIndex(ds), nil
}

// GetTerm looks a term up by id or by exact name; names may match several terms
func (m *Manager) GetTerm(ctx context.Context, sel domain.TermSelector) ([]domain.Term, error) {
	if (sel.ID == "") == (sel.Name == "") {
		return nil, perr.InvalidArgf("exactly one of term id or term name must be given")
	}
	if sel.ID != "" {
		t, err := m.cat.GetTerm(ctx, sel.ID)
		if err != nil {
			return nil, err
		}
		return []domain.Term{t}, nil
	}

	terms, err := m.cat.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Term
	for _, t := range terms {
		if t.Name == sel.Name {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, perr.WithField(perr.NotFoundf("no glossary term named %q", sel.Name), sel.Name)
	}
	return out, nil
}

// TermExists reports whether terms already hold name in the domain called domainName
// the domain must resolve; an unknown domain is an error, not a miss
func TermExists(name, domainName string, terms []domain.Term, domains domain.DomainIndex) (bool, error) {
	id, err := domains.Resolve(domainName)
	if err != nil {
		return false, err
	}
	return hasTerm(terms, domain.TermKey{Name: name, DomainID: id}), nil
}

func hasTerm(terms []domain.Term, k domain.TermKey) bool {
	for _, t := range terms {
		if t.Name == k.Name && t.Domain == k.DomainID {
			return true
		}
	}
	return false
}

// snapshot captures terms then domains; it is never refreshed within a batch
func (m *Manager) snapshot(ctx context.Context) (domain.Snapshot, error) {
	terms, err := m.cat.ListTerms(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	domains, err := m.ListDomains(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Terms: terms, Domains: domains}, nil
}

// CreateTerm creates one term against a fresh snapshot
// it returns nil, nil when the term already exists or the manager is in dry run
func (m *Manager) CreateTerm(ctx context.Context, in domain.TermInput) (*domain.Term, error) {
	snap, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	t, _, _, err := m.createWithSnapshot(ctx, logger.C(ctx, m.log), in, snap, map[domain.TermKey]struct{}{})
	return t, err
}

// createWithSnapshot resolves the domain, checks snap and seen for the key, then posts
// seen holds keys created or planned earlier in the batch and is updated in place
func (m *Manager) createWithSnapshot(
	ctx context.Context,
	log *logger.Logger,
	in domain.TermInput,
	snap domain.Snapshot,
	seen map[domain.TermKey]struct{},
) (*domain.Term, domain.TermKey, domain.Action, error) {
	id, err := snap.Domains.Resolve(in.Domain)
	if err != nil {
		return nil, domain.TermKey{}, "", err
	}
	key := domain.TermKey{Name: in.Name, DomainID: id}

	if _, dup := seen[key]; dup || hasTerm(snap.Terms, key) {
		log.Info().Str("term", in.Name).Str("domain", in.Domain).
			Msg("glossary: term already exists in the governance domain, skipping")
		return nil, key, domain.ActionSkipped, nil
	}

	if m.cfg.DryRun {
		seen[key] = struct{}{}
		log.Info().Str("term", in.Name).Str("domain", in.Domain).Str("domain_id", id).
			Msg("glossary: dry run, would create term")
		return nil, key, domain.ActionPlanned, nil
	}

	log.Info().Str("term", in.Name).Str("domain", in.Domain).Msg("glossary: creating term")
	t, err := m.cat.CreateTerm(ctx, domain.CreateRequest{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		DomainID:    id,
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeForbidden) {
			log.Warn().Str("term", in.Name).Str("domain", in.Domain).
				Msg("glossary: permission denied creating term")
			err = perr.Wrapf(err, perr.ErrorCodeForbidden,
				"check the Data Steward role on governance domain %q", in.Domain)
			return nil, key, "", perr.WithField(err, in.Domain)
		}
		return nil, key, "", err
	}
	seen[key] = struct{}{}
	log.Info().Str("term", in.Name).Str("domain", in.Domain).Str("term_id", t.ID).
		Msg("glossary: created term")
	return &t, key, domain.ActionCreated, nil
}

// DeleteTerm deletes one term and classifies the status
// only transport failures are returned as errors
func (m *Manager) DeleteTerm(ctx context.Context, id string) (domain.DeleteResult, error) {
	log := logger.C(ctx, m.log)
	log.Info().Str("term_id", id).Msg("glossary: deleting term")

	st, err := m.cat.DeleteTerm(ctx, id)
	res := domain.DeleteResult{TermID: id, Status: st}
	if err != nil {
		res.Outcome = domain.DeleteFailed
		res.Error = err.Error()
		return res, err
	}
	switch {
	case st >= 200 && st < 300:
		res.Outcome = domain.DeleteDeleted
		log.Info().Str("term_id", id).Int("status", st).Msg("glossary: deleted term")
	case st == http.StatusForbidden:
		res.Outcome = domain.DeleteForbidden
		log.Warn().Str("term_id", id).Msg("glossary: permission denied deleting term, check the Data Steward role")
	default:
		res.Outcome = domain.DeleteFailed
		log.Warn().Str("term_id", id).Int("status", st).Msg("glossary: delete term failed")
	}
	return res, nil
}

// DeleteAllTerms deletes every listed term, recording per-term outcomes
// per-term failures never stop the loop; only listing or cancellation do
func (m *Manager) DeleteAllTerms(ctx context.Context) (domain.DeleteAllReport, error) {
	terms, err := m.cat.ListTerms(ctx)
	if err != nil {
		return domain.DeleteAllReport{}, err
	}
	log := logger.C(ctx, m.log)
	rep := domain.DeleteAllReport{Results: make([]domain.DeleteResult, 0, len(terms))}

	for _, t := range terms {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := m.DeleteTerm(ctx, t.ID)
		res.Name = t.Name
		if err != nil {
			log.Warn().Err(err).Str("term", t.Name).Str("term_id", t.ID).Msg("glossary: term could not be deleted")
		}
		switch res.Outcome {
		case domain.DeleteDeleted:
			rep.Deleted++
		case domain.DeleteForbidden:
			rep.Forbidden++
		default:
			rep.Failed++
		}
		rep.Results = append(rep.Results, res)
	}
	log.Info().Int("deleted", rep.Deleted).Int("forbidden", rep.Forbidden).Int("failed", rep.Failed).
		Msg("glossary: delete all done")
	return rep, nil
}

// Runs lists recent ledger runs, newest first
func (m *Manager) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	return m.ledger.Runs(ctx, limit)
}
