// Package adapter holds shims between the catalog REST client and the glossary ports
package adapter

import (
	"context"

	"glossarysync/internal/adapters/purview"
	"glossarysync/internal/services/glossary/domain"
)

// client is the subset of *purview.Client the shim drives
type client interface {
	ListTerms(ctx context.Context) ([]purview.Term, error)
	GetTerm(ctx context.Context, id string) (purview.Term, error)
	CreateTerm(ctx context.Context, in purview.CreateTermRequest) (purview.Term, error)
	DeleteTerm(ctx context.Context, id string) (int, error)
	ListDomains(ctx context.Context) ([]purview.BusinessDomain, error)
}

type catalog struct{ c client }

// NewCatalog wraps a purview client as a domain.Catalog
func NewCatalog(c *purview.Client) domain.Catalog { return &catalog{c: c} }

func (a *catalog) ListTerms(ctx context.Context) ([]domain.Term, error) {
	ts, err := a.c.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Term, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTerm(t))
	}
	return out, nil
}

func (a *catalog) GetTerm(ctx context.Context, id string) (domain.Term, error) {
	t, err := a.c.GetTerm(ctx, id)
	if err != nil {
		return domain.Term{}, err
	}
	return toTerm(t), nil
}

func (a *catalog) CreateTerm(ctx context.Context, req domain.CreateRequest) (domain.Term, error) {
	t, err := a.c.CreateTerm(ctx, purview.CreateTermRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Domain:      req.DomainID,
	})
	if err != nil {
		return domain.Term{}, err
	}
	return toTerm(t), nil
}

func (a *catalog) DeleteTerm(ctx context.Context, id string) (int, error) {
	return a.c.DeleteTerm(ctx, id)
}

func (a *catalog) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	ds, err := a.c.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Domain, 0, len(ds))
	for _, d := range ds {
		out = append(out, domain.Domain{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

func toTerm(t purview.Term) domain.Term {
	return domain.Term{ID: t.ID, Name: t.Name, Description: t.Description, Status: t.Status, Domain: t.Domain}
}
