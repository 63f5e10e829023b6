package purview

import (
	"context"
	"net/http"
	"net/url"

	perr "glossarysync/internal/platform/errors"
)

const (
	OpListTerms   = "list_terms"
	OpGetTerm     = "get_term"
	OpCreateTerm  = "create_term"
	OpDeleteTerm  = "delete_term"
	OpListDomains = "list_domains"
)

// ListTerms fetches every glossary term, following nextLink
func (c *Client) ListTerms(ctx context.Context) ([]Term, error) {
	return listAll[Term](ctx, c, OpListTerms, "/terms")
}

// ListDomains fetches every governance domain, following nextLink
func (c *Client) ListDomains(ctx context.Context) ([]BusinessDomain, error) {
	return listAll[BusinessDomain](ctx, c, OpListDomains, "/businessdomains")
}

// GetTerm fetches one term by id
func (c *Client) GetTerm(ctx context.Context, id string) (Term, error) {
	var out Term
	if err := c.call(ctx, OpGetTerm, http.MethodGet, "/terms/"+url.PathEscape(id), nil, &out); err != nil {
		return Term{}, perr.WithField(err, id)
	}
	return out, nil
}

// CreateTerm posts a new term and returns the catalog's copy
func (c *Client) CreateTerm(ctx context.Context, in CreateTermRequest) (Term, error) {
	var out Term
	if err := c.call(ctx, OpCreateTerm, http.MethodPost, "/terms", in, &out); err != nil {
		return Term{}, err
	}
	return out, nil
}

// DeleteTerm removes a term and returns the raw status code
// only transport failures are errors; callers interpret the status
func (c *Client) DeleteTerm(ctx context.Context, id string) (int, error) {
	resp, err := c.Do(ctx, http.MethodDelete, "/terms/"+url.PathEscape(id), nil)
	if err != nil {
		return 0, perr.WithField(perr.WithOp(err, OpDeleteTerm), id)
	}
	if cerr := drainAndClose(resp.Body); cerr != nil {
		c.log.Error().Err(cerr).Str("term_id", id).Msg("purview close body failed")
	}
	return resp.StatusCode, nil
}

// listAll walks a paged collection until nextLink is empty
// a nextLink that repeats is treated as a broken upstream rather than looped on
func listAll[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	var out []T
	seen := map[string]bool{}
	for next := path; next != ""; {
		if seen[next] {
			return nil, perr.WithOp(perr.Upstreamf("catalog repeated nextLink %s", next), op)
		}
		seen[next] = true

		var p page[T]
		if err := c.call(ctx, op, http.MethodGet, next, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Value...)
		next = p.NextLink
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
