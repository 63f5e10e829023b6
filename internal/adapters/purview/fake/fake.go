// Package fake is an in-memory Purview catalog and token endpoint for tests and local runs
package fake

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"glossarysync/internal/adapters/purview"
	phttp "glossarysync/internal/platform/net/http"
	"glossarysync/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CatalogPath is where the catalog routes are mounted, matching the real api
const CatalogPath = "/datagovernance/catalog"

// Credentials the token endpoint accepts
type Credentials struct {
	ClientID     string
	ClientSecret string
	Token        string
}

// Catalog holds terms and domains in memory and records requests per operation
type Catalog struct {
	mu sync.Mutex

	creds Credentials

	terms   []purview.Term
	domains []purview.BusinessDomain

	// forced maps an operation to a status returned instead of the real behavior
	forced map[string]int
	// deleteStatus overrides the delete outcome for a single term id
	deleteStatus map[string]int

	// PageSize > 0 splits list responses and emits nextLink
	PageSize int

	calls     map[string]int
	created   []purview.CreateTermRequest
	resources []string
}

// New returns an empty catalog accepting creds
func New(creds Credentials) *Catalog {
	if creds.Token == "" {
		creds.Token = "fake-token"
	}
	return &Catalog{
		creds:        creds,
		forced:       map[string]int{},
		deleteStatus: map[string]int{},
		calls:        map[string]int{},
	}
}

// SeedDomain adds a governance domain
func (c *Catalog) SeedDomain(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains = append(c.domains, purview.BusinessDomain{ID: id, Name: name})
}

// SeedTerm adds an existing term, assigning an id when empty
func (c *Catalog) SeedTerm(t purview.Term) purview.Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	c.terms = append(c.terms, t)
	return t
}

// Force makes op answer with status until cleared with status 0
func (c *Catalog) Force(op string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status == 0 {
		delete(c.forced, op)
		return
	}
	c.forced[op] = status
}

// ForceDelete makes deleting id answer with status
func (c *Catalog) ForceDelete(id string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteStatus[id] = status
}

// Terms returns a copy of the current terms
func (c *Catalog) Terms() []purview.Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.terms)
}

// Created returns every create body received, in order
func (c *Catalog) Created() []purview.CreateTermRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.created)
}

// Calls reports how many requests op received
func (c *Catalog) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Resources returns the resource parameter of every token request
func (c *Catalog) Resources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.resources)
}

// Handler mounts the token endpoint at /{tenant}/oauth2/token and the catalog under CatalogPath
func (c *Catalog) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Defaults(middleware.AccessLogOptions{})...)

	r.Post("/{tenant}/oauth2/token", c.token)
	r.Route(CatalogPath, func(cr chi.Router) {
		cr.Use(c.bearer)
		cr.Get("/terms", c.listTerms)
		cr.Post("/terms", c.createTerm)
		cr.Get("/terms/{id}", c.getTerm)
		cr.Delete("/terms/{id}", c.deleteTerm)
		cr.Get("/businessdomains", c.listDomains)
	})
	return r
}

func (c *Catalog) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		phttp.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	c.mu.Lock()
	c.calls["token"]++
	c.resources = append(c.resources, r.PostForm.Get("resource"))
	creds := c.creds
	c.mu.Unlock()

	if r.PostForm.Get("grant_type") != "client_credentials" {
		phttp.JSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	if r.PostForm.Get("client_id") != creds.ClientID || r.PostForm.Get("client_secret") != creds.ClientSecret {
		phttp.JSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "AADSTS7000215: Invalid client secret provided.",
		})
		return
	}
	phttp.JSON(w, http.StatusOK, map[string]any{
		"token_type":   "Bearer",
		"expires_in":   3599,
		"access_token": creds.Token,
	})
}

func (c *Catalog) bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+c.creds.Token {
			phttp.Fail(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid bearer token")
			return
		}
		if r.Method == http.MethodPost && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			phttp.Fail(w, http.StatusUnsupportedMediaType, "", "expected application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// enter counts the call and reports a forced status, if any; callers hold no lock
func (c *Catalog) enter(op string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	st, ok := c.forced[op]
	return st, ok
}

func failForced(w http.ResponseWriter, status int) {
	msg := "forced failure"
	if status == http.StatusForbidden {
		msg = "the caller does not have the Data Steward role"
	}
	phttp.Fail(w, status, "", msg)
}

func (c *Catalog) listTerms(w http.ResponseWriter, r *http.Request) {
	if st, ok := c.enter(purview.OpListTerms); ok {
		failForced(w, st)
		return
	}
	writePage(w, r, c.Terms(), c.PageSize)
}

func (c *Catalog) listDomains(w http.ResponseWriter, r *http.Request) {
	if st, ok := c.enter(purview.OpListDomains); ok {
		failForced(w, st)
		return
	}
	c.mu.Lock()
	ds := slices.Clone(c.domains)
	c.mu.Unlock()
	writePage(w, r, ds, c.PageSize)
}

func (c *Catalog) getTerm(w http.ResponseWriter, r *http.Request) {
	if st, ok := c.enter(purview.OpGetTerm); ok {
		failForced(w, st)
		return
	}
	id := chi.URLParam(r, "id")
	c.mu.Lock()
	i := c.indexOf(id)
	var t purview.Term
	if i >= 0 {
		t = c.terms[i]
	}
	c.mu.Unlock()
	if i < 0 {
		phttp.Fail(w, http.StatusNotFound, "NotFound", "term "+id+" not found")
		return
	}
	phttp.JSON(w, http.StatusOK, t)
}

func (c *Catalog) createTerm(w http.ResponseWriter, r *http.Request) {
	if st, ok := c.enter(purview.OpCreateTerm); ok {
		failForced(w, st)
		return
	}
	var in purview.CreateTermRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		phttp.Fail(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, in)
	if in.Name == "" {
		phttp.Fail(w, http.StatusBadRequest, "BadRequest", "name is required")
		return
	}
	if !slices.ContainsFunc(c.domains, func(d purview.BusinessDomain) bool { return d.ID == in.Domain }) {
		phttp.Fail(w, http.StatusBadRequest, "BadRequest", "unknown domain "+in.Domain)
		return
	}
	t := purview.Term{ID: uuid.NewString(), Name: in.Name, Description: in.Description, Status: in.Status, Domain: in.Domain}
	c.terms = append(c.terms, t)
	phttp.JSON(w, http.StatusCreated, t)
}

func (c *Catalog) deleteTerm(w http.ResponseWriter, r *http.Request) {
	if st, ok := c.enter(purview.OpDeleteTerm); ok {
		failForced(w, st)
		return
	}
	id := chi.URLParam(r, "id")
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.deleteStatus[id]; ok {
		failForced(w, st)
		return
	}
	i := c.indexOf(id)
	if i < 0 {
		phttp.Fail(w, http.StatusNotFound, "NotFound", "term "+id+" not found")
		return
	}
	c.terms = slices.Delete(c.terms, i, i+1)
	phttp.NoContent(w)
}

// indexOf needs c.mu held
func (c *Catalog) indexOf(id string) int {
	return slices.IndexFunc(c.terms, func(t purview.Term) bool { return t.ID == id })
}

// writePage serves items, splitting by size with an absolute nextLink when size > 0
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T, size int) {
	if items == nil {
		items = []T{}
	}
	if size <= 0 {
		phttp.JSON(w, http.StatusOK, map[string]any{"value": items})
		return
	}
	skip, _ := strconv.Atoi(r.URL.Query().Get("$skip"))
	skip = min(max(skip, 0), len(items))
	end := min(skip+size, len(items))

	body := map[string]any{"value": items[skip:end]}
	if end < len(items) {
		body["nextLink"] = "http://" + r.Host + r.URL.Path + "?$skip=" + strconv.Itoa(end)
	}
	phttp.JSON(w, http.StatusOK, body)
}
