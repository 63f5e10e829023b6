// Package module provides the glossary module wiring
package module

import (
	"context"
	"net/http"

	"glossarysync/internal/adapters/identity"
	"glossarysync/internal/adapters/purview"
	"glossarysync/internal/adapters/secrets"
	"glossarysync/internal/adapters/termsource"
	"glossarysync/internal/modkit"
	"glossarysync/internal/modkit/repokit"
	"glossarysync/internal/platform/config"
	"glossarysync/internal/services/glossary/adapter"
	"glossarysync/internal/services/glossary/domain"
	"glossarysync/internal/services/glossary/repo"
	"glossarysync/internal/services/glossary/service"
)

// Ports defines the glossary module ports
type Ports struct {
	Sync domain.SyncPort
}

// Module implements the glossary module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

type secretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// newSecrets is swapped in tests to avoid the AWS default chain
var newSecrets = func(ctx context.Context) (secretResolver, error) { return secrets.NewFromEnv(ctx) }

// New validates opts, acquires a bearer token and wires the sync service
// the token is fetched once here and held by the catalog client for the module lifetime
func New(ctx context.Context, deps modkit.Deps, opts Options) (*Module, error) {
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: opts.HTTPTimeout}

	secret := opts.ClientSecret
	if secret == "" {
		r, err := newSecrets(ctx)
		if err != nil {
			return nil, err
		}
		if secret, err = r.Resolve(ctx, opts.ClientSecretRef); err != nil {
			return nil, err
		}
	}

	prov, err := identity.New(identity.Options{
		AuthorityURL: opts.AuthorityURL,
		TenantID:     opts.TenantID,
		ClientID:     opts.ClientID,
		ClientSecret: secret,
		Resource:     opts.Resource,
		HTTPClient:   hc,
	})
	if err != nil {
		return nil, err
	}
	deps.Log.Info().Str("tenant_id", opts.TenantID).Msg("glossary: requesting purview token")
	token, err := prov.Token(ctx)
	if err != nil {
		return nil, err
	}

	cli, err := purview.NewClient(purview.Options{
		BaseURL:    opts.CatalogURL,
		TenantID:   opts.TenantID,
		Token:      token,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, err
	}

	svc := service.New(
		adapter.NewCatalog(cli),
		termsource.New(),
		NewLedger(ctx, deps),
		deps.Log,
		service.Config{DryRun: opts.DryRun, TenantID: opts.TenantID, Source: opts.Source},
	)

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Sync: svc}
	return m, nil
}

// NewLedger returns the postgres ledger when deps carry a pool, else a no-op
// a schema failure disables the ledger rather than the sync
func NewLedger(ctx context.Context, deps modkit.Deps) domain.Ledger {
	if !deps.HasPG() {
		return service.NopLedger()
	}
	binder := repo.NewPG()
	if err := repokit.MustBind(binder, deps.PG).EnsureSchema(ctx); err != nil {
		deps.Log.Warn().Err(err).Msg("ledger: schema unavailable, runs will not be recorded")
		return service.NopLedger()
	}
	return service.NewLedger(deps.PG, binder, deps.Log)
}

// Name returns the module name
func (m *Module) Name() string { return "glossary" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Options returns the settings the module was built with
func (m *Module) Options() Options { return m.opts }
