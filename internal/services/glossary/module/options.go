package module

import (
	"time"

	"glossarysync/internal/adapters/identity"
	"glossarysync/internal/platform/config"
)

// DefaultSource is the workbook read when no source is configured
const DefaultSource = "Enterprise-Glossary-Terms.xlsx"

// Options holds the glossary module settings; it is also the YAML config document
type Options struct {
	TenantID        string        `yaml:"tenant_id" validate:"required,dns_label"`
	ClientID        string        `yaml:"client_id" validate:"required"`
	ClientSecret    string        `yaml:"client_secret" validate:"required_without=ClientSecretRef"`
	ClientSecretRef string        `yaml:"client_secret_ref"`
	Resource        string        `yaml:"resource" validate:"required,url"`
	AuthorityURL    string        `yaml:"authority_url" validate:"required,url"`
	CatalogURL      string        `yaml:"catalog_url" validate:"omitempty,url"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" validate:"gte=0"`

	Source string `yaml:"source" validate:"required"`
	Sheet  string `yaml:"sheet"`
	DryRun bool   `yaml:"dry_run"`

	// LedgerDBURL enables the postgres run ledger when set
	LedgerDBURL string `yaml:"ledger_dburl"`
}

// Defaults returns the built-in settings, the lowest precedence layer
func Defaults() Options {
	return Options{
		Resource:     identity.DefaultResource,
		AuthorityURL: identity.DefaultAuthority,
		Source:       DefaultSource,
	}
}

// FromConfig overlays PURVIEW_*, GLOSSARY_* and LEDGER_PG_DBURL onto base
// unset variables keep the base value
func FromConfig(cfg config.Conf, base Options) Options {
	pv := cfg.Prefix("PURVIEW_")
	gl := cfg.Prefix("GLOSSARY_")
	return Options{
		TenantID:        pv.MayString("TENANT_ID", base.TenantID),
		ClientID:        pv.MayString("CLIENT_ID", base.ClientID),
		ClientSecret:    pv.MayString("CLIENT_SECRET", base.ClientSecret),
		ClientSecretRef: pv.MayString("CLIENT_SECRET_REF", base.ClientSecretRef),
		Resource:        pv.MayString("RESOURCE", base.Resource),
		AuthorityURL:    pv.MayString("AUTHORITY_URL", base.AuthorityURL),
		CatalogURL:      pv.MayString("CATALOG_URL", base.CatalogURL),
		HTTPTimeout:     pv.MayDuration("HTTP_TIMEOUT", base.HTTPTimeout),
		Source:          gl.MayString("SOURCE", base.Source),
		Sheet:           gl.MayString("SHEET", base.Sheet),
		DryRun:          gl.MayBool("DRY_RUN", base.DryRun),
		LedgerDBURL:     cfg.Prefix("LEDGER_PG_").MayString("DBURL", base.LedgerDBURL),
	}
}
