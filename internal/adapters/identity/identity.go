// Package identity acquires client-credential bearer tokens from the Microsoft identity platform
package identity

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultAuthority is the public cloud login host
	DefaultAuthority = "https://login.microsoftonline.com"
	// DefaultResource is the audience the catalog expects
	DefaultResource = "https://purview.azure.net"
)

// Options configures a Provider
type Options struct {
	AuthorityURL string
	TenantID     string
	ClientID     string
	ClientSecret string
	Resource     string

	// HTTPClient is used for the token exchange when set
	HTTPClient *http.Client
}

// Provider exchanges client credentials for a bearer token
// the token is fetched once per call and never cached or refreshed
type Provider struct {
	cfg  clientcredentials.Config
	http *http.Client
	log  logger.Logger
}

// TokenURL builds the v1 token endpoint for a tenant
func TokenURL(authority, tenantID string) string {
	return strings.TrimRight(authority, "/") + "/" + url.PathEscape(tenantID) + "/oauth2/token"
}

// New validates o and builds a Provider
func New(o Options) (*Provider, error) {
	switch {
	case o.TenantID == "":
		return nil, perr.WithField(perr.InvalidArgf("identity: tenant id is required"), "tenant_id")
	case o.ClientID == "":
		return nil, perr.WithField(perr.InvalidArgf("identity: client id is required"), "client_id")
	case o.ClientSecret == "":
		return nil, perr.WithField(perr.InvalidArgf("identity: client secret is required"), "client_secret")
	}
	if o.AuthorityURL == "" {
		o.AuthorityURL = DefaultAuthority
	}
	if o.Resource == "" {
		o.Resource = DefaultResource
	}
	return &Provider{
		cfg: clientcredentials.Config{
			ClientID:       o.ClientID,
			ClientSecret:   o.ClientSecret,
			TokenURL:       TokenURL(o.AuthorityURL, o.TenantID),
			EndpointParams: url.Values{"resource": {o.Resource}},
			AuthStyle:      oauth2.AuthStyleInParams,
		},
		http: o.HTTPClient,
		log:  *logger.Named("identity"),
	}, nil
}

// Token performs the exchange and returns the access token
// every failure, including an unreachable endpoint, is an auth failure
func (p *Provider) Token(ctx context.Context) (string, error) {
	if p.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	}
	p.log.Debug().Str("token_url", p.cfg.TokenURL).Msg("requesting client credentials token")

	tok, err := p.cfg.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			code := re.ErrorCode
			if code == "" && re.Response != nil {
				code = re.Response.Status
			}
			return "", perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnauthorized, "token endpoint rejected credentials (%s)", code), "token")
		}
		return "", perr.WithOp(perr.Wrap(err, perr.ErrorCodeUnauthorized, "token request failed"), "token")
	}
	if tok.AccessToken == "" {
		return "", perr.WithOp(perr.Unauthorizedf("token endpoint returned an empty access_token"), "token")
	}
	p.log.Info().Msg("obtained catalog token")
	return tok.AccessToken, nil
}
