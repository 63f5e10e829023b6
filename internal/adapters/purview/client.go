// Package purview provides a REST client for the Purview unified catalog (data governance) API
package purview

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"
)

const (
	catalogHostSuffix = "-api.purview-service.microsoft.com"
	catalogPath       = "/datagovernance/catalog"
)

// Options configures the Client
type Options struct {
	// BaseURL overrides the tenant derived catalog url (mock catalogs, sovereign clouds)
	BaseURL  string
	TenantID string

	// Token is the bearer token held for the client lifetime; it is never refreshed
	Token string

	// Timeout of zero leaves the transport defaults in place
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a minimal catalog client; one request in flight at a time from the sync path
type Client struct {
	http  *http.Client
	base  string
	token string
	log   logger.Logger
	now   func() time.Time
}

// BaseURL derives the catalog root for a tenant
func BaseURL(tenantID string) string {
	return "https://" + tenantID + catalogHostSuffix + catalogPath
}

// NewClient validates o and builds a Client
func NewClient(o Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		if strings.TrimSpace(o.TenantID) == "" {
			return nil, perr.InvalidArgf("purview client needs a tenant id or base url")
		}
		base = BaseURL(o.TenantID)
	}
	if o.Token == "" {
		return nil, perr.Unauthorizedf("purview client needs a bearer token")
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http:  hc,
		base:  base,
		token: o.Token,
		log:   *logger.Named("purview"),
		now:   time.Now,
	}, nil
}

// Base returns the catalog root the client talks to
func (c *Client) Base() string { return c.base }

// Do issues one request with auth headers and returns the raw response
// path is joined to the base unless it is already absolute (nextLink)
// an absolute path must share the base scheme and host so the token stays with the catalog
// only transport failures and foreign hosts are errors here; callers own status handling
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	target := path
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if !c.sameOrigin(path) {
			return nil, perr.Upstreamf("purview refused to follow %s outside %s", path, c.base)
		}
	} else {
		target = c.base + path
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "purview encode %s %s body", method, path)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "purview new request failed")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "purview %s %s failed", method, path)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("purview http response")
	return resp, nil
}

// call runs Do, applies the status policy, and decodes a 2xx body into out when out is non-nil
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	resp, err := c.Do(ctx, method, path, in)
	if err != nil {
		return perr.WithOp(err, op)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("purview close body failed")
		}
	}()

	if err := checkStatus(resp, op); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeJSON, "purview decode %s response", op), op)
	}
	return nil
}

// sameOrigin reports whether raw points at the catalog host the client was built for
func (c *Client) sameOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	b, err := url.Parse(c.base)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, b.Scheme) && strings.EqualFold(u.Host, b.Host)
}
