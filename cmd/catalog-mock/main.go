// Command catalog-mock serves an in-memory Purview catalog and token endpoint for local runs
//
//	catalog-mock --domain Finance=dom-123 --domain Sales=dom-999
//	PURVIEW_AUTHORITY_URL=http://127.0.0.1:8089 \
//	PURVIEW_CATALOG_URL=http://127.0.0.1:8089/datagovernance/catalog glossarysync upload
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"glossarysync/internal/adapters/purview/fake"
	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/platform/logger"
	phttp "glossarysync/internal/platform/net/http"
	"glossarysync/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

type settings struct {
	addr     string
	creds    fake.Credentials
	domains  []string
	forbid   []string
	pageSize int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := logger.Get()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		l.Error().Err(err).Str("code", perr.CodeOf(err).String()).Msg("catalog-mock failed")
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var s settings
	cmd := &cobra.Command{
		Use:           "catalog-mock",
		Short:         "Serve an in-memory Purview catalog and token endpoint",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := newServer(s)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.addr, "addr", "127.0.0.1:8089", "listen address")
	f.StringVar(&s.creds.ClientID, "client-id", "local-client", "client id the token endpoint accepts")
	f.StringVar(&s.creds.ClientSecret, "client-secret", "local-secret", "client secret the token endpoint accepts")
	f.StringVar(&s.creds.Token, "token", "", "access token to issue (default fake-token)")
	f.StringArrayVar(&s.domains, "domain", nil, "seed a governance domain as Name=id (repeatable)")
	f.StringSliceVar(&s.forbid, "forbid", nil, "answer 403 for these operations (create_term, list_terms, delete_term...)")
	f.IntVar(&s.pageSize, "page-size", 0, "split list responses into pages with nextLink")
	return cmd
}

// newServer seeds the catalog and mounts it behind a health probe
func newServer(s settings) (*phttp.Server, error) {
	cat := fake.New(s.creds)
	cat.PageSize = s.pageSize
	for _, d := range s.domains {
		name, id, err := parseDomain(d)
		if err != nil {
			return nil, err
		}
		cat.SeedDomain(name, id)
	}
	for _, op := range s.forbid {
		cat.Force(strings.TrimSpace(op), http.StatusForbidden)
	}

	log := logger.Named("catalog-mock")
	log.Info().Int("domains", len(s.domains)).Strs("forbid", s.forbid).Msg("catalog seeded")

	return phttp.NewServer(s.addr, func(m *chi.Mux) {
		m.Use(middleware.Heartbeat("/healthz"))
		m.Mount("/", cat.Handler())
	}), nil
}

// parseDomain splits Name=id; the name may contain '=' but the id may not
func parseDomain(v string) (name, id string, err error) {
	i := strings.LastIndexByte(v, '=')
	if i <= 0 || i == len(v)-1 {
		return "", "", perr.WithField(perr.InvalidArgf("--domain %q must look like Name=id", v), "domain")
	}
	return v[:i], v[i+1:], nil
}
