package main

import (
	"context"

	perr "glossarysync/internal/platform/errors"
	"glossarysync/internal/services/glossary/domain"
	glossarymod "glossarysync/internal/services/glossary/module"
	"glossarysync/internal/version"

	"github.com/spf13/cobra"
)

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Sync spreadsheet glossary terms into the Purview unified catalog",
		Long: `glossarysync reads business glossary terms from an xlsx or csv workbook
(local or s3://) and creates each one in its Purview governance domain,
skipping terms that already exist there.

Settings come from defaults, then --config YAML, then PURVIEW_*, GLOSSARY_*
and LEDGER_PG_DBURL environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.logger()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (console, json)")

	cmd.AddCommand(a.uploadCmd(), a.termsCmd(), a.domainsCmd(), a.runsCmd(), a.versionCmd())
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var (
		file, sheet string
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Create every term from the workbook that the catalog does not have yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var source, sheetName string
			mutate := func(o *glossarymod.Options) {
				if cmd.Flags().Changed("file") {
					o.Source = file
				}
				if cmd.Flags().Changed("sheet") {
					o.Sheet = sheet
				}
				if cmd.Flags().Changed("dry-run") {
					o.DryRun = dryRun
				}
				source, sheetName = o.Source, o.Sheet
			}
			return a.withSync(cmd.Context(), mutate, func(s domain.SyncPort) error {
				rep, err := s.UploadFrom(cmd.Context(), source, sheetName)
				if err != nil {
					return err
				}
				return a.printJSON(rep)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "workbook path or s3://bucket/key (default from config, then "+glossarymod.DefaultSource+")")
	f.StringVar(&sheet, "sheet", "", "worksheet name (default first sheet)")
	f.BoolVar(&dryRun, "dry-run", false, "resolve and check every term without creating any")
	return cmd
}

func (a *app) termsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "terms", Short: "Inspect and manage glossary terms"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every glossary term",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withSync(cmd.Context(), nil, func(s domain.SyncPort) error {
					ts, err := s.ListTerms(cmd.Context())
					if err != nil {
						return err
					}
					return a.printJSON(ts)
				})
			},
		},
		a.termsGetCmd(),
		a.termsCreateCmd(),
		a.termsDeleteCmd(),
		a.termsDeleteAllCmd(),
	)
	return cmd
}

func (a *app) termsGetCmd() *cobra.Command {
	var sel domain.TermSelector
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a term by --id or every term with an exact --name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// checked before any token request
			if (sel.ID == "") == (sel.Name == "") {
				return perr.InvalidArgf("exactly one of --id or --name is required")
			}
			return a.withSync(cmd.Context(), nil, func(s domain.SyncPort) error {
				ts, err := s.GetTerm(cmd.Context(), sel)
				if err != nil {
					return err
				}
				return a.printJSON(ts)
			})
		},
	}
	cmd.Flags().StringVar(&sel.ID, "id", "", "term id")
	cmd.Flags().StringVar(&sel.Name, "name", "", "term name (exact, case-sensitive)")
	return cmd
}

type createResult struct {
	Created bool         `json:"created"`
	Term    *domain.Term `json:"term,omitempty"`
}

func (a *app) termsCreateCmd() *cobra.Command {
	var (
		in     domain.TermInput
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one term unless it already exists in its domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mutate := func(o *glossarymod.Options) {
				if cmd.Flags().Changed("dry-run") {
					o.DryRun = dryRun
				}
			}
			return a.withSync(cmd.Context(), mutate, func(s domain.SyncPort) error {
				t, err := s.CreateTerm(cmd.Context(), in)
				if err != nil {
					return err
				}
				return a.printJSON(createResult{Created: t != nil, Term: t})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "term name")
	f.StringVar(&in.Description, "description", "", "term description")
	f.StringVar(&in.Status, "status", "Draft", "term status (Draft, Published)")
	f.StringVar(&in.Domain, "domain", "", "governance domain display name")
	f.BoolVar(&dryRun, "dry-run", false, "resolve and check without creating")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func (a *app) termsDeleteCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one term by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSync(cmd.Context(), nil, func(s domain.SyncPort) error {
				res, err := s.DeleteTerm(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.printJSON(res)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "term id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) termsDeleteAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every glossary term in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return perr.InvalidArgf("refusing to delete every glossary term without --yes")
			}
			return a.withSync(cmd.Context(), nil, func(s domain.SyncPort) error {
				rep, err := s.DeleteAllTerms(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(rep)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every term")
	return cmd
}

func (a *app) domainsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "domains", Short: "Inspect governance domains"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List governance domains as name to id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSync(cmd.Context(), nil, func(s domain.SyncPort) error {
				idx, err := s.ListDomains(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(idx)
			})
		},
	})
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{Use: "runs", Short: "Inspect the upload run ledger"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent upload runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listRuns(cmd.Context(), limit)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")
	cmd.AddCommand(list)
	return cmd
}

// listRuns needs only the ledger, so no token is requested
func (a *app) listRuns(ctx context.Context, limit int) error {
	o, err := a.options()
	if err != nil {
		return err
	}
	if o.LedgerDBURL == "" {
		return perr.WithField(perr.InvalidArgf("run ledger is disabled; set LEDGER_PG_DBURL"), "ledger_dburl")
	}
	st, err := a.openStore(ctx, o)
	if err != nil {
		return err
	}
	defer a.closeStore(ctx, st)

	runs, err := glossarymod.NewLedger(ctx, a.deps(st)).Runs(ctx, limit)
	if err != nil {
		return err
	}
	return a.printJSON(runs)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printJSON(version.Info(appName))
		},
	}
}
