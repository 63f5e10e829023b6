// Command glossarysync pushes spreadsheet glossary terms into the Purview unified catalog
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	perr "glossarysync/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit status
// every failure takes the same path: one error log line and status 1
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		log := a.logger()
		ev := log.Error().Err(err).Str("code", perr.CodeOf(err).String())
		if e, ok := perr.As(err); ok {
			if e.Field() != "" {
				ev = ev.Str("field", e.Field())
			}
			if e.Op() != "" {
				ev = ev.Str("op", e.Op())
			}
		}
		ev.Msg("glossarysync failed")
		return 1
	}
	return 0
}
