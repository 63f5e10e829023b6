// Package modkit provides module wiring and core deps
package modkit

import (
	"glossarysync/internal/modkit/repokit"
	"glossarysync/internal/platform/config"
	"glossarysync/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// PG is nil when the run ledger is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// HasPG reports whether a postgres seam was wired
func (d Deps) HasPG() bool { return d.PG != nil }
