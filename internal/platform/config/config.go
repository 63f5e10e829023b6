// Package config handles application configuration via environment variables and YAML files
package config

import (
	"strconv"
	"strings"
	"time"

	"glossarysync/internal/platform/config/raw"
	"glossarysync/internal/platform/logger"
)

// Conf is a namespaced view over environment variables (e.g., "PURVIEW_", "LEDGER_PG_")
// Use New() for global access, or Prefix("PURVIEW_") for module scopes.
type Conf struct{ r raw.Conf }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{r: raw.New()} }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("GLOSSARY_")
func (c Conf) Prefix(p string) Conf { return Conf{r: c.r.Prefix(p)} }

// Key composes the fully-qualified env var name
func (c Conf) Key(k string) string { return c.r.Key(k) }

// Lookup returns the trimmed value and whether it was set
func (c Conf) Lookup(key string) (string, bool) { return c.r.Lookup(key) }

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	v, ok := c.r.Lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string { return c.r.Get(key, def) }

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayDuration returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayCSV returns a slice of strings from a comma-separated env var; def if missing/empty
func (c Conf) MayCSV(key string, def []string) []string {
	s, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	out := make([]string, 0, 4)
	for p := range strings.SplitSeq(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
