// Package runconfig loads the demo CLI's run options from a JSON file with
// EXPLORE_*-prefixed environment variable overrides, grounded on the
// teacher's internal/config package. Nothing in the core (configuration,
// explorer, trace) packages imports runconfig — it exists purely for
// cmd/explore-demo.
package runconfig

import (
	"encoding/json"
	"os"
	"strconv"
)

// Options controls one demo run of the explorer.
type Options struct {
	// DepthLimit bounds the search; a negative value means unlimited.
	DepthLimit int `json:"depth_limit"`

	// Algorithm selects which bundled example algorithm to run:
	// "leader-election" or "paxos".
	Algorithm string `json:"algorithm"`

	// TraceDB, if non-empty, is a SQLite file path the demo CLI persists
	// run summaries and traces to via the storage package.
	TraceDB string `json:"trace_db"`
}

// Default returns the options used when no file or environment overrides
// are present.
func Default() *Options {
	return &Options{
		DepthLimit: -1,
		Algorithm:  "leader-election",
		TraceDB:    "",
	}
}

// Load returns Default() overridden by EXPLORE_*-prefixed environment
// variables.
func Load() (*Options, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads a JSON config file, merges it over Default(), then
// applies environment overrides on top (env wins, matching the teacher's
// config precedence: file overrides defaults, env overrides file).
func LoadFromFile(path string) (*Options, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Options) {
	if v := os.Getenv("EXPLORE_DEPTH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DepthLimit = n
		}
	}
	if v := os.Getenv("EXPLORE_ALGORITHM"); v != "" {
		cfg.Algorithm = v
	}
	if v := os.Getenv("EXPLORE_TRACE_DB"); v != "" {
		cfg.TraceDB = v
	}
}
