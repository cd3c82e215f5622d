// Package config holds process-wide tunables for the OpenMP shim.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config is the set of knobs the shim reads at startup. There is no
// builder/options pattern here: unlike wazero's RuntimeConfig, which
// configures one of several possible engines, there is exactly one shape
// of this config, so a plain struct with env-backed defaults is enough.
type Config struct {
	// DefaultNumThreads is the implementation-default team size used when
	// neither wantedNumThreads nor pushedNumThreads is set.
	DefaultNumThreads int

	// ChainedCallTimeout bounds how long the distributed fork dispatcher
	// waits for each child invocation before counting it as a timeout
	// error.
	ChainedCallTimeout time.Duration

	// SnapshotKeyPrefix namespaces fork snapshot keys in the state
	// service.
	SnapshotKeyPrefix string
}

// FromEnv builds a Config from environment variables, falling back to
// sensible defaults when unset or unparsable.
func FromEnv() Config {
	cfg := Config{
		DefaultNumThreads:  runtime.NumCPU(),
		ChainedCallTimeout: 30 * time.Second,
		SnapshotKeyPrefix:  "fork",
	}

	if v := os.Getenv("OMPSHIM_DEFAULT_NUM_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultNumThreads = n
		}
	}

	if v := os.Getenv("OMPSHIM_CHAINED_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ChainedCallTimeout = d
		}
	}

	if v := os.Getenv("OMPSHIM_SNAPSHOT_KEY_PREFIX"); v != "" {
		cfg.SnapshotKeyPrefix = v
	}

	return cfg
}
