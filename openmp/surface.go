// Package openmp wires the OpenMP intrinsic surface into a
// wazero.Runtime, the same role wazero's imports/emscripten package plays
// for Emscripten's special "env" imports.
package openmp

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"

	"github.com/faasmp/ompshim/internal/config"
	intomp "github.com/faasmp/ompshim/internal/openmp"
	"github.com/faasmp/ompshim/internal/scheduler"
	"github.com/faasmp/ompshim/internal/state"
)

// Surface owns the per-invocation Level tree, dispatches __kmpc_fork_call
// to either the local team pool or the distributed dispatcher, and exports
// the whole OpenMP runtime ABI into a wazero "env" host module.
type Surface struct {
	cfg     config.Config
	log     *logrus.Entry
	metrics *intomp.Metrics

	sched scheduler.Scheduler
	state state.Service

	pool *intomp.LocalTeamPool
}

// NewSurface builds a Surface. reg may be nil to skip Prometheus
// registration (e.g. in tests).
func NewSurface(cfg config.Config, sched scheduler.Scheduler, stateSvc state.Service, reg prometheus.Registerer, log *logrus.Entry) *Surface {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	metrics := intomp.NewMetrics(reg)

	return &Surface{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		sched:   sched,
		state:   stateSvc,
		pool:    intomp.NewLocalTeamPool(metrics),
	}
}

// NewInvocationContext installs a fresh root Level and master ThreadState
// (thread 0 of a team of one) into ctx, to be used as the base context for
// one top-level function invocation before any OpenMP host function runs.
// user and function identify the invocation for any distributed fork it
// may later perform.
func (s *Surface) NewInvocationContext(ctx context.Context, user, function string) context.Context {
	root := intomp.NewRootLevel(s.cfg.DefaultNumThreads, user, function)
	ts := &intomp.ThreadState{ThisThreadNumber: 0, ThisLevel: root}
	return intomp.WithThreadState(ctx, ts)
}

// ThreadStateFromContext recovers the installed ThreadState, or ok=false
// if ctx carries none.
func ThreadStateFromContext(ctx context.Context) (threadNum int, level *intomp.Level, ok bool) {
	ts, ok := intomp.ThreadStateFromContext(ctx)
	if !ok {
		return 0, nil, false
	}
	return ts.ThisThreadNumber, ts.ThisLevel, true
}

// Instantiate builds and instantiates the "env" host module with the full
// OpenMP ABI, following the shape of imports/emscripten.Instantiate.
func (s *Surface) Instantiate(ctx context.Context, r wazero.Runtime) (wazero.CompiledModule, error) {
	builder := r.NewHostModuleBuilder("env")
	s.ExportFunctions(builder)
	compiled, err := builder.Compile(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig()); err != nil {
		return nil, err
	}
	return compiled, nil
}

func (s *Surface) chainedCallTimeout() time.Duration {
	if s.cfg.ChainedCallTimeout <= 0 {
		return 30 * time.Second
	}
	return s.cfg.ChainedCallTimeout
}
