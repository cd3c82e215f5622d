package openmp

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero/api"
)

// ompGetThreadNum implements omp_get_thread_num: the thread number, within
// its team, of the thread executing the function.
func (s *Surface) ompGetThreadNum(ctx context.Context, _ api.Module) int32 {
	threadNum, _, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 0
	}
	s.log.Debug("omp_get_thread_num")
	return int32(threadNum)
}

// ompGetNumThreads implements omp_get_num_threads: the current team
// size.
func (s *Surface) ompGetNumThreads(ctx context.Context, _ api.Module) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 1
	}
	s.log.Debug("omp_get_num_threads")
	return int32(level.NumThreads)
}

// ompGetMaxThreads implements omp_get_max_threads: the team size the next
// fork would produce.
func (s *Surface) ompGetMaxThreads(ctx context.Context, _ api.Module) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 1
	}
	s.log.Debug("omp_get_max_threads")
	return int32(level.NextLevelNumThreads(s.cfg.DefaultNumThreads))
}

// ompGetLevel implements omp_get_level: the current nesting depth.
func (s *Surface) ompGetLevel(ctx context.Context, _ api.Module) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 0
	}
	s.log.Debug("omp_get_level")
	return int32(level.Depth)
}

// ompGetMaxActiveLevels implements omp_get_max_active_levels.
func (s *Surface) ompGetMaxActiveLevels(ctx context.Context, _ api.Module) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 0
	}
	s.log.Debug("omp_get_max_active_levels")
	return int32(level.MaxActiveLevel())
}

// ompSetMaxActiveLevels implements omp_set_max_active_levels: ignores
// negative input with a warning.
func (s *Surface) ompSetMaxActiveLevels(ctx context.Context, _ api.Module, level int32) {
	_, lvl, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	s.log.WithField("level", level).Debug("omp_set_max_active_levels")
	if !lvl.SetMaxActiveLevel(int(level)) {
		s.log.WithField("level", level).Warn("ignoring negative max active level")
	}
}

// ompSetNumThreads implements omp_set_num_threads: ignores non-positive
// input.
func (s *Surface) ompSetNumThreads(ctx context.Context, _ api.Module, numThreads int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	s.log.WithField("numThreads", numThreads).Debug("omp_set_num_threads")
	level.SetWantedNumThreads(int(numThreads))
}

// ompGetNumDevices implements omp_get_num_devices: returns the current
// userDefaultDevice value.
func (s *Surface) ompGetNumDevices(ctx context.Context, _ api.Module) int32 {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 0
	}
	s.log.Debug("omp_get_num_devices")
	return int32(level.UserDefaultDevice())
}

// ompSetDefaultDevice implements omp_set_default_device: clamps |n| <= 1,
// warns and ignores otherwise.
func (s *Surface) ompSetDefaultDevice(ctx context.Context, _ api.Module, device int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	s.log.WithField("device", device).Debug("omp_set_default_device")
	if !level.SetUserDefaultDevice(int(device)) {
		s.log.WithField("device", device).Warn("default device index out of range, ignoring")
	}
}

// kmpcPushNumThreads implements __kmpc_push_num_threads: one-shot, ignores
// non-positive input.
func (s *Surface) kmpcPushNumThreads(ctx context.Context, _ api.Module, loc, globalTid, numThreads int32) {
	_, level, ok := ThreadStateFromContext(ctx)
	if !ok {
		return
	}
	s.log.WithFields(logrus.Fields{"loc": loc, "gtid": globalTid, "numThreads": numThreads}).
		Debug("__kmpc_push_num_threads")
	level.PushNumThreads(int(numThreads))
}

// kmpcGlobalThreadNum implements __kmpc_global_thread_num. Known
// limitation: this returns the team-local thread number even in nested
// regions, which is not globally unique the way real OpenMP global thread
// IDs are. Preserved intentionally rather than fixed.
func (s *Surface) kmpcGlobalThreadNum(ctx context.Context, _ api.Module, loc int32) int32 {
	threadNum, _, ok := ThreadStateFromContext(ctx)
	if !ok {
		return 0
	}
	s.log.WithField("loc", loc).Debug("__kmpc_global_thread_num")
	return int32(threadNum)
}
