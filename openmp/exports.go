package openmp

import "github.com/tetratelabs/wazero"

// ExportFunctions registers the OpenMP guest-facing ABI onto builder, one
// NewFunctionBuilder/WithFunc/Export chain per symbol, the same shape
// wazero's imports/emscripten package uses for its own "env" module.
func (s *Surface) ExportFunctions(builder wazero.HostModuleBuilder) {
	builder.NewFunctionBuilder().WithFunc(s.ompGetThreadNum).Export("omp_get_thread_num")
	builder.NewFunctionBuilder().WithFunc(s.ompGetNumThreads).Export("omp_get_num_threads")
	builder.NewFunctionBuilder().WithFunc(s.ompGetMaxThreads).Export("omp_get_max_threads")
	builder.NewFunctionBuilder().WithFunc(s.ompGetLevel).Export("omp_get_level")
	builder.NewFunctionBuilder().WithFunc(s.ompGetMaxActiveLevels).Export("omp_get_max_active_levels")
	builder.NewFunctionBuilder().WithFunc(s.ompSetMaxActiveLevels).Export("omp_set_max_active_levels")
	builder.NewFunctionBuilder().WithFunc(s.ompSetNumThreads).Export("omp_set_num_threads")
	builder.NewFunctionBuilder().WithFunc(s.ompGetNumDevices).Export("omp_get_num_devices")
	builder.NewFunctionBuilder().WithFunc(s.ompSetDefaultDevice).Export("omp_set_default_device")

	builder.NewFunctionBuilder().WithFunc(s.kmpcPushNumThreads).Export("__kmpc_push_num_threads")
	builder.NewFunctionBuilder().WithFunc(s.kmpcGlobalThreadNum).Export("__kmpc_global_thread_num")
	builder.NewFunctionBuilder().WithFunc(s.kmpcForkCall).Export("__kmpc_fork_call")

	builder.NewFunctionBuilder().WithFunc(s.kmpcBarrier).Export("__kmpc_barrier")
	builder.NewFunctionBuilder().WithFunc(s.kmpcCritical).Export("__kmpc_critical")
	builder.NewFunctionBuilder().WithFunc(s.kmpcEndCritical).Export("__kmpc_end_critical")
	builder.NewFunctionBuilder().WithFunc(s.kmpcFlush).Export("__kmpc_flush")
	builder.NewFunctionBuilder().WithFunc(s.kmpcMaster).Export("__kmpc_master")
	builder.NewFunctionBuilder().WithFunc(s.kmpcEndMaster).Export("__kmpc_end_master")
	builder.NewFunctionBuilder().WithFunc(s.kmpcSingle).Export("__kmpc_single")
	builder.NewFunctionBuilder().WithFunc(s.kmpcEndSingle).Export("__kmpc_end_single")

	builder.NewFunctionBuilder().WithFunc(s.kmpcForStaticInit4).Export("__kmpc_for_static_init_4")
	builder.NewFunctionBuilder().WithFunc(s.kmpcForStaticInit8).Export("__kmpc_for_static_init_8")
	builder.NewFunctionBuilder().WithFunc(s.kmpcForStaticFini).Export("__kmpc_for_static_fini")

	builder.NewFunctionBuilder().WithFunc(s.kmpcReduce).Export("__kmpc_reduce")
	builder.NewFunctionBuilder().WithFunc(s.kmpcReduce).Export("__kmpc_reduce_nowait")
	builder.NewFunctionBuilder().WithFunc(s.kmpcEndReduce).Export("__kmpc_end_reduce")
	builder.NewFunctionBuilder().WithFunc(s.kmpcEndReduce).Export("__kmpc_end_reduce_nowait")

	builder.NewFunctionBuilder().WithFunc(s.faasmpIncrby).Export("__faasmp_incrby")
	builder.NewFunctionBuilder().WithFunc(s.faasmpGetLong).Export("__faasmp_getLong")
}
