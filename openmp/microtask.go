package openmp

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental/table"

	intomp "github.com/faasmp/ompshim/internal/openmp"
)

// resolveMicrotask resolves the guest function table entry at tableOffset
// into an internal/openmp.Microtask. The microtask ABI is two or more i32
// arguments (thread id, argc, then one i32 pointer per shared variable)
// returning a single i32 error code.
func resolveMicrotask(mod api.Module, tableOffset uint32, argc int) (intomp.Microtask, error) {
	paramTypes := make([]api.ValueType, 2+argc)
	for i := range paramTypes {
		paramTypes[i] = api.ValueTypeI32
	}
	resultTypes := []api.ValueType{api.ValueTypeI32}

	fn := table.LookupFunction(mod, 0, tableOffset, paramTypes, resultTypes)

	return func(ctx context.Context, threadNum int, args []uint32) (int32, error) {
		callArgs := make([]uint64, 2+len(args))
		callArgs[0] = uint64(uint32(threadNum))
		callArgs[1] = uint64(uint32(len(args)))
		for i, a := range args {
			callArgs[2+i] = uint64(a)
		}

		results, err := fn.Call(ctx, callArgs...)
		if err != nil {
			return 0, fmt.Errorf("openmp: invoking microtask: %w", err)
		}
		if len(results) == 0 {
			return 0, nil
		}
		return int32(uint32(results[0])), nil
	}, nil
}
