package openmp

// scheduleKind mirrors the subset of the LLVM OpenMP runtime's sched_type
// enum this distributor understands.
type scheduleKind int32

const (
	scheduleStaticChunked scheduleKind = 33
	scheduleStatic        scheduleKind = 34
)

// signedLoopVar constrains StaticLoopInit to the two loop-index widths
// OpenMP's ABI uses (__kmpc_for_static_init_4 / _8).
type signedLoopVar interface {
	~int32 | ~int64
}

// StaticLoopResult carries the rewritten (lower, upper, stride, lastIter)
// quadruple for one thread.
type StaticLoopResult[T signedLoopVar] struct {
	Lower    T
	Upper    T
	Stride   T
	LastIter bool
}

// StaticLoopInit computes one thread's sub-range of a parallel loop under
// a static or static-chunked schedule. It is a pure
// function: all inputs are values, all outputs are returned, so the
// caller (IntrinsicSurface) owns marshalling to and from guest memory.
//
// threadNum and numThreads come from the calling thread's ThreadState.
func StaticLoopInit[T signedLoopVar](schedule int32, threadNum, numThreads int, lower, upper, incr, chunk T) (StaticLoopResult[T], error) {
	if numThreads == 1 {
		var stride T
		if incr > 0 {
			stride = upper - lower + 1
		} else {
			stride = -(lower - upper + 1)
		}
		return StaticLoopResult[T]{Lower: lower, Upper: upper, Stride: stride, LastIter: true}, nil
	}

	tid := uint64(threadNum)
	n := uint64(numThreads)

	var tripCount uint64
	switch {
	case incr == 1:
		tripCount = uint64(upper - lower + 1)
	case incr == -1:
		tripCount = uint64(lower - upper + 1)
	case incr > 0:
		tripCount = uint64((upper-lower)/incr) + 1
	default:
		tripCount = uint64((lower-upper)/(-incr)) + 1
	}

	switch scheduleKind(schedule) {
	case scheduleStaticChunked:
		if chunk < 1 {
			chunk = 1
		}
		span := chunk * incr
		res := StaticLoopResult[T]{
			Stride: span * T(numThreads),
			Lower:  lower + span*T(threadNum),
		}
		res.Upper = res.Lower + span - incr
		res.LastIter = tid == ((tripCount-1)/uint64(chunk))%n
		return res, nil

	case scheduleStatic:
		var res StaticLoopResult[T]
		res.Stride = T(tripCount)

		if tripCount < n {
			if tid < tripCount {
				res.Upper = lower + T(threadNum)*incr
				res.Lower = res.Upper
			} else {
				res.Lower = upper + incr
				res.Upper = upper
			}
			res.LastIter = tid == tripCount-1
		} else {
			smallChunk := tripCount / n
			extras := tripCount % n
			offset := tid*smallChunk + minUint64(tid, extras)
			res.Lower = lower + T(offset)*incr
			iters := smallChunk
			if tid < extras {
				iters++
			}
			res.Upper = res.Lower + T(iters)*incr - incr
			res.LastIter = tid == n-1
		}
		return res, nil

	default:
		return StaticLoopResult[T]{}, ErrUnimplementedSchedule
	}
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
