// Package scheduler defines the boundary the fork dispatcher uses to fan
// function invocations out across a cluster, and ships an in-memory
// reference implementation for tests and single-process deployments.
package scheduler

// Message is the wire shape a chained function invocation is carried in.
// This module reads and writes the OpenMP fields, and of the chaining
// fields sets only Success (on failed or finished child results). The
// other chaining fields (InputData, OutputData, ResultKey) exist so a
// scheduler implementation built on top of this shim can reuse one message
// type for both OpenMP and plain function chaining.
type Message struct {
	ID       string
	User     string
	Function string

	// OpenMP fork fields.
	SnapshotKey     string
	SnapshotSize    uint32
	FuncPtr         uint32
	OMPThreadNum    int
	OMPNumThreads   int
	OMPDepth        int
	OMPFunctionArgs []uint32
	ScheduledHost   string
	ReturnValue     int32

	// Non-OpenMP chaining fields; only Success is set by this module.
	InputData  []byte
	OutputData []byte
	ResultKey  string
	Success    bool
}
