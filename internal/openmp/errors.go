package openmp

import "github.com/pkg/errors"

// Sentinel errors for the fatal conditions that trap the guest.
// Recoverable conditions (invalid arguments from the guest) are logged and
// the call is clamped or skipped rather than returned as an error.
var (
	// ErrUnimplementedSchedule is raised when the guest requests a loop
	// schedule the distributor does not handle.
	ErrUnimplementedSchedule = errors.New("openmp: unimplemented loop schedule")

	// ErrUnsupportedReduction is raised when a Level's reduction method
	// resolves to notDefined.
	ErrUnsupportedReduction = errors.New("openmp: unsupported reduction method")

	errMemoryReadOutOfRange  = errors.New("openmp: guest memory read out of range")
	errMemoryWriteOutOfRange = errors.New("openmp: guest memory write out of range")
)

// TeamExecutionFailed reports that n team members returned a nonzero
// error code from a parallel region.
type TeamExecutionFailed struct {
	N int
}

func (e *TeamExecutionFailed) Error() string {
	return errors.Errorf("openmp: %d team members exited with errors", e.N).Error()
}

// NewTeamExecutionFailed builds a TeamExecutionFailed for n failing
// members, or nil if n is zero.
func NewTeamExecutionFailed(n int) error {
	if n == 0 {
		return nil
	}
	return &TeamExecutionFailed{N: n}
}
