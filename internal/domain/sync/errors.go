package sync

import "errors"

// Error taxonomy for synchronization runs. Source-level failures are absorbed
// into per-identifier outcomes; only configuration and persistence errors are
// fatal to a run.
var (
	// ErrSourceUnavailable marks a transport, parse, or timeout failure for a
	// whole batch call against one source.
	ErrSourceUnavailable = errors.New("sync: source unavailable")

	// ErrInvalidConfiguration marks a run that cannot start, e.g. no sources
	// configured or a missing sales order tag.
	ErrInvalidConfiguration = errors.New("sync: invalid configuration")

	// ErrPersistenceFailure marks a failed catalog batch update. No partial
	// field updates are assumed committed.
	ErrPersistenceFailure = errors.New("sync: persistence failure")
)
