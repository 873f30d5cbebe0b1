package ledger

import "errors"

// Sentinel errors shared across the core. Each layer returns or wraps these
// directly instead of inventing parallel values for the same condition, so a
// caller can errors.Is() against one shared vocabulary.
var (
	ErrInvalidDelta     = errors.New("ledger: delta must be an integer")
	ErrCapacityExceeded = errors.New("ledger: store is at max_entries capacity")
	ErrEmptyBatch       = errors.New("ledger: batch must contain at least one input")
	ErrEntryNotFound    = errors.New("ledger: entry not found")
	ErrBatchNotFound    = errors.New("ledger: batch not found")
	ErrInvalidSource    = errors.New("ledger: source is not one of the recognised kinds")
	ErrUnknownPartyType = errors.New("ledger: party type is not one of the recognised kinds")
)
