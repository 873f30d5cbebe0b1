// Package recorder implements the deterministic recorder (C3): it translates
// authoritative settlement, time-fee, adjustment, and bonus descriptors into
// entry batches, performing no arithmetic of its own beyond collecting and
// signing the inputs it is given, and guards settlement/time-fee recording
// with idempotency.
package recorder

import (
	"sync"

	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// Config configures recorder behaviour; see external interfaces.
type Config struct {
	EnableDuplicateDetection bool
	DefaultPlatformID        string
}

// DefaultConfig returns the spec-mandated defaults {true, "platform"}.
func DefaultConfig() Config {
	return Config{EnableDuplicateDetection: true, DefaultPlatformID: "platform"}
}

// Recorder owns two deduplication sets for its lifetime and holds a writer
// reference to the store it records into.
type Recorder struct {
	mu sync.Mutex

	cfg Config
	st  *store.Store

	recordedSettlements map[string]struct{}
	recordedTimeFees    map[string]struct{}
}

func New(st *store.Store, cfg Config) *Recorder {
	return &Recorder{
		cfg:                 cfg,
		st:                  st,
		recordedSettlements: make(map[string]struct{}),
		recordedTimeFees:    make(map[string]struct{}),
	}
}

// ExportDedupKeys returns every settlement/time-fee dedup key the recorder
// has observed so far, for an adapter to persist across a restart.
func (r *Recorder) ExportDedupKeys() (settlements, timeFees []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.recordedSettlements {
		settlements = append(settlements, k)
	}
	for k := range r.recordedTimeFees {
		timeFees = append(timeFees, k)
	}
	return settlements, timeFees
}

// ImportDedupKeys seeds the recorder's dedup sets from a prior run's
// persisted keys. Callers restoring from a snapshot must import before the
// recorder observes any new settlement/time-fee calls.
func (r *Recorder) ImportDedupKeys(settlements, timeFees []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range settlements {
		r.recordedSettlements[k] = struct{}{}
	}
	for _, k := range timeFees {
		r.recordedTimeFees[k] = struct{}{}
	}
}

// Result is the outcome of a dedup-checked recorder call (settlement or
// time-fee). A duplicate call never touches the store: Batch/Entries are
// zero-valued and IsDuplicate is set instead.
type Result struct {
	Success     bool
	IsDuplicate bool
	Batch       ledger.Batch
	Entries     []ledger.Entry
	Err         error
}
