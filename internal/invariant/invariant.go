// Package invariant implements the invariant checker (C5): the five
// named invariants I1-I5 over a store's entries and batches, returned as
// structured violations rather than raised errors. It holds a read-only
// reference to the store, grounded on the same verify-the-chain shape as
// internal/store's VerifyIntegrity, generalised across all five checks and
// reported as the spec's violation record rather than a single Go error.
package invariant

import (
	"github.com/rawblock/feltledger/pkg/ledger"
)

// Id names one of the five invariants.
type Id string

const (
	NonNegativeBalance   Id = "NON_NEGATIVE_BALANCE"
	SystemConservation   Id = "SYSTEM_CONSERVATION"
	DeterministicReplay  Id = "DETERMINISTIC_REPLAY"
	AppendOnlyIntegrity  Id = "APPEND_ONLY_INTEGRITY"
	AttributionImmutable Id = "ATTRIBUTION_IMMUTABILITY"
)

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityError    Severity = "ERROR"
	SeverityWarning  Severity = "WARNING"
)

func severityOf(id Id) Severity {
	switch id {
	case SystemConservation, DeterministicReplay, AppendOnlyIntegrity:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// Violation is the structured record every failed check returns; it is data,
// never an error the checker raises.
type Violation struct {
	Invariant   Id
	Severity    Severity
	Message     string
	Context     map[string]any
	SourceRef   string
	DetectedAt  int64
	ViolationID ledger.ViolationId
}

func newViolation(id Id, message, sourceRef string, nowMillis int64, context map[string]any) Violation {
	return Violation{
		Invariant:   id,
		Severity:    severityOf(id),
		Message:     message,
		Context:     context,
		SourceRef:   sourceRef,
		DetectedAt:  nowMillis,
		ViolationID: ledger.NewViolationID(nowMillis),
	}
}

// Result is the outcome of one invariant check: passed if Violation is the
// zero value.
type Result struct {
	Invariant Id
	Passed    bool
	Violation *Violation
}

// storeReader is the subset of *store.Store the checker needs.
type storeReader interface {
	GetAllEntries() []ledger.Entry
	GetAllBatches() []ledger.Batch
	GetEntriesByBatch(id ledger.LedgerBatchId) []ledger.Entry
}

// Checker holds a read-only reference to the store.
type Checker struct {
	st storeReader
}

func New(st storeReader) *Checker { return &Checker{st: st} }
