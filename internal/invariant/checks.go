package invariant

import "github.com/rawblock/feltledger/pkg/ledger"

// CheckNonNegativeBalance is I1: the running per-party balance, keyed
// "<party_type>:<id>", must never go below zero along the append order.
func (c *Checker) CheckNonNegativeBalance(nowMillis int64) Result {
	balances := make(map[string]int64)
	for _, e := range c.st.GetAllEntries() {
		key := e.AffectedParty.Key()
		balances[key] += e.Delta
		if balances[key] < 0 {
			v := newViolation(NonNegativeBalance, "party balance went negative", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"party_id":          e.AffectedParty.ID(),
				"party_type":        e.AffectedParty.Type().String(),
				"resulting_balance": balances[key],
				"entry_id":          string(e.EntryID),
			})
			return Result{Invariant: NonNegativeBalance, Passed: false, Violation: &v}
		}
	}
	return Result{Invariant: NonNegativeBalance, Passed: true}
}

// CheckPartyBalance is the targeted helper check_party_balance(type, id): it
// runs the same scan as CheckNonNegativeBalance but restricted to one party.
func (c *Checker) CheckPartyBalance(partyType ledger.PartyType, id string, nowMillis int64) Result {
	var balance int64
	for _, e := range c.st.GetAllEntries() {
		if e.AffectedParty.Type() != partyType || e.AffectedParty.ID() != id {
			continue
		}
		balance += e.Delta
		if balance < 0 {
			v := newViolation(NonNegativeBalance, "party balance went negative", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"party_id":          id,
				"party_type":        partyType.String(),
				"resulting_balance": balance,
				"entry_id":          string(e.EntryID),
			})
			return Result{Invariant: NonNegativeBalance, Passed: false, Violation: &v}
		}
	}
	return Result{Invariant: NonNegativeBalance, Passed: true}
}

// CheckSystemConservation is I2: every batch whose source is in the
// conservation-expected set (TIME_FEE, via Source.ConservationExpected) must
// net to zero across its entries. HAND_SETTLEMENT batches are exempt by
// design — see spec §4.3's attribution-only note.
func (c *Checker) CheckSystemConservation(nowMillis int64) Result {
	for _, b := range c.st.GetAllBatches() {
		if !b.Source.ConservationExpected() {
			continue
		}
		if r := c.checkBatchConservation(b, nowMillis); !r.Passed {
			return r
		}
	}
	return Result{Invariant: SystemConservation, Passed: true}
}

func (c *Checker) checkBatchConservation(b ledger.Batch, nowMillis int64) Result {
	var sum int64
	for _, e := range c.st.GetEntriesByBatch(b.BatchID) {
		sum += e.Delta
	}
	if sum != 0 {
		v := newViolation(SystemConservation, "batch does not conserve to zero", "batch:"+string(b.BatchID), nowMillis, map[string]any{
			"batch_id":  string(b.BatchID),
			"source":    string(b.Source),
			"net_delta": sum,
		})
		return Result{Invariant: SystemConservation, Passed: false, Violation: &v}
	}
	return Result{Invariant: SystemConservation, Passed: true}
}

// CheckBatchConservation is the targeted helper check_batch_conservation(batch_id).
// It checks the named batch regardless of whether its source is normally
// conservation-expected, for ad-hoc inspection.
func (c *Checker) CheckBatchConservation(batchID ledger.LedgerBatchId, nowMillis int64) Result {
	b, ok := batchByID(c.st.GetAllBatches(), batchID)
	if !ok {
		v := newViolation(SystemConservation, "batch not found", "batch:"+string(batchID), nowMillis, map[string]any{"batch_id": string(batchID)})
		return Result{Invariant: SystemConservation, Passed: false, Violation: &v}
	}
	return c.checkBatchConservation(b, nowMillis)
}

func batchByID(batches []ledger.Batch, id ledger.LedgerBatchId) (ledger.Batch, bool) {
	for _, b := range batches {
		if b.BatchID == id {
			return b, true
		}
	}
	return ledger.Batch{}, false
}

// CheckHandConservation is the targeted helper check_hand_conservation:
// hand-settlement batches are attribution-only and exempt from I2, so this
// reports the raw net sum for diagnostics rather than treating a non-zero
// net as a violation.
func (c *Checker) CheckHandConservation(handID string) (netDelta int64, entryCount int) {
	for _, e := range c.st.GetAllEntries() {
		if e.HandID != handID {
			continue
		}
		netDelta += e.Delta
		entryCount++
	}
	return netDelta, entryCount
}

// CheckDeterministicReplay is I3: sequence numbers are contiguous 1-based,
// and timestamps are non-decreasing.
func (c *Checker) CheckDeterministicReplay(nowMillis int64) Result {
	entries := c.st.GetAllEntries()
	var lastTimestamp int64
	for i, e := range entries {
		wantSeq := int64(i + 1)
		if e.Sequence != wantSeq {
			v := newViolation(DeterministicReplay, "sequence is not contiguous", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id":      string(e.EntryID),
				"got_sequence":  e.Sequence,
				"want_sequence": wantSeq,
			})
			return Result{Invariant: DeterministicReplay, Passed: false, Violation: &v}
		}
		if i > 0 && e.Timestamp < lastTimestamp {
			v := newViolation(DeterministicReplay, "timestamp decreased", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id":       string(e.EntryID),
				"timestamp":      e.Timestamp,
				"prev_timestamp": lastTimestamp,
			})
			return Result{Invariant: DeterministicReplay, Passed: false, Violation: &v}
		}
		lastTimestamp = e.Timestamp
	}
	return Result{Invariant: DeterministicReplay, Passed: true}
}

// ReplayDiff is one field-level mismatch CompareForDeterminism found between
// two otherwise-aligned entries.
type ReplayDiff struct {
	Index int
	Field string
	Left  any
	Right any
}

// CompareForDeterminism is the on-demand structural comparison between two
// entry sequences, ignoring the generated fields entry_id, timestamp, and
// checksum (those vary run-to-run even when the attributable content is
// identical).
func CompareForDeterminism(seq1, seq2 []ledger.Entry) (matches bool, diffs []ReplayDiff) {
	n := len(seq1)
	if len(seq2) < n {
		n = len(seq2)
	}
	for i := 0; i < n; i++ {
		a, b := seq1[i], seq2[i]
		if a.Sequence != b.Sequence {
			diffs = append(diffs, ReplayDiff{i, "sequence", a.Sequence, b.Sequence})
		}
		if a.Source != b.Source {
			diffs = append(diffs, ReplayDiff{i, "source", a.Source, b.Source})
		}
		if a.Category != b.Category {
			diffs = append(diffs, ReplayDiff{i, "category", a.Category, b.Category})
		}
		if a.AffectedParty.Key() != b.AffectedParty.Key() {
			diffs = append(diffs, ReplayDiff{i, "affected_party", a.AffectedParty.Key(), b.AffectedParty.Key()})
		}
		if a.Delta != b.Delta {
			diffs = append(diffs, ReplayDiff{i, "delta", a.Delta, b.Delta})
		}
		if a.StateVersion != b.StateVersion {
			diffs = append(diffs, ReplayDiff{i, "state_version", a.StateVersion, b.StateVersion})
		}
	}
	if len(seq1) != len(seq2) {
		diffs = append(diffs, ReplayDiff{n, "length", len(seq1), len(seq2)})
	}
	return len(diffs) == 0, diffs
}

// CheckAppendOnlyIntegrity is I4: no two entries share a checksum, each
// entry's previous_hash equals the prior checksum, and each entry's own
// checksum recomputes — the same shape as store.VerifyIntegrity, exposed
// here as a structured violation.
func (c *Checker) CheckAppendOnlyIntegrity(nowMillis int64) Result {
	entries := c.st.GetAllEntries()
	seen := make(map[string]string, len(entries))
	expectedPrev := ledger.GenesisHash
	for _, e := range entries {
		if e.PreviousHash != expectedPrev {
			v := newViolation(AppendOnlyIntegrity, "previous_hash does not chain to the prior entry", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id":       string(e.EntryID),
				"got_prev_hash":  e.PreviousHash,
				"want_prev_hash": expectedPrev,
			})
			return Result{Invariant: AppendOnlyIntegrity, Passed: false, Violation: &v}
		}
		if want := e.ComputeChecksum(); want != e.Checksum {
			v := newViolation(AppendOnlyIntegrity, "stored checksum does not recompute", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id":   string(e.EntryID),
				"stored":     e.Checksum,
				"recomputed": want,
			})
			return Result{Invariant: AppendOnlyIntegrity, Passed: false, Violation: &v}
		}
		if other, dup := seen[e.Checksum]; dup {
			v := newViolation(AppendOnlyIntegrity, "two entries share a checksum", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id": string(e.EntryID),
				"other_id": other,
				"checksum": e.Checksum,
			})
			return Result{Invariant: AppendOnlyIntegrity, Passed: false, Violation: &v}
		}
		seen[e.Checksum] = string(e.EntryID)
		expectedPrev = e.Checksum
	}
	return Result{Invariant: AppendOnlyIntegrity, Passed: true}
}

// CheckEntryIntegrity is the targeted helper check_entry_integrity(entry_id):
// it verifies a single entry's checksum recomputes, without scanning the
// whole chain.
func (c *Checker) CheckEntryIntegrity(id ledger.LedgerEntryId, nowMillis int64) Result {
	for _, e := range c.st.GetAllEntries() {
		if e.EntryID != id {
			continue
		}
		if want := e.ComputeChecksum(); want != e.Checksum {
			v := newViolation(AppendOnlyIntegrity, "stored checksum does not recompute", "entry:"+string(id), nowMillis, map[string]any{
				"entry_id":   string(id),
				"stored":     e.Checksum,
				"recomputed": want,
			})
			return Result{Invariant: AppendOnlyIntegrity, Passed: false, Violation: &v}
		}
		return Result{Invariant: AppendOnlyIntegrity, Passed: true}
	}
	v := newViolation(AppendOnlyIntegrity, "entry not found", "entry:"+string(id), nowMillis, map[string]any{"entry_id": string(id)})
	return Result{Invariant: AppendOnlyIntegrity, Passed: false, Violation: &v}
}

// CheckAttributionImmutability is I5: every stored entry and batch still
// matches its own stored checksum. Unlike I4 this does not check chaining —
// only that nothing has been mutated in place.
func (c *Checker) CheckAttributionImmutability(nowMillis int64) Result {
	for _, e := range c.st.GetAllEntries() {
		if want := e.ComputeChecksum(); want != e.Checksum {
			v := newViolation(AttributionImmutable, "entry checksum no longer matches its stored content", "entry:"+string(e.EntryID), nowMillis, map[string]any{
				"entry_id":   string(e.EntryID),
				"stored":     e.Checksum,
				"recomputed": want,
			})
			return Result{Invariant: AttributionImmutable, Passed: false, Violation: &v}
		}
	}
	for _, b := range c.st.GetAllBatches() {
		if want := b.ComputeChecksum(); want != b.Checksum {
			v := newViolation(AttributionImmutable, "batch checksum no longer matches its stored content", "batch:"+string(b.BatchID), nowMillis, map[string]any{
				"batch_id":   string(b.BatchID),
				"stored":     b.Checksum,
				"recomputed": want,
			})
			return Result{Invariant: AttributionImmutable, Passed: false, Violation: &v}
		}
	}
	return Result{Invariant: AttributionImmutable, Passed: true}
}
