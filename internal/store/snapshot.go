package store

import "github.com/rawblock/feltledger/pkg/ledger"

// Snapshot is the opaque export shape for persistence. Nothing in the core
// reads it back in; internal/db owns round-tripping it to Postgres.
type Snapshot struct {
	Entries  []ledger.Entry
	Batches  []ledger.Batch
	Sequence int64
	LastHash string
}

// Export returns a point-in-time copy of the store's state.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]ledger.Entry, len(s.entries))
	copy(entries, s.entries)
	batches := make([]ledger.Batch, len(s.batches))
	copy(batches, s.batches)
	return Snapshot{
		Entries:  entries,
		Batches:  batches,
		Sequence: s.currentSequence,
		LastHash: s.lastHash,
	}
}

// TamperChecksumForTest overwrites a stored entry's checksum in place,
// without touching previous_hash or any other field. Test-only: it exists
// to simulate the tampering scenario I4/I5 are meant to catch, which is
// otherwise unreachable through the store's append-only API.
func (s *Store) TamperChecksumForTest(id ledger.LedgerEntryId, checksum string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return
	}
	s.entries[idx].Checksum = checksum
}

// Clear discards all state. Test-only: no production code path should ever
// reach for it, since it violates the append-only guarantee by design.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[ledger.LedgerEntryId]int)
	s.batches = nil
	s.batchByID = make(map[ledger.LedgerBatchId]int)
	s.batchEntryIDs = make(map[ledger.LedgerBatchId][]ledger.LedgerEntryId)
	s.currentSequence = 0
	s.lastHash = ledger.GenesisHash
}
