package store

import "github.com/rawblock/feltledger/pkg/ledger"

// GetEntryByID returns the entry with the given id, or false if none exists.
func (s *Store) GetEntryByID(id ledger.LedgerEntryId) (ledger.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return ledger.Entry{}, false
	}
	return s.entries[idx], true
}

// GetEntryBySequence returns the entry at the given 1-based sequence number.
func (s *Store) GetEntryBySequence(seq int64) (ledger.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if seq < 1 || seq > int64(len(s.entries)) {
		return ledger.Entry{}, false
	}
	return s.entries[seq-1], true
}

// GetBatchByID returns the batch with the given id, or false if none exists.
func (s *Store) GetBatchByID(id ledger.LedgerBatchId) (ledger.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.batchByID[id]
	if !ok {
		return ledger.Batch{}, false
	}
	return s.batches[idx], true
}

// GetEntriesByBatch returns every entry belonging to the given batch, in
// append order.
func (s *Store) GetEntriesByBatch(id ledger.LedgerBatchId) []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.batchEntryIDs[id]
	out := make([]ledger.Entry, 0, len(ids))
	for _, eid := range ids {
		if idx, ok := s.byID[eid]; ok {
			out = append(out, s.entries[idx])
		}
	}
	return out
}

// GetEntriesInRange returns entries with sequence in [fromSequence, toSequence]
// inclusive, clamped to the store's actual bounds.
func (s *Store) GetEntriesInRange(fromSequence, toSequence int64) []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fromSequence < 1 {
		fromSequence = 1
	}
	if toSequence > int64(len(s.entries)) {
		toSequence = int64(len(s.entries))
	}
	if fromSequence > toSequence {
		return nil
	}
	out := make([]ledger.Entry, toSequence-fromSequence+1)
	copy(out, s.entries[fromSequence-1:toSequence])
	return out
}

// GetAllEntries returns every entry in append order.
func (s *Store) GetAllEntries() []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// GetAllBatches returns every batch in creation order.
func (s *Store) GetAllBatches() []ledger.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Batch, len(s.batches))
	copy(out, s.batches)
	return out
}

// CurrentSequence returns the highest sequence number appended so far (0 for
// an empty store).
func (s *Store) CurrentSequence() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSequence
}

// LastHash returns the checksum of the most recently appended entry, or the
// genesis sentinel for an empty store.
func (s *Store) LastHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHash
}

// Clock exposes the store's single controlled clock source without mutating
// state, so callers that must make a pre-append decision keyed off "now"
// (the recorder's time-fee minute bucket) read the same clock the store
// itself uses instead of taking a second, independent clock read.
func (s *Store) Clock() int64 {
	return s.cfg.Now()
}
