// Package store implements the append-only, hash-chained entry store (C2):
// atomic single-entry and multi-entry appends, a secondary batch index, and
// integrity verification. It is the only package in feltledger that mutates
// ledger state; every other package either writes through it (the recorder)
// or reads a point-in-time view of it (query, invariant, revenue); risk works
// on precomputed inputs and does not read the store.
package store

import (
	"sync"
	"time"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// Config configures a Store's behaviour; see the governing spec's external
// interfaces section. Zero-value MaxEntries is treated as "use defaults".
type Config struct {
	EnableHashChain bool
	MaxEntries      int
	// RequireIntegerDeltas documents the spec's delta-is-integer check; Go's
	// int64 already makes a non-integer delta unrepresentable, so there is
	// nothing left to enforce at runtime — the field exists so callers can
	// still express the configuration surface the spec names.
	RequireIntegerDeltas bool
	// Now overrides the writer's clock. Left nil in production so the store
	// falls back to time.Now().UnixMilli, the one sanctioned clock read;
	// tests supply a deterministic stand-in.
	Now func() int64
}

// DefaultConfig returns the spec-mandated defaults {true, 1_000_000, true}.
func DefaultConfig() Config {
	return Config{EnableHashChain: true, MaxEntries: 1_000_000, RequireIntegerDeltas: true}
}

// EntryInput is the caller-supplied shape for one entry. Sequence, Timestamp,
// EntryID, PreviousHash, Checksum and BatchID are assigned by the store.
type EntryInput struct {
	Source        ledger.Source
	Category      ledger.Category
	AffectedParty ledger.AffectedParty
	Delta         int64
	StateVersion  string
	TableID       string
	HandID        string
	ClubID        string
	Description   string
	Metadata      map[string]any
}

// Store is a single-writer, multi-reader append-only sequence. Append calls
// must be serialised by the caller; the mutex here enforces that directly.
// Read operations take the lock only long enough to copy data out, never
// while iterating a large scan — verify_integrity captures its working slice
// under lock and then walks it unlocked.
type Store struct {
	mu sync.RWMutex

	cfg Config

	entries []ledger.Entry
	byID    map[ledger.LedgerEntryId]int // index into entries

	batches       []ledger.Batch
	batchByID     map[ledger.LedgerBatchId]int
	batchEntryIDs map[ledger.LedgerBatchId][]ledger.LedgerEntryId

	currentSequence int64
	lastHash        string
}

// New constructs an empty Store. A zero-value Config is replaced with
// DefaultConfig so callers can write store.New(store.Config{}).
func New(cfg Config) *Store {
	if cfg.MaxEntries == 0 {
		cfg = DefaultConfig()
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Store{
		cfg:           cfg,
		byID:          make(map[ledger.LedgerEntryId]int),
		batchByID:     make(map[ledger.LedgerBatchId]int),
		batchEntryIDs: make(map[ledger.LedgerBatchId][]ledger.LedgerEntryId),
		lastHash:      ledger.GenesisHash,
	}
}

// AppendEntry appends a single entry outside of any batch.
func (s *Store) AppendEntry(input EntryInput) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(input, input.Source, "")
}

// appendLocked performs one append; callers must hold s.mu. source is the
// entry's authoritative source: AppendEntry passes input.Source through
// unchanged, while AppendBatch stamps every entry in the batch with the
// batch's own source regardless of what (if anything) the caller set on the
// individual EntryInput.
func (s *Store) appendLocked(input EntryInput, source ledger.Source, batchID ledger.LedgerBatchId) (ledger.Entry, error) {
	if len(s.entries) >= s.cfg.MaxEntries {
		return ledger.Entry{}, ledger.ErrCapacityExceeded
	}

	ts := s.cfg.Now()
	seq := s.currentSequence + 1
	prevHash := ledger.GenesisHash
	if s.cfg.EnableHashChain {
		prevHash = s.lastHash
	}

	entry := ledger.Entry{
		EntryID:       ledger.NewEntryID(ts),
		Sequence:      seq,
		Timestamp:     ts,
		Source:        source,
		Category:      input.Category,
		AffectedParty: input.AffectedParty,
		Delta:         input.Delta,
		StateVersion:  input.StateVersion,
		TableID:       input.TableID,
		HandID:        input.HandID,
		ClubID:        input.ClubID,
		BatchID:       batchID,
		Description:   input.Description,
		Metadata:      input.Metadata,
		PreviousHash:  prevHash,
	}
	entry.Checksum = entry.ComputeChecksum()

	s.entries = append(s.entries, entry)
	s.byID[entry.EntryID] = len(s.entries) - 1
	s.currentSequence = seq
	s.lastHash = entry.Checksum
	if batchID != "" {
		s.batchEntryIDs[batchID] = append(s.batchEntryIDs[batchID], entry.EntryID)
	}

	return entry, nil
}

// AppendBatch appends every input as one atomic batch sharing a freshly
// minted batch id. Common context (state_version, table_id, hand_id, club_id)
// is taken from the first input. If any inner append fails, every entry
// already appended for this batch is truncated back out and the sequence
// counter/hash pointer are restored, so observers never see a partial batch
// (see the open question on batch atomicity).
func (s *Store) AppendBatch(source ledger.Source, inputs []EntryInput) (ledger.Batch, []ledger.Entry, error) {
	if len(inputs) == 0 {
		return ledger.Batch{}, nil, ledger.ErrEmptyBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	preBatchEntryCount := len(s.entries)
	preBatchSequence := s.currentSequence
	preBatchHash := s.lastHash

	first := inputs[0]
	batchID := ledger.NewBatchID(s.cfg.Now())

	entries := make([]ledger.Entry, 0, len(inputs))
	var netDelta int64
	for _, in := range inputs {
		entry, err := s.appendLocked(in, source, batchID)
		if err != nil {
			s.entries = s.entries[:preBatchEntryCount]
			s.currentSequence = preBatchSequence
			s.lastHash = preBatchHash
			delete(s.batchEntryIDs, batchID)
			for _, e := range entries {
				delete(s.byID, e.EntryID)
			}
			return ledger.Batch{}, nil, err
		}
		entries = append(entries, entry)
		netDelta += entry.Delta
	}

	entryIDs := make([]ledger.LedgerEntryId, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
	}

	batch := ledger.Batch{
		BatchID:      batchID,
		Timestamp:    entries[0].Timestamp,
		Source:       source,
		StateVersion: first.StateVersion,
		TableID:      first.TableID,
		HandID:       first.HandID,
		ClubID:       first.ClubID,
		EntryIDs:     entryIDs,
		NetDelta:     netDelta,
	}
	batch.Checksum = batch.ComputeChecksum()

	s.batches = append(s.batches, batch)
	s.batchByID[batchID] = len(s.batches) - 1

	return batch, entries, nil
}
