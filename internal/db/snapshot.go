package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// SaveSnapshot persists every entry and batch in snap that is not already
// present, in a single transaction. Entries and batches are immutable once
// appended, so this is an insert-if-absent, never an update.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertEntrySQL = `
		INSERT INTO ledger_entries
			(entry_id, sequence, ts_millis, source, category, party_type, party_id,
			 delta, state_version, table_id, hand_id, club_id, batch_id,
			 description, metadata, previous_hash, checksum)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (entry_id) DO NOTHING
	`
	for _, e := range snap.Entries {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", e.EntryID, err)
		}
		_, err = tx.Exec(ctx, insertEntrySQL,
			string(e.EntryID), e.Sequence, e.Timestamp, string(e.Source), string(e.Category),
			e.AffectedParty.Type().String(), e.AffectedParty.ID(),
			e.Delta, e.StateVersion, e.TableID, e.HandID, e.ClubID, string(e.BatchID),
			e.Description, metadata, e.PreviousHash, e.Checksum,
		)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.EntryID, err)
		}
	}

	const insertBatchSQL = `
		INSERT INTO ledger_batches
			(batch_id, ts_millis, source, state_version, table_id, hand_id, club_id,
			 entry_ids, net_delta, checksum)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (batch_id) DO NOTHING
	`
	for _, b := range snap.Batches {
		entryIDs := make([]string, len(b.EntryIDs))
		for i, id := range b.EntryIDs {
			entryIDs[i] = string(id)
		}
		_, err = tx.Exec(ctx, insertBatchSQL,
			string(b.BatchID), b.Timestamp, string(b.Source), b.StateVersion,
			b.TableID, b.HandID, b.ClubID, entryIDs, b.NetDelta, b.Checksum,
		)
		if err != nil {
			return fmt.Errorf("insert batch %s: %w", b.BatchID, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadSnapshot reconstructs a store.Snapshot from every entry and batch
// persisted so far, ordered by sequence. cmd/ledgerd does not call it, and
// *store.Store has no operation that loads a Snapshot.
func (s *PostgresStore) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	entryRows, err := s.pool.Query(ctx, `
		SELECT entry_id, sequence, ts_millis, source, category, party_type, party_id,
		       delta, state_version, table_id, hand_id, club_id, batch_id,
		       description, metadata, previous_hash, checksum
		FROM ledger_entries ORDER BY sequence ASC
	`)
	if err != nil {
		return snap, fmt.Errorf("query entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var (
			entryID, source, category, partyType, partyID               string
			stateVersion, tableID, handID, clubID, batchID, description string
			previousHash, checksum                                      string
			sequence, tsMillis, delta                                   int64
			metadataBytes                                               []byte
		)
		if err := entryRows.Scan(&entryID, &sequence, &tsMillis, &source, &category, &partyType, &partyID,
			&delta, &stateVersion, &tableID, &handID, &clubID, &batchID,
			&description, &metadataBytes, &previousHash, &checksum); err != nil {
			return snap, fmt.Errorf("scan entry: %w", err)
		}

		party, err := ledger.NewAffectedParty(partyType, partyID)
		if err != nil {
			return snap, fmt.Errorf("reconstruct party for entry %s: %w", entryID, err)
		}

		var metadata map[string]any
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
				return snap, fmt.Errorf("unmarshal metadata for entry %s: %w", entryID, err)
			}
		}

		snap.Entries = append(snap.Entries, ledger.Entry{
			EntryID:       ledger.LedgerEntryId(entryID),
			Sequence:      sequence,
			Timestamp:     tsMillis,
			Source:        ledger.Source(source),
			Category:      ledger.Category(category),
			AffectedParty: party,
			Delta:         delta,
			StateVersion:  stateVersion,
			TableID:       tableID,
			HandID:        handID,
			ClubID:        clubID,
			BatchID:       ledger.LedgerBatchId(batchID),
			Description:   description,
			Metadata:      metadata,
			PreviousHash:  previousHash,
			Checksum:      checksum,
		})
	}
	if err := entryRows.Err(); err != nil {
		return snap, err
	}

	batchRows, err := s.pool.Query(ctx, `
		SELECT batch_id, ts_millis, source, state_version, table_id, hand_id, club_id,
		       entry_ids, net_delta, checksum
		FROM ledger_batches ORDER BY ts_millis ASC
	`)
	if err != nil {
		return snap, fmt.Errorf("query batches: %w", err)
	}
	defer batchRows.Close()

	for batchRows.Next() {
		var (
			batchID, source, stateVersion, tableID, handID, clubID, checksum string
			tsMillis, netDelta                                               int64
			entryIDs                                                         []string
		)
		if err := batchRows.Scan(&batchID, &tsMillis, &source, &stateVersion, &tableID, &handID, &clubID,
			&entryIDs, &netDelta, &checksum); err != nil {
			return snap, fmt.Errorf("scan batch: %w", err)
		}
		ids := make([]ledger.LedgerEntryId, len(entryIDs))
		for i, id := range entryIDs {
			ids[i] = ledger.LedgerEntryId(id)
		}
		snap.Batches = append(snap.Batches, ledger.Batch{
			BatchID:      ledger.LedgerBatchId(batchID),
			Timestamp:    tsMillis,
			Source:       ledger.Source(source),
			StateVersion: stateVersion,
			TableID:      tableID,
			HandID:       handID,
			ClubID:       clubID,
			EntryIDs:     ids,
			NetDelta:     netDelta,
			Checksum:     checksum,
		})
	}
	if err := batchRows.Err(); err != nil {
		return snap, err
	}

	if len(snap.Entries) > 0 {
		last := snap.Entries[len(snap.Entries)-1]
		snap.Sequence = last.Sequence
		snap.LastHash = last.Checksum
	}
	return snap, nil
}
