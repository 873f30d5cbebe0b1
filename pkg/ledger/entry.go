package ledger

// GenesisHash is the sentinel previous_hash carried by the first entry ever
// appended to a store.
const GenesisHash = "genesis"

// Entry is the atomic, immutable unit of the ledger. Once appended it is never
// mutated; every field here is set exactly once, at append time.
type Entry struct {
	EntryID       LedgerEntryId
	Sequence      int64
	Timestamp     int64
	Source        Source
	Category      Category // CategoryNone unless Source == SourceHandSettlement
	AffectedParty AffectedParty
	Delta         int64
	StateVersion  string
	TableID       string // "" when absent
	HandID        string
	ClubID        string
	BatchID       LedgerBatchId // "" when appended outside a batch
	Description   string
	Metadata      map[string]any
	PreviousHash  string
	Checksum      string
}

// InBatch reports whether the entry was appended as part of a batch.
func (e Entry) InBatch() bool { return e.BatchID != "" }

// canonicalFields returns the deterministic field map the checksum is
// computed over; Checksum itself is excluded.
func (e Entry) canonicalFields() map[string]any {
	return map[string]any{
		"entryId":       string(e.EntryID),
		"sequence":      e.Sequence,
		"timestamp":     e.Timestamp,
		"source":        string(e.Source),
		"category":      optionalString(string(e.Category)),
		"affectedParty": e.AffectedParty.canonical(),
		"delta":         e.Delta,
		"stateVersion":  e.StateVersion,
		"tableId":       optionalString(e.TableID),
		"handId":        optionalString(e.HandID),
		"clubId":        optionalString(e.ClubID),
		"batchId":       optionalString(string(e.BatchID)),
		"description":   e.Description,
		"metadata":      metadataCanonical(e.Metadata),
		"previousHash":  e.PreviousHash,
	}
}

// ComputeChecksum derives the entry's checksum from its current fields. The
// store calls this once at append time; verification calls it again and
// compares against the stored value.
func (e Entry) ComputeChecksum() string {
	return checksum("ent", e.canonicalFields())
}

// Batch is the atomic set of entries produced by one recorder call, sharing a
// batch_id and common context.
type Batch struct {
	BatchID      LedgerBatchId
	Timestamp    int64
	Source       Source
	StateVersion string
	TableID      string
	HandID       string
	ClubID       string
	EntryIDs     []LedgerEntryId
	NetDelta     int64
	Checksum     string
}

func (b Batch) canonicalFields() map[string]any {
	ids := make([]any, len(b.EntryIDs))
	for i, id := range b.EntryIDs {
		ids[i] = string(id)
	}
	return map[string]any{
		"batchId":      string(b.BatchID),
		"timestamp":    b.Timestamp,
		"source":       string(b.Source),
		"stateVersion": b.StateVersion,
		"tableId":      optionalString(b.TableID),
		"handId":       optionalString(b.HandID),
		"clubId":       optionalString(b.ClubID),
		"entryIds":     ids,
		"netDelta":     b.NetDelta,
	}
}

// ComputeChecksum derives the batch's checksum from its current fields.
func (b Batch) ComputeChecksum() string {
	return checksum("bat", b.canonicalFields())
}
