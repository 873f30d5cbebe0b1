// Package query implements the read-only view/query layer (C4): filtered
// queries, party/table/club/agent summaries, hand analysis, and export. It
// holds a read-only reference to the store and never mutates it; every
// aggregation iterates its filtered set exactly once per call, with no
// caching — determinism and simplicity over speed at this layer.
package query

import "github.com/rawblock/feltledger/pkg/ledger"

// storeReader is the subset of *store.Store the view needs. Depending on this
// instead of the concrete type keeps query decoupled from store's mutation
// surface and makes it trivial to feed a view a prepared slice in tests.
type storeReader interface {
	GetAllEntries() []ledger.Entry
}

// TimeWindow is [From, To] inclusive; a zero field means unbounded on that
// side, and a nil *TimeWindow spans all time.
type TimeWindow struct {
	From int64
	To   int64
}

func windowContains(w *TimeWindow, ts int64) bool {
	if w == nil {
		return true
	}
	if w.From != 0 && ts < w.From {
		return false
	}
	if w.To != 0 && ts > w.To {
		return false
	}
	return true
}

// Params are the AND-conjunctive optional filters for Query. A zero-valued
// field means "no constraint" for that dimension.
type Params struct {
	PartyType     *ledger.PartyType
	PlayerID      string
	ClubID        string
	AgentID       string
	TableID       string
	HandID        string
	Source        ledger.Source
	Category      ledger.Category
	FromTimestamp int64
	ToTimestamp   int64
	FromSequence  int64
	ToSequence    int64
	BatchID       ledger.LedgerBatchId
	Limit         int
	Offset        int
}

// View is the query/aggregation layer over a store's entries.
type View struct {
	st storeReader
}

func New(st storeReader) *View { return &View{st: st} }

func matches(e ledger.Entry, p Params) bool {
	if p.PartyType != nil && e.AffectedParty.Type() != *p.PartyType {
		return false
	}
	if p.PlayerID != "" && !(e.AffectedParty.IsPlayer() && e.AffectedParty.ID() == p.PlayerID) {
		return false
	}
	if p.AgentID != "" && !(e.AffectedParty.IsAgent() && e.AffectedParty.ID() == p.AgentID) {
		return false
	}
	if p.ClubID != "" {
		// Club filtering matches either the entry's context club_id or a
		// Club-typed affected party with that id.
		ownedByClub := e.ClubID == p.ClubID || (e.AffectedParty.IsClub() && e.AffectedParty.ID() == p.ClubID)
		if !ownedByClub {
			return false
		}
	}
	if p.TableID != "" && e.TableID != p.TableID {
		return false
	}
	if p.HandID != "" && e.HandID != p.HandID {
		return false
	}
	if p.Source != "" && e.Source != p.Source {
		return false
	}
	if p.Category != "" && e.Category != p.Category {
		return false
	}
	if p.FromTimestamp != 0 && e.Timestamp < p.FromTimestamp {
		return false
	}
	if p.ToTimestamp != 0 && e.Timestamp > p.ToTimestamp {
		return false
	}
	if p.FromSequence != 0 && e.Sequence < p.FromSequence {
		return false
	}
	if p.ToSequence != 0 && e.Sequence > p.ToSequence {
		return false
	}
	if p.BatchID != "" && e.BatchID != p.BatchID {
		return false
	}
	return true
}

func paginate(entries []ledger.Entry, limit, offset int) []ledger.Entry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

// Query filters entries by p, in store order, then paginates the filtered
// result.
func (v *View) Query(p Params) []ledger.Entry {
	var filtered []ledger.Entry
	for _, e := range v.st.GetAllEntries() {
		if matches(e, p) {
			filtered = append(filtered, e)
		}
	}
	return paginate(filtered, p.Limit, p.Offset)
}
