package query

import "github.com/rawblock/feltledger/pkg/ledger"

// ReportRow is the flattened, external-facing shape export_for_reporting
// hands to downstream reporting/BI consumers — one row per entry, party
// fields unpacked from the tagged union.
type ReportRow struct {
	EntryID     string
	Sequence    int64
	Timestamp   int64
	Source      string
	Category    string
	PartyType   string
	PartyID     string
	Delta       int64
	TableID     string
	HandID      string
	ClubID      string
	BatchID     string
	Description string
}

// ExportForReporting runs Query(p) and flattens the result into ReportRow,
// the shape safe to hand to an external reporting pipeline.
func (v *View) ExportForReporting(p Params) []ReportRow {
	entries := v.Query(p)
	rows := make([]ReportRow, len(entries))
	for i, e := range entries {
		rows[i] = reportRow(e)
	}
	return rows
}

func reportRow(e ledger.Entry) ReportRow {
	return ReportRow{
		EntryID:     string(e.EntryID),
		Sequence:    e.Sequence,
		Timestamp:   e.Timestamp,
		Source:      string(e.Source),
		Category:    string(e.Category),
		PartyType:   e.AffectedParty.Type().String(),
		PartyID:     e.AffectedParty.ID(),
		Delta:       e.Delta,
		TableID:     e.TableID,
		HandID:      e.HandID,
		ClubID:      e.ClubID,
		BatchID:     string(e.BatchID),
		Description: e.Description,
	}
}
