package recorder

import (
	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// PotWinner is one winner's share of a pot.
type PotWinner struct {
	PlayerID string
	Amount   int64
	PotType  string
}

// UncalledReturn is an amount returned to a player uncontested.
type UncalledReturn struct {
	PlayerID string
	Amount   int64
}

// RakeBreakdown apportions a settlement's rake_total across club, platform,
// and (optionally) a referral agent.
type RakeBreakdown struct {
	ClubShare     int64
	PlatformShare int64
	AgentShare    int64
	AgentID       string
}

// SettlementInput is the authoritative descriptor RecordSettlement derives
// entries from.
type SettlementInput struct {
	HandID          string
	TableID         string
	ClubID          string
	StateVersion    string
	PotWinners      []PotWinner
	RakeTotal       int64
	RakeBreakdown   *RakeBreakdown
	UncalledReturns []UncalledReturn
}

func settlementKey(handID string) string { return "settlement:" + handID }

// RecordSettlement derives one HAND_SETTLEMENT batch from in, in this fixed
// order: POT_WIN entries, UNCALLED_RETURN entries, RAKE, then (when a
// breakdown is supplied and 0 < club_share < rake_total) RAKE_SHARE_AGENT,
// RAKE_SHARE_PLATFORM, RAKE_SHARE_CLUB. The ordering is part of the wire
// contract. Duplicate hand_ids are rejected via the settlement dedup set
// unless disabled by configuration.
func (r *Recorder) RecordSettlement(in SettlementInput) Result {
	key := settlementKey(in.HandID)

	if r.cfg.EnableDuplicateDetection {
		r.mu.Lock()
		_, seen := r.recordedSettlements[key]
		r.mu.Unlock()
		if seen {
			return Result{Success: false, IsDuplicate: true}
		}
	}

	inputs := make([]store.EntryInput, 0, len(in.PotWinners)+len(in.UncalledReturns)+4)

	for _, w := range in.PotWinners {
		inputs = append(inputs, store.EntryInput{
			Category:      ledger.CategoryPotWin,
			AffectedParty: ledger.PlayerParty(w.PlayerID),
			Delta:         w.Amount,
			StateVersion:  in.StateVersion,
			TableID:       in.TableID,
			HandID:        in.HandID,
			ClubID:        in.ClubID,
			Description:   "pot win: " + w.PotType,
		})
	}

	for _, u := range in.UncalledReturns {
		inputs = append(inputs, store.EntryInput{
			Category:      ledger.CategoryUncalledReturn,
			AffectedParty: ledger.PlayerParty(u.PlayerID),
			Delta:         u.Amount,
			StateVersion:  in.StateVersion,
			TableID:       in.TableID,
			HandID:        in.HandID,
			ClubID:        in.ClubID,
			Description:   "uncalled return",
		})
	}

	if in.RakeTotal > 0 {
		inputs = append(inputs, store.EntryInput{
			Category:      ledger.CategoryRake,
			AffectedParty: ledger.ClubParty(in.ClubID),
			Delta:         in.RakeTotal,
			StateVersion:  in.StateVersion,
			TableID:       in.TableID,
			HandID:        in.HandID,
			ClubID:        in.ClubID,
			Description:   "rake",
		})

		if b := in.RakeBreakdown; b != nil && b.ClubShare > 0 && b.ClubShare < in.RakeTotal {
			if b.AgentShare > 0 && b.AgentID != "" {
				inputs = append(inputs, store.EntryInput{
					Category:      ledger.CategoryRakeShareAgent,
					AffectedParty: ledger.AgentParty(b.AgentID),
					Delta:         b.AgentShare,
					StateVersion:  in.StateVersion,
					TableID:       in.TableID,
					HandID:        in.HandID,
					ClubID:        in.ClubID,
					Description:   "rake share: agent",
				})
			}
			if b.PlatformShare > 0 {
				inputs = append(inputs, store.EntryInput{
					Category:      ledger.CategoryRakeSharePlatform,
					AffectedParty: ledger.PlatformParty(r.cfg.DefaultPlatformID),
					Delta:         b.PlatformShare,
					StateVersion:  in.StateVersion,
					TableID:       in.TableID,
					HandID:        in.HandID,
					ClubID:        in.ClubID,
					Description:   "rake share: platform",
				})
			}
			inputs = append(inputs, store.EntryInput{
				Category:      ledger.CategoryRakeShareClub,
				AffectedParty: ledger.ClubParty(in.ClubID),
				Delta:         b.ClubShare,
				StateVersion:  in.StateVersion,
				TableID:       in.TableID,
				HandID:        in.HandID,
				ClubID:        in.ClubID,
				Description:   "rake share: club",
			})
		}
	}

	batch, entries, err := r.st.AppendBatch(ledger.SourceHandSettlement, inputs)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	r.mu.Lock()
	r.recordedSettlements[key] = struct{}{}
	r.mu.Unlock()

	return Result{Success: true, Batch: batch, Entries: entries}
}
