package recorder

import (
	"errors"

	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// ErrAdjustmentMissingReason is returned when RecordAdjustment is called with
// an empty reason.
var ErrAdjustmentMissingReason = errors.New("recorder: adjustment requires a non-empty reason")

// AdjustmentInput is the descriptor for a single manual ledger correction.
// AffectedParty being a single tagged value (rather than a collection)
// already guarantees "exactly one affected party" — there is no
// representable way to pass more than one.
type AdjustmentInput struct {
	AffectedParty ledger.AffectedParty
	Delta         int64
	Reason        string
	StateVersion  string
	TableID       string
	HandID        string
	ClubID        string
}

// RecordAdjustment appends exactly one ADJUSTMENT entry. A non-empty reason
// is required; it becomes the entry's description.
func (r *Recorder) RecordAdjustment(in AdjustmentInput) (ledger.Entry, error) {
	if in.Reason == "" {
		return ledger.Entry{}, ErrAdjustmentMissingReason
	}
	return r.st.AppendEntry(store.EntryInput{
		Source:        ledger.SourceAdjustment,
		AffectedParty: in.AffectedParty,
		Delta:         in.Delta,
		StateVersion:  in.StateVersion,
		TableID:       in.TableID,
		HandID:        in.HandID,
		ClubID:        in.ClubID,
		Description:   in.Reason,
	})
}

// BonusInput is the descriptor for a single promotional credit.
type BonusInput struct {
	PlayerID     string
	Amount       int64
	StateVersion string
	TableID      string
	ClubID       string
	Description  string
}

// RecordBonus appends exactly one BONUS credit entry on a player.
func (r *Recorder) RecordBonus(in BonusInput) (ledger.Entry, error) {
	return r.st.AppendEntry(store.EntryInput{
		Source:        ledger.SourceBonus,
		AffectedParty: ledger.PlayerParty(in.PlayerID),
		Delta:         in.Amount,
		StateVersion:  in.StateVersion,
		TableID:       in.TableID,
		ClubID:        in.ClubID,
		Description:   in.Description,
	})
}
