package recorder

import (
	"fmt"

	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// TimeFeeInput is the authoritative descriptor RecordTimeFee derives entries
// from.
type TimeFeeInput struct {
	TableID       string
	ClubID        string
	PlayerID      string
	FeeAmount     int64
	PeriodMinutes int
	StateVersion  string
}

const minuteMillis = 60_000

func timeFeeKey(tableID, playerID string, minuteBucket int64) string {
	return fmt.Sprintf("timefee:%s:%s:%d", tableID, playerID, minuteBucket)
}

// RecordTimeFee emits exactly two entries in one TIME_FEE batch: a player
// debit and a matching club credit. The dedup key composes table, player,
// and a minute bucket of the writer's clock, so the same fee cannot be
// recorded twice for the same player/table within one minute.
func (r *Recorder) RecordTimeFee(in TimeFeeInput) Result {
	bucket := r.st.Clock() / minuteMillis
	key := timeFeeKey(in.TableID, in.PlayerID, bucket)

	if r.cfg.EnableDuplicateDetection {
		r.mu.Lock()
		_, seen := r.recordedTimeFees[key]
		r.mu.Unlock()
		if seen {
			return Result{Success: false, IsDuplicate: true}
		}
	}

	inputs := []store.EntryInput{
		{
			AffectedParty: ledger.PlayerParty(in.PlayerID),
			Delta:         -in.FeeAmount,
			StateVersion:  in.StateVersion,
			TableID:       in.TableID,
			ClubID:        in.ClubID,
			Description:   "time fee",
		},
		{
			AffectedParty: ledger.ClubParty(in.ClubID),
			Delta:         in.FeeAmount,
			StateVersion:  in.StateVersion,
			TableID:       in.TableID,
			ClubID:        in.ClubID,
			Description:   "time fee",
		},
	}

	batch, entries, err := r.st.AppendBatch(ledger.SourceTimeFee, inputs)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	r.mu.Lock()
	r.recordedTimeFees[key] = struct{}{}
	r.mu.Unlock()

	return Result{Success: true, Batch: batch, Entries: entries}
}
