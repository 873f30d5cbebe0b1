package recorder

import (
	"testing"

	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

func testClock(start int64) func() int64 {
	ts := start
	return func() int64 {
		ts++
		return ts
	}
}

func newFixture(t *testing.T) (*store.Store, *Recorder) {
	t.Helper()
	st := store.New(store.Config{EnableHashChain: true, MaxEntries: 1000, Now: testClock(1_700_000_000_000)})
	return st, New(st, DefaultConfig())
}

// TestRecordSettlementMatchesS1 reproduces scenario S1 end to end through the
// recorder.
func TestRecordSettlementMatchesS1(t *testing.T) {
	_, r := newFixture(t)

	result := r.RecordSettlement(SettlementInput{
		HandID:       "h1",
		TableID:      "t1",
		ClubID:       "c1",
		StateVersion: "v1",
		PotWinners:   []PotWinner{{PlayerID: "p1", Amount: 90, PotType: "main"}},
		RakeTotal:    10,
		RakeBreakdown: &RakeBreakdown{
			ClubShare:     7,
			AgentShare:    2,
			AgentID:       "a1",
			PlatformShare: 1,
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got err=%v", result.Err)
	}
	if len(result.Entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(result.Entries))
	}

	wantCategories := []ledger.Category{
		ledger.CategoryPotWin,
		ledger.CategoryRake,
		ledger.CategoryRakeShareAgent,
		ledger.CategoryRakeSharePlatform,
		ledger.CategoryRakeShareClub,
	}
	wantDeltas := []int64{90, 10, 2, 1, 7}
	for i, e := range result.Entries {
		if e.Category != wantCategories[i] {
			t.Errorf("entry %d category = %s, want %s", i, e.Category, wantCategories[i])
		}
		if e.Delta != wantDeltas[i] {
			t.Errorf("entry %d delta = %d, want %d", i, e.Delta, wantDeltas[i])
		}
	}
	if result.Batch.NetDelta != 110 {
		t.Fatalf("batch net_delta = %d, want 110", result.Batch.NetDelta)
	}
}

// TestRecordSettlementSkipsBreakdownWhenClubShareNotStrictlyBetween reproduces
// the "0 < club_share < rake_total" guard: a club_share equal to rake_total
// means no breakdown entries are emitted, only the base RAKE entry.
func TestRecordSettlementSkipsBreakdownWhenClubShareNotStrictlyBetween(t *testing.T) {
	_, r := newFixture(t)

	result := r.RecordSettlement(SettlementInput{
		HandID:        "h2",
		TableID:       "t1",
		ClubID:        "c1",
		StateVersion:  "v1",
		RakeTotal:     10,
		RakeBreakdown: &RakeBreakdown{ClubShare: 10, PlatformShare: 0},
	})

	if !result.Success {
		t.Fatalf("expected success, got err=%v", result.Err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries, want 1 (RAKE only)", len(result.Entries))
	}
	if result.Entries[0].Category != ledger.CategoryRake {
		t.Fatalf("entry category = %s, want RAKE", result.Entries[0].Category)
	}
}

// TestRecordSettlementDuplicateMatchesS3 reproduces scenario S3.
func TestRecordSettlementDuplicateMatchesS3(t *testing.T) {
	st, r := newFixture(t)

	in := SettlementInput{
		HandID:       "h1",
		TableID:      "t1",
		ClubID:       "c1",
		StateVersion: "v1",
		PotWinners:   []PotWinner{{PlayerID: "p1", Amount: 90, PotType: "main"}},
		RakeTotal:    10,
		RakeBreakdown: &RakeBreakdown{
			ClubShare: 7, AgentShare: 2, AgentID: "a1", PlatformShare: 1,
		},
	}

	first := r.RecordSettlement(in)
	if !first.Success {
		t.Fatalf("first call should succeed, got err=%v", first.Err)
	}
	countAfterFirst := len(st.GetAllEntries())

	second := r.RecordSettlement(in)
	if second.Success {
		t.Fatalf("second call should not succeed")
	}
	if !second.IsDuplicate {
		t.Fatalf("second call should report is_duplicate")
	}
	if len(st.GetAllEntries()) != countAfterFirst {
		t.Fatalf("entry count changed after duplicate call: %d != %d", len(st.GetAllEntries()), countAfterFirst)
	}
}

// TestRecordTimeFeeMatchesS2 reproduces scenario S2.
func TestRecordTimeFeeMatchesS2(t *testing.T) {
	_, r := newFixture(t)

	result := r.RecordTimeFee(TimeFeeInput{
		TableID: "t1", ClubID: "c1", PlayerID: "p1",
		FeeAmount: 50, PeriodMinutes: 30, StateVersion: "v2",
	})

	if !result.Success {
		t.Fatalf("expected success, got err=%v", result.Err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Entries))
	}
	if result.Entries[0].Delta != -50 || result.Entries[1].Delta != 50 {
		t.Fatalf("unexpected deltas: %d, %d", result.Entries[0].Delta, result.Entries[1].Delta)
	}
	if result.Batch.Source != ledger.SourceTimeFee {
		t.Fatalf("batch source = %s, want TIME_FEE", result.Batch.Source)
	}
}

func TestRecordAdjustmentRequiresReason(t *testing.T) {
	_, r := newFixture(t)

	_, err := r.RecordAdjustment(AdjustmentInput{AffectedParty: ledger.PlayerParty("p1"), Delta: -100})
	if err != ErrAdjustmentMissingReason {
		t.Fatalf("expected ErrAdjustmentMissingReason, got %v", err)
	}

	entry, err := r.RecordAdjustment(AdjustmentInput{
		AffectedParty: ledger.PlayerParty("p1"), Delta: -100, Reason: "chargeback correction",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Description != "chargeback correction" {
		t.Fatalf("description = %q, want reason carried through", entry.Description)
	}
	if entry.Source != ledger.SourceAdjustment {
		t.Fatalf("source = %s, want ADJUSTMENT", entry.Source)
	}
}

func TestRecordBonusEmitsSingleCredit(t *testing.T) {
	_, r := newFixture(t)

	entry, err := r.RecordBonus(BonusInput{PlayerID: "p1", Amount: 25, Description: "weekly promo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Source != ledger.SourceBonus || entry.Delta != 25 || !entry.AffectedParty.IsPlayer() {
		t.Fatalf("unexpected bonus entry: %+v", entry)
	}
}
