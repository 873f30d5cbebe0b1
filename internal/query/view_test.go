package query

import (
	"testing"

	"github.com/rawblock/feltledger/internal/recorder"
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

// s1Fixture replays scenario S1 (a hand settlement with a rake breakdown)
// plus a second, unrelated bonus entry, and returns a view over the result.
func s1Fixture(t *testing.T) *View {
	t.Helper()
	st := store.New(store.Config{EnableHashChain: true, MaxEntries: 1000, Now: testClock(1_700_000_000_000)})
	r := recorder.New(st, recorder.DefaultConfig())

	res := r.RecordSettlement(recorder.SettlementInput{
		HandID:       "h1",
		TableID:      "t1",
		ClubID:       "c1",
		StateVersion: "v1",
		PotWinners:   []recorder.PotWinner{{PlayerID: "p1", Amount: 90, PotType: "main"}},
		RakeTotal:    10,
		RakeBreakdown: &recorder.RakeBreakdown{
			ClubShare: 7, AgentShare: 2, AgentID: "a1", PlatformShare: 1,
		},
	})
	if !res.Success {
		t.Fatalf("settlement fixture setup failed: %v", res.Err)
	}
	if _, err := r.RecordBonus(recorder.BonusInput{PlayerID: "p1", Amount: 25, Description: "promo"}); err != nil {
		t.Fatalf("bonus fixture setup failed: %v", err)
	}

	return New(st)
}

func TestQueryFiltersByHandID(t *testing.T) {
	v := s1Fixture(t)
	got := v.Query(Params{HandID: "h1"})
	if len(got) != 5 {
		t.Fatalf("got %d entries, want 5", len(got))
	}
}

func TestQueryFiltersByPlayerID(t *testing.T) {
	v := s1Fixture(t)
	got := v.Query(Params{PlayerID: "p1"})
	// pot win (90) + bonus (25) = 2 entries attributed to p1.
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
}

func TestQueryPartyTypeAndClubAreConjunctive(t *testing.T) {
	v := s1Fixture(t)
	playerType := ledger.PartyPlayer
	got := v.Query(Params{PartyType: &playerType, ClubID: "c1"})
	// the club-owned pot win entry has TableID/ClubID "t1"/"c1" and a player
	// party; the bonus has no club_id context, so it's excluded.
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
}

func TestQueryPagination(t *testing.T) {
	v := s1Fixture(t)
	all := v.Query(Params{HandID: "h1"})
	page := v.Query(Params{HandID: "h1", Limit: 2, Offset: 1})
	if len(page) != 2 {
		t.Fatalf("got %d entries, want 2", len(page))
	}
	if page[0].EntryID != all[1].EntryID || page[1].EntryID != all[2].EntryID {
		t.Fatalf("pagination did not slice in order")
	}
}

func TestTableSummaryMatchesS1(t *testing.T) {
	v := s1Fixture(t)
	s := v.TableSummary("t1", nil)
	if s.TotalPotWinnings != 90 {
		t.Errorf("total_pot_winnings = %d, want 90", s.TotalPotWinnings)
	}
	if s.TotalRake != 10 {
		t.Errorf("total_rake = %d, want 10", s.TotalRake)
	}
	if s.UniqueHands != 1 {
		t.Errorf("unique_hands = %d, want 1", s.UniqueHands)
	}
	if s.RakeByParty["agent:a1"] != 2 || s.RakeByParty["platform:platform"] != 1 || s.RakeByParty["club:c1"] != 7 {
		t.Errorf("rake_by_party = %+v, want agent:a1=2 platform:platform=1 club:c1=7", s.RakeByParty)
	}
}

func TestClubSummaryMatchesS1(t *testing.T) {
	v := s1Fixture(t)
	s := v.ClubSummary("c1", nil)
	if s.TotalRakeCollected != 10 {
		t.Errorf("total_rake_collected = %d, want 10", s.TotalRakeCollected)
	}
	if s.AgentCommissions["a1"] != 2 {
		t.Errorf("agent_commissions[a1] = %d, want 2", s.AgentCommissions["a1"])
	}
	if s.PlatformShare != 1 {
		t.Errorf("platform_share = %d, want 1", s.PlatformShare)
	}
	if want := int64(10 - 2 - 1); s.NetClubRevenue != want {
		t.Errorf("net_club_revenue = %d, want %d", s.NetClubRevenue, want)
	}
}

func TestAgentSummaryMatchesS1(t *testing.T) {
	v := s1Fixture(t)
	s := v.AgentSummary("a1", nil)
	if s.TotalCommission != 2 {
		t.Errorf("total_commission = %d, want 2", s.TotalCommission)
	}
	if s.ByClub["c1"] != 2 {
		t.Errorf("by_club[c1] = %d, want 2", s.ByClub["c1"])
	}
	if s.UniqueHands != 1 {
		t.Errorf("unique_hands = %d, want 1", s.UniqueHands)
	}
}

func TestAnalyzeHandNetBalanceIsRawSumOfDeltas(t *testing.T) {
	v := s1Fixture(t)
	a := v.AnalyzeHand("h1")
	// Hand attribution is not balanced to zero: net_balance is the plain sum
	// of every delta recorded for the hand, 90 pot win + 10 rake (club)
	// + 2 agent + 1 platform + 7 club share = 110, the same value as the
	// batch's net_delta in TestRecordSettlementMatchesS1.
	if a.NetBalance != 110 {
		t.Fatalf("net_balance = %d, want 110", a.NetBalance)
	}
	if a.ByPlayer["p1"] != 90 {
		t.Errorf("by_player[p1] = %d, want 90", a.ByPlayer["p1"])
	}
	if a.ByAgent["a1"] != 2 {
		t.Errorf("by_agent[a1] = %d, want 2", a.ByAgent["a1"])
	}
	if a.Platform != 1 {
		t.Errorf("platform = %d, want 1", a.Platform)
	}
}

func TestExportForReportingFlattensParty(t *testing.T) {
	v := s1Fixture(t)
	rows := v.ExportForReporting(Params{HandID: "h1", Category: ledger.CategoryPotWin})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].PartyType != "player" || rows[0].PartyID != "p1" || rows[0].Delta != 90 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}
