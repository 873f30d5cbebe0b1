package query

import "github.com/rawblock/feltledger/pkg/ledger"

// PartySummary is the running-balance-style rollup for one party over a
// window: credits, debits, and their net, independent of which source or
// category produced them.
type PartySummary struct {
	TotalCredit    int64
	TotalDebit     int64
	NetAttribution int64
	EntryCount     int
	ObservedFrom   int64
	ObservedTo     int64
}

func partyMatches(e ledger.Entry, pt ledger.PartyType, id string) bool {
	return e.AffectedParty.Type() == pt && e.AffectedParty.ID() == id
}

// PartySummary rolls up every entry attributed to (partyType, id) within
// window (nil window spans all time).
func (v *View) PartySummary(partyType ledger.PartyType, id string, window *TimeWindow) PartySummary {
	var s PartySummary
	for _, e := range v.st.GetAllEntries() {
		if !windowContains(window, e.Timestamp) || !partyMatches(e, partyType, id) {
			continue
		}
		if e.Delta >= 0 {
			s.TotalCredit += e.Delta
		} else {
			s.TotalDebit += -e.Delta
		}
		s.NetAttribution += e.Delta
		s.EntryCount++
		if s.EntryCount == 1 || e.Timestamp < s.ObservedFrom {
			s.ObservedFrom = e.Timestamp
		}
		if e.Timestamp > s.ObservedTo {
			s.ObservedTo = e.Timestamp
		}
	}
	return s
}

// TableSummary rolls up HAND_SETTLEMENT activity at one table: total pot
// winnings, total rake collected, rake attributed per party, and the number
// of distinct hands observed.
type TableSummary struct {
	TotalPotWinnings int64
	TotalRake        int64
	RakeByParty      map[string]int64
	UniqueHands      int
}

func (v *View) TableSummary(tableID string, window *TimeWindow) TableSummary {
	s := TableSummary{RakeByParty: make(map[string]int64)}
	hands := make(map[string]struct{})
	for _, e := range v.st.GetAllEntries() {
		if e.Source != ledger.SourceHandSettlement || e.TableID != tableID || !windowContains(window, e.Timestamp) {
			continue
		}
		switch e.Category {
		case ledger.CategoryPotWin:
			s.TotalPotWinnings += e.Delta
		case ledger.CategoryRake:
			s.TotalRake += e.Delta
		case ledger.CategoryRakeShareAgent, ledger.CategoryRakeSharePlatform, ledger.CategoryRakeShareClub:
			s.RakeByParty[e.AffectedParty.Key()] += e.Delta
		}
		if e.HandID != "" {
			hands[e.HandID] = struct{}{}
		}
	}
	s.UniqueHands = len(hands)
	return s
}

// ClubSummary rolls up a club's revenue: rake it collected directly
// (category RAKE only; its RAKE_SHARE_CLUB entries are not counted here),
// time fees credited to it, commissions paid out to
// agents referring its tables, and its platform-share obligation.
type ClubSummary struct {
	TotalRakeCollected int64
	TotalTimeFees      int64
	AgentCommissions   map[string]int64
	PlatformShare      int64
	NetClubRevenue     int64
}

func (v *View) ClubSummary(clubID string, window *TimeWindow) ClubSummary {
	s := ClubSummary{AgentCommissions: make(map[string]int64)}
	for _, e := range v.st.GetAllEntries() {
		if !windowContains(window, e.Timestamp) {
			continue
		}
		switch {
		case e.Source == ledger.SourceHandSettlement && e.Category == ledger.CategoryRake &&
			e.AffectedParty.IsClub() && e.AffectedParty.ID() == clubID:
			s.TotalRakeCollected += e.Delta
		case e.Source == ledger.SourceTimeFee && e.AffectedParty.IsClub() && e.AffectedParty.ID() == clubID && e.Delta > 0:
			s.TotalTimeFees += e.Delta
		case e.Source == ledger.SourceHandSettlement && e.Category == ledger.CategoryRakeShareAgent && e.ClubID == clubID:
			s.AgentCommissions[e.AffectedParty.ID()] += e.Delta
		case e.Source == ledger.SourceHandSettlement && e.Category == ledger.CategoryRakeSharePlatform && e.ClubID == clubID:
			s.PlatformShare += e.Delta
		}
	}
	var agentTotal int64
	for _, c := range s.AgentCommissions {
		agentTotal += c
	}
	s.NetClubRevenue = s.TotalRakeCollected + s.TotalTimeFees - agentTotal - s.PlatformShare
	return s
}

// AgentSummary rolls up one agent's referral commission, broken out by club,
// plus the number of distinct hands it was paid on.
type AgentSummary struct {
	TotalCommission int64
	ByClub          map[string]int64
	UniqueHands     int
}

func (v *View) AgentSummary(agentID string, window *TimeWindow) AgentSummary {
	s := AgentSummary{ByClub: make(map[string]int64)}
	hands := make(map[string]struct{})
	for _, e := range v.st.GetAllEntries() {
		if !windowContains(window, e.Timestamp) || !partyMatches(e, ledger.PartyAgent, agentID) {
			continue
		}
		s.TotalCommission += e.Delta
		if e.ClubID != "" {
			s.ByClub[e.ClubID] += e.Delta
		}
		if e.HandID != "" {
			hands[e.HandID] = struct{}{}
		}
	}
	s.UniqueHands = len(hands)
	return s
}

// HandAnalysis breaks every entry tied to one hand_id out by party, so a
// support agent can see exactly where a hand's chips went.
type HandAnalysis struct {
	HandID     string
	ByPlayer   map[string]int64
	ByClub     map[string]int64
	ByAgent    map[string]int64
	Platform   int64
	NetBalance int64
}

func (v *View) AnalyzeHand(handID string) HandAnalysis {
	a := HandAnalysis{HandID: handID, ByPlayer: map[string]int64{}, ByClub: map[string]int64{}, ByAgent: map[string]int64{}}
	for _, e := range v.st.GetAllEntries() {
		if e.HandID != handID {
			continue
		}
		switch e.AffectedParty.Type() {
		case ledger.PartyPlayer:
			a.ByPlayer[e.AffectedParty.ID()] += e.Delta
		case ledger.PartyClub:
			a.ByClub[e.AffectedParty.ID()] += e.Delta
		case ledger.PartyAgent:
			a.ByAgent[e.AffectedParty.ID()] += e.Delta
		case ledger.PartyPlatform:
			a.Platform += e.Delta
		}
		a.NetBalance += e.Delta
	}
	return a
}
