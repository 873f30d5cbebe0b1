package revenue

import "github.com/rawblock/feltledger/pkg/ledger"

// ClubSummary is the result of ClubRevenueView.Summary. It must never
// reflect activity not owned by the requested club.
type ClubSummary struct {
	TotalRake     int64
	TotalTimeFees int64
	TotalOther    int64
	Groups        []Group
}

// ClubRevenueView is parameterised by club_id; every entry it considers is
// filtered to that club before any aggregation runs, so it structurally
// cannot leak another club's activity.
type ClubRevenueView struct {
	st storeReader
}

func NewClubRevenueView(st storeReader) *ClubRevenueView { return &ClubRevenueView{st: st} }

func ownedByClub(e ledger.Entry, clubID string) bool {
	return e.ClubID == clubID || (e.AffectedParty.IsClub() && e.AffectedParty.ID() == clubID)
}

// Summary computes clubID's revenue within window, grouped by dim (TABLE,
// SOURCE, or TIME).
func (v *ClubRevenueView) Summary(clubID string, window *TimeWindow, dim GroupDimension, granularity Granularity) ClubSummary {
	var matched []ledger.Entry
	var s ClubSummary
	for _, e := range v.st.GetAllEntries() {
		if !ownedByClub(e, clubID) || !windowContains(window, e.Timestamp) {
			continue
		}
		switch {
		case e.Category == ledger.CategoryRake || e.Category == ledger.CategoryRakeShareClub:
			s.TotalRake += e.Delta
		case e.Source == ledger.SourceTimeFee && e.AffectedParty.IsClub() && e.Delta > 0:
			s.TotalTimeFees += e.Delta
		default:
			s.TotalOther += e.Delta
		}
		matched = append(matched, e)
	}
	s.Groups = buildGroups(matched, dim, granularity)
	return s
}
