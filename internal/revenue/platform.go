package revenue

import (
	"sort"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// GroupDimension names what a revenue view's groups are keyed by.
type GroupDimension string

const (
	GroupByTable  GroupDimension = "TABLE"
	GroupByClub   GroupDimension = "CLUB"
	GroupBySource GroupDimension = "SOURCE"
	GroupByTime   GroupDimension = "TIME"
)

// Group is one bucket of a grouped summary: its key, net total, and the
// member entries in (timestamp, entry_id) order.
type Group struct {
	Key     string
	Total   int64
	Entries []ledger.Entry
}

func groupKey(e ledger.Entry, dim GroupDimension, granularity Granularity) string {
	switch dim {
	case GroupByTable:
		return e.TableID
	case GroupByClub:
		return e.ClubID
	case GroupBySource:
		return string(e.Source)
	case GroupByTime:
		return bucketKey(e.Timestamp, granularity)
	default:
		return ""
	}
}

func buildGroups(entries []ledger.Entry, dim GroupDimension, granularity Granularity) []Group {
	byKey := make(map[string][]ledger.Entry)
	for _, e := range entries {
		k := groupKey(e, dim, granularity)
		byKey[k] = append(byKey[k], e)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		ordered := orderEntries(byKey[k])
		var total int64
		for _, e := range ordered {
			total += e.Delta
		}
		groups = append(groups, Group{Key: k, Total: total, Entries: ordered})
	}
	return groups
}

// PlatformSummary is the result of PlatformRevenueView.Summary.
type PlatformSummary struct {
	Total    int64
	BySource map[ledger.Source]int64
	Groups   []Group
}

// PlatformRevenueView filters to affected_party = Platform and groups by
// TABLE, CLUB, or TIME(granularity).
type PlatformRevenueView struct {
	st storeReader
}

func NewPlatformRevenueView(st storeReader) *PlatformRevenueView { return &PlatformRevenueView{st: st} }

// Summary computes the platform's total revenue within window, broken down
// by source and grouped by dim (granularity only matters when dim is
// GroupByTime).
func (v *PlatformRevenueView) Summary(window *TimeWindow, dim GroupDimension, granularity Granularity) PlatformSummary {
	bySource := zeroedBySource()
	var matched []ledger.Entry
	var total int64
	for _, e := range v.st.GetAllEntries() {
		if !e.AffectedParty.IsPlatform() || !windowContains(window, e.Timestamp) {
			continue
		}
		bySource[e.Source] += e.Delta
		total += e.Delta
		matched = append(matched, e)
	}
	return PlatformSummary{Total: total, BySource: bySource, Groups: buildGroups(matched, dim, granularity)}
}
