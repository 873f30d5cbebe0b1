package revenue

import (
	"sort"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// RakeBreakdown sums a hand's rake distribution across club, agent, and
// platform shares.
type RakeBreakdown struct {
	ClubShare     int64
	AgentShare    int64
	PlatformShare int64
}

// TimelineEntry is one hand's position in a table's rake timeline: the
// earliest rake-category entry's id/timestamp, the hand it belongs to, and
// the rake total (with a breakdown when the settlement split it).
type TimelineEntry struct {
	EntryID      ledger.LedgerEntryId
	Timestamp    int64
	HandID       string
	StateVersion string
	RakeAmount   int64
	Breakdown    *RakeBreakdown
}

func isRakeCategory(c ledger.Category) bool {
	switch c {
	case ledger.CategoryRake, ledger.CategoryRakeShareClub, ledger.CategoryRakeShareAgent, ledger.CategoryRakeSharePlatform:
		return true
	default:
		return false
	}
}

// TableRakeTimelineView groups a table's rake-category entries by hand_id
// into a chronological timeline.
type TableRakeTimelineView struct {
	st storeReader
}

func NewTableRakeTimelineView(st storeReader) *TableRakeTimelineView {
	return &TableRakeTimelineView{st: st}
}

// Timeline returns one TimelineEntry per hand observed at tableID within
// window, ordered by (earliest timestamp, hand_id).
func (v *TableRakeTimelineView) Timeline(tableID string, window *TimeWindow) []TimelineEntry {
	byHand := make(map[string][]ledger.Entry)
	for _, e := range v.st.GetAllEntries() {
		if e.TableID != tableID || !isRakeCategory(e.Category) || !windowContains(window, e.Timestamp) {
			continue
		}
		byHand[e.HandID] = append(byHand[e.HandID], e)
	}

	hands := make([]string, 0, len(byHand))
	for h := range byHand {
		hands = append(hands, h)
	}
	sort.Strings(hands)

	out := make([]TimelineEntry, 0, len(hands))
	for _, hand := range hands {
		ordered := orderEntries(byHand[hand])
		earliest := ordered[0]

		var rakeAmount, club, agent, platform int64
		var hasBreakdown bool
		for _, e := range ordered {
			switch e.Category {
			case ledger.CategoryRake:
				rakeAmount += e.Delta
			case ledger.CategoryRakeShareClub:
				club += e.Delta
				hasBreakdown = true
			case ledger.CategoryRakeShareAgent:
				agent += e.Delta
				hasBreakdown = true
			case ledger.CategoryRakeSharePlatform:
				platform += e.Delta
				hasBreakdown = true
			}
		}

		te := TimelineEntry{
			EntryID:      earliest.EntryID,
			Timestamp:    earliest.Timestamp,
			HandID:       hand,
			StateVersion: earliest.StateVersion,
			RakeAmount:   rakeAmount,
		}
		if hasBreakdown {
			te.Breakdown = &RakeBreakdown{ClubShare: club, AgentShare: agent, PlatformShare: platform}
		}
		out = append(out, te)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].HandID < out[j].HandID
	})
	return out
}

// Diff is one field-level mismatch between two timelines at the same index.
type Diff struct {
	Index int
	Field string
	Left  any
	Right any
}

// ComparisonResult is what CompareTimelines and VerifyTimeline return — the
// substrate for replay verification, grounded on the teacher's
// RunShadowAnalysis pattern of running two computations and diffing them by
// field rather than trusting either blindly.
type ComparisonResult struct {
	Matches           bool
	EntryCount        int
	MatchingEntries   int
	FirstDifferenceAt *int
	Differences       []Diff
}

func diffRow(i int, a, b TimelineEntry) []Diff {
	var diffs []Diff
	if a.HandID != b.HandID {
		diffs = append(diffs, Diff{i, "hand_id", a.HandID, b.HandID})
	}
	if a.StateVersion != b.StateVersion {
		diffs = append(diffs, Diff{i, "state_version", a.StateVersion, b.StateVersion})
	}
	if a.RakeAmount != b.RakeAmount {
		diffs = append(diffs, Diff{i, "rake_amount", a.RakeAmount, b.RakeAmount})
	}
	if (a.Breakdown == nil) != (b.Breakdown == nil) {
		diffs = append(diffs, Diff{i, "breakdown_presence", a.Breakdown != nil, b.Breakdown != nil})
	} else if a.Breakdown != nil && *a.Breakdown != *b.Breakdown {
		diffs = append(diffs, Diff{i, "breakdown", *a.Breakdown, *b.Breakdown})
	}
	return diffs
}

// CompareTimelines diffs two timelines entry-by-entry, ignoring the
// generated entry_id/timestamp fields the same way invariant.CompareForDeterminism
// ignores them for raw entries.
func CompareTimelines(t1, t2 []TimelineEntry) ComparisonResult {
	n := len(t1)
	if len(t2) > n {
		n = len(t2)
	}
	res := ComparisonResult{EntryCount: n}
	for i := 0; i < n; i++ {
		if i >= len(t1) || i >= len(t2) {
			res.Differences = append(res.Differences, Diff{i, "presence", i < len(t1), i < len(t2)})
			if res.FirstDifferenceAt == nil {
				idx := i
				res.FirstDifferenceAt = &idx
			}
			continue
		}
		rowDiffs := diffRow(i, t1[i], t2[i])
		if len(rowDiffs) == 0 {
			res.MatchingEntries++
			continue
		}
		res.Differences = append(res.Differences, rowDiffs...)
		if res.FirstDifferenceAt == nil {
			idx := i
			res.FirstDifferenceAt = &idx
		}
	}
	res.Matches = len(res.Differences) == 0
	return res
}

// VerifyTimeline re-derives tableID's timeline fresh from the store and
// diffs it against expected, the substrate for replay verification.
func (v *TableRakeTimelineView) VerifyTimeline(tableID string, window *TimeWindow, expected []TimelineEntry) ComparisonResult {
	return CompareTimelines(expected, v.Timeline(tableID, window))
}
