// Package revenue implements the four read-only revenue views (C7):
// PlatformRevenueView, ClubRevenueView, AgentCommissionView, and
// TableRakeTimelineView, plus the timeline diffing (CompareTimelines,
// VerifyTimeline) that is the substrate for replay verification. Grounded
// on the teacher's internal/shadow package: RunShadowAnalysis computes two
// parallel results and diffs them by field, exactly the shape
// CompareTimelines/VerifyTimeline generalise to ledger timelines instead of
// transaction-heuristic flag sets.
package revenue

import (
	"sort"
	"time"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// Granularity names a time bucket width for TIME grouping.
type Granularity string

const (
	Hour  Granularity = "HOUR"
	Day   Granularity = "DAY"
	Week  Granularity = "WEEK"
	Month Granularity = "MONTH"
)

// TimeWindow is [From, To] inclusive; a zero field is unbounded on that
// side, and a nil *TimeWindow spans all time.
type TimeWindow struct {
	From int64
	To   int64
}

func windowContains(w *TimeWindow, ts int64) bool {
	if w == nil {
		return true
	}
	if w.From != 0 && ts < w.From {
		return false
	}
	if w.To != 0 && ts > w.To {
		return false
	}
	return true
}

// bucketKey derives a deterministic bucket label from a millisecond
// timestamp: HOUR -> "YYYY-MM-DDTHH", DAY -> "YYYY-MM-DD",
// WEEK -> "W<start-of-week YYYY-MM-DD>", MONTH -> "YYYY-MM".
func bucketKey(tsMillis int64, g Granularity) string {
	t := time.UnixMilli(tsMillis).UTC()
	switch g {
	case Hour:
		return t.Format("2006-01-02T15")
	case Week:
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return "W" + start.Format("2006-01-02")
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// orderEntries sorts a slice of entries by (timestamp, entry_id), the
// secondary ordering every view's groups use.
func orderEntries(entries []ledger.Entry) []ledger.Entry {
	out := make([]ledger.Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out
}

// zeroedBySource initialises a map with every recognised source set to zero,
// so a breakdown never silently omits a source that had no activity.
func zeroedBySource() map[ledger.Source]int64 {
	out := make(map[ledger.Source]int64, len(ledger.AllSources()))
	for _, s := range ledger.AllSources() {
		out[s] = 0
	}
	return out
}

// storeReader is the subset of *store.Store every view needs.
type storeReader interface {
	GetAllEntries() []ledger.Entry
}
