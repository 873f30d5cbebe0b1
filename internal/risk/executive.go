package risk

import "sort"

// MaxCriticalItems caps the executive view's critical-item list.
const MaxCriticalItems = 10

// SystemHealth is the fixed-weight composite {players:25, tables:25,
// clubs:30, agents:20} over each entity type's average overall health.
type SystemHealth struct {
	PlayerAvg int64
	TableAvg  int64
	ClubAvg   int64
	AgentAvg  int64
	Composite int64
}

func averageOverall(scores []HealthScore, entityType EntityType) int64 {
	var sum, n int64
	for _, s := range scores {
		if s.EntityType == entityType {
			sum += s.Overall
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// ComputeSystemHealth averages every supplied score by entity type and
// combines them into the fixed-weight composite.
func ComputeSystemHealth(scores []HealthScore) SystemHealth {
	sh := SystemHealth{
		PlayerAvg: averageOverall(scores, EntityPlayer),
		TableAvg:  averageOverall(scores, EntityTable),
		ClubAvg:   averageOverall(scores, EntityClub),
		AgentAvg:  averageOverall(scores, EntityAgent),
	}
	sh.Composite = (25*sh.PlayerAvg + 25*sh.TableAvg + 30*sh.ClubAvg + 20*sh.AgentAvg) / 100
	return sh
}

// CriticalItems returns report's entries truncated to MaxCriticalItems,
// already sorted risk-descending by RankEntities.
func CriticalItems(report RiskReport) []RiskEntry {
	n := len(report.Entries)
	if n > MaxCriticalItems {
		n = MaxCriticalItems
	}
	return report.Entries[:n]
}

func highRiskSet(r RiskReport) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range r.Entries {
		if e.RiskScore >= 100-HighRiskThreshold {
			out[e.EntityID] = struct{}{}
		}
	}
	return out
}

// PeriodComparison identifies entities that crossed the high-risk threshold
// between two reconciliation periods.
type PeriodComparison struct {
	NewlyHighRisk    []string
	NoLongerHighRisk []string
}

// CompareRiskPeriods diffs the high-risk sets of two RiskReports.
func CompareRiskPeriods(previous, current RiskReport) PeriodComparison {
	prevSet, currSet := highRiskSet(previous), highRiskSet(current)

	var newly, noLonger []string
	for id := range currSet {
		if _, was := prevSet[id]; !was {
			newly = append(newly, id)
		}
	}
	for id := range prevSet {
		if _, still := currSet[id]; !still {
			noLonger = append(noLonger, id)
		}
	}
	sort.Strings(newly)
	sort.Strings(noLonger)
	return PeriodComparison{NewlyHighRisk: newly, NoLongerHighRisk: noLonger}
}

// ExecutiveView is the aggregated dashboard: system health, the capped
// critical-item list, the majority trend direction, and an optional
// period-over-period comparison.
type ExecutiveView struct {
	SystemHealth     SystemHealth
	CriticalItems    []RiskEntry
	OverallTrend     Direction
	PeriodComparison *PeriodComparison
}

// BuildExecutiveView assembles an ExecutiveView from the current period's
// health scores, risk report, and trends. previous, if non-nil, enables the
// period-over-period high-risk comparison.
func BuildExecutiveView(scores []HealthScore, report RiskReport, trends []Trend, previous *RiskReport) ExecutiveView {
	ev := ExecutiveView{
		SystemHealth:  ComputeSystemHealth(scores),
		CriticalItems: CriticalItems(report),
		OverallTrend:  AggregateDirection(trends),
	}
	if previous != nil {
		cmp := CompareRiskPeriods(*previous, report)
		ev.PeriodComparison = &cmp
	}
	return ev
}
