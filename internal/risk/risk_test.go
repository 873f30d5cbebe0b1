package risk

import "testing"

const testNow int64 = 1_700_000_000_000

func TestCorrelationScoreNoFlowsIsNeutral(t *testing.T) {
	h := ComputeHealthScore(EntityInput{EntityID: "p1", EntityType: EntityPlayer, Period: "2026-07"}, testNow)
	if h.Correlation != 50 {
		t.Fatalf("expected neutral correlation score 50 for no flows, got %d", h.Correlation)
	}
}

func TestDistributionScoreSingleCounterpartyIsPenalized(t *testing.T) {
	in := EntityInput{
		EntityID:   "p1",
		EntityType: EntityPlayer,
		Period:     "2026-07",
		Flow: FlowData{
			TotalFlows:             10,
			CounterpartyFlowCounts: map[string]int64{"only": 10},
		},
	}
	h := ComputeHealthScore(in, testNow)
	if h.Distribution != 20 {
		t.Fatalf("expected distribution score 20 for a single counterparty, got %d", h.Distribution)
	}
}

func TestComputeHealthScoreDeterministicChecksum(t *testing.T) {
	in := EntityInput{
		EntityID:   "club1",
		EntityType: EntityClub,
		Period:     "2026-07",
		Flow: FlowData{
			TotalFlows:             100,
			OrphanFlows:            2,
			CounterpartyFlowCounts: map[string]int64{"a": 60, "b": 40},
		},
		Attribution: AttributionData{ZeroRateBp: 100, MaxSinglePartyBp: 6000, LinkRateBp: 9500, AmountRatioBp: 10000},
	}
	h1 := ComputeHealthScore(in, testNow)
	h2 := ComputeHealthScore(in, testNow+999)
	if h1.Checksum != h2.Checksum {
		t.Fatalf("checksum should not depend on nowMillis: %q vs %q", h1.Checksum, h2.Checksum)
	}
	if h1.ID == h2.ID {
		t.Fatalf("id should depend on nowMillis, got identical ids")
	}
}

func TestDetectFlowConcentrationTriggersAboveThreshold(t *testing.T) {
	in := EntityInput{
		EntityID:   "t1",
		EntityType: EntityTable,
		Period:     "2026-07",
		Flow: FlowData{
			TotalFlows:             100,
			CounterpartyFlowCounts: map[string]int64{"a": 95, "b": 5},
		},
	}
	a := detectFlowConcentration(in, testNow)
	if a == nil {
		t.Fatal("expected a flow-concentration anomaly for a 95/5 split")
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("expected CRITICAL severity, got %s", a.Severity)
	}
}

func TestDetectRechargeMismatchSuppressedBelowLowestBand(t *testing.T) {
	in := EntityInput{
		EntityID:   "club1",
		EntityType: EntityClub,
		Period:     "2026-07",
		Recharge:   RechargeData{ExpectedAmount: 10000, ObservedAmount: 10050},
	}
	if a := detectRechargeMismatch(in, testNow); a != nil {
		t.Fatalf("expected no anomaly for a negligible recharge mismatch, got %+v", a)
	}
}

func TestDetectAgentOverExtractionGatedToAgentType(t *testing.T) {
	in := EntityInput{
		EntityID:     "p1",
		EntityType:   EntityPlayer,
		Period:       "2026-07",
		AgentShareBp: 9500,
	}
	if a := detectAgentOverExtraction(in, testNow); a != nil {
		t.Fatalf("agent-over-extraction detector must not fire for a non-agent entity, got %+v", a)
	}

	in.EntityType = EntityAgent
	a := detectAgentOverExtraction(in, testNow)
	if a == nil {
		t.Fatal("expected an agent-over-extraction anomaly at 9500bp share")
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("expected CRITICAL severity, got %s", a.Severity)
	}
}

func TestClassifyAnomaliesSortsBySeverityThenConfidence(t *testing.T) {
	in := EntityInput{
		EntityID:   "t1",
		EntityType: EntityTable,
		Period:     "2026-07",
		Flow: FlowData{
			TotalFlows:             1000,
			OrphanFlows:            250,
			CounterpartyFlowCounts: map[string]int64{"a": 920, "b": 80},
		},
		Attribution: AttributionData{ZeroRateBp: 3500, MaxSinglePartyBp: 9200, LinkRateBp: 4000, AmountRatioBp: 6000},
	}
	anomalies, counts := ClassifyAnomalies(in, testNow)
	if len(anomalies) == 0 {
		t.Fatal("expected at least one anomaly for a degraded table")
	}
	for i := 1; i < len(anomalies); i++ {
		prevRank := severityRank[anomalies[i-1].Severity]
		curRank := severityRank[anomalies[i].Severity]
		if curRank < prevRank {
			t.Fatalf("anomalies not sorted by severity: %s before %s", anomalies[i-1].Severity, anomalies[i].Severity)
		}
		if curRank == prevRank && anomalies[i].Confidence > anomalies[i-1].Confidence {
			t.Fatalf("anomalies with equal severity not sorted by descending confidence")
		}
	}
	if counts.Critical+counts.Alert+counts.Warning+counts.Info != len(anomalies) {
		t.Fatalf("counts %+v do not sum to %d anomalies", counts, len(anomalies))
	}
}

func TestComputeTrendRequiresAtLeastThreePoints(t *testing.T) {
	_, ok := ComputeTrend("p1", "health", []TrendPoint{{Timestamp: 1, Value: 10}, {Timestamp: 2, Value: 20}}, testNow)
	if ok {
		t.Fatal("expected ComputeTrend to refuse fewer than 3 points")
	}
}

func TestComputeTrendDetectsImprovingDirection(t *testing.T) {
	points := []TrendPoint{
		{Timestamp: 1, Value: 840},
		{Timestamp: 2, Value: 920},
		{Timestamp: 3, Value: 1000},
		{Timestamp: 4, Value: 1080},
		{Timestamp: 5, Value: 1160},
	}
	trend, ok := ComputeTrend("p1", "health", points, testNow)
	if !ok {
		t.Fatal("expected ComputeTrend to succeed with 5 points")
	}
	if trend.Direction != DirectionImproving {
		t.Fatalf("expected IMPROVING direction for a steadily rising series, got %s", trend.Direction)
	}
	if !trend.Significant {
		t.Fatal("expected a clean, steep rise to be significant")
	}
}

func TestComputeTrendDetectsVolatileDirection(t *testing.T) {
	points := []TrendPoint{
		{Timestamp: 1, Value: 10},
		{Timestamp: 2, Value: 90},
		{Timestamp: 3, Value: 15},
		{Timestamp: 4, Value: 85},
		{Timestamp: 5, Value: 20},
	}
	trend, ok := ComputeTrend("p1", "health", points, testNow)
	if !ok {
		t.Fatal("expected ComputeTrend to succeed with 5 points")
	}
	if trend.Direction != DirectionVolatile {
		t.Fatalf("expected VOLATILE direction for a sawtooth series, got %s", trend.Direction)
	}
}

func TestAggregateDirectionFallsBackToVolatileWithoutMajority(t *testing.T) {
	trends := []Trend{
		{Direction: DirectionImproving, Significant: true},
		{Direction: DirectionDeteriorating, Significant: true},
		{Direction: DirectionStable, Significant: false},
	}
	if got := AggregateDirection(trends); got != DirectionVolatile {
		t.Fatalf("expected VOLATILE fallback with a 1-1 split, got %s", got)
	}
}

func TestAggregateDirectionMajorityWins(t *testing.T) {
	trends := []Trend{
		{Direction: DirectionImproving, Significant: true},
		{Direction: DirectionImproving, Significant: true},
		{Direction: DirectionDeteriorating, Significant: true},
	}
	if got := AggregateDirection(trends); got != DirectionImproving {
		t.Fatalf("expected IMPROVING majority to win, got %s", got)
	}
}

func TestRankEntitiesOrdersDescendingWithIDTiebreak(t *testing.T) {
	healthy := HealthScore{Overall: 90}
	unhealthy := HealthScore{Overall: 10}
	inputs := []RiskRankingInput{
		{EntityID: "zzz", EntityType: EntityPlayer, Health: healthy},
		{EntityID: "bbb", EntityType: EntityPlayer, Health: unhealthy},
		{EntityID: "aaa", EntityType: EntityPlayer, Health: unhealthy},
	}
	report := RankEntities(inputs)

	if report.Entries[0].EntityID != "aaa" || report.Entries[1].EntityID != "bbb" {
		t.Fatalf("expected aaa then bbb (tied risk score, id-ascending tiebreak) to rank above zzz, got %+v", report.Entries)
	}
	if report.Entries[0].Rank != 1 || report.Entries[2].Rank != 3 {
		t.Fatalf("expected ranks 1..3 in order, got %+v", report.Entries)
	}
	if report.Entries[2].EntityID != "zzz" {
		t.Fatalf("expected the healthy entity zzz ranked last, got %+v", report.Entries)
	}
}

func TestRankEntitiesHighRiskCountUsesThreshold(t *testing.T) {
	inputs := []RiskRankingInput{
		{EntityID: "a", Health: HealthScore{Overall: 0}, AnomalyCounts: AnomalyCounts{Critical: 5}},
		{EntityID: "b", Health: HealthScore{Overall: 95}},
	}
	report := RankEntities(inputs)
	if report.HighRiskCount != 1 {
		t.Fatalf("expected exactly one high-risk entity, got %d (%+v)", report.HighRiskCount, report.Entries)
	}
}

func TestComputeSystemHealthWeightsByEntityType(t *testing.T) {
	scores := []HealthScore{
		{EntityType: EntityPlayer, Overall: 100},
		{EntityType: EntityTable, Overall: 100},
		{EntityType: EntityClub, Overall: 0},
		{EntityType: EntityAgent, Overall: 0},
	}
	sh := ComputeSystemHealth(scores)
	want := int64(25*100+25*100+30*0+20*0) / 100
	if sh.Composite != want {
		t.Fatalf("expected composite %d, got %d (%+v)", want, sh.Composite, sh)
	}
}

func TestComputeSystemHealthTreatsMissingEntityTypeAsZero(t *testing.T) {
	scores := []HealthScore{{EntityType: EntityPlayer, Overall: 80}}
	sh := ComputeSystemHealth(scores)
	if sh.TableAvg != 0 || sh.ClubAvg != 0 || sh.AgentAvg != 0 {
		t.Fatalf("expected zero averages for entity types with no scores, got %+v", sh)
	}
}

func TestCriticalItemsCapsAtTen(t *testing.T) {
	inputs := make([]RiskRankingInput, 15)
	for i := range inputs {
		inputs[i] = RiskRankingInput{EntityID: string(rune('a' + i)), Health: HealthScore{Overall: int64(i)}}
	}
	report := RankEntities(inputs)
	items := CriticalItems(report)
	if len(items) != MaxCriticalItems {
		t.Fatalf("expected critical items capped at %d, got %d", MaxCriticalItems, len(items))
	}
	if items[0].RiskScore < items[len(items)-1].RiskScore {
		t.Fatal("expected critical items sorted risk-descending")
	}
}

func TestCompareRiskPeriodsIdentifiesTransitions(t *testing.T) {
	previous := RiskReport{Entries: []RiskEntry{
		{EntityID: "stays-high", RiskScore: 90},
		{EntityID: "recovers", RiskScore: 90},
	}}
	current := RiskReport{Entries: []RiskEntry{
		{EntityID: "stays-high", RiskScore: 95},
		{EntityID: "recovers", RiskScore: 10},
		{EntityID: "newly-high", RiskScore: 90},
	}}
	cmp := CompareRiskPeriods(previous, current)
	if len(cmp.NewlyHighRisk) != 1 || cmp.NewlyHighRisk[0] != "newly-high" {
		t.Fatalf("expected only newly-high in NewlyHighRisk, got %+v", cmp.NewlyHighRisk)
	}
	if len(cmp.NoLongerHighRisk) != 1 || cmp.NoLongerHighRisk[0] != "recovers" {
		t.Fatalf("expected only recovers in NoLongerHighRisk, got %+v", cmp.NoLongerHighRisk)
	}
}

func TestBuildExecutiveViewWithoutPreviousPeriod(t *testing.T) {
	scores := []HealthScore{{EntityType: EntityPlayer, Overall: 80}}
	report := RankEntities([]RiskRankingInput{{EntityID: "p1", Health: HealthScore{Overall: 80}}})
	view := BuildExecutiveView(scores, report, nil, nil)
	if view.PeriodComparison != nil {
		t.Fatal("expected nil PeriodComparison when no previous report is supplied")
	}
	if view.OverallTrend != DirectionVolatile {
		t.Fatalf("expected VOLATILE overall trend with no trends supplied, got %s", view.OverallTrend)
	}
}
