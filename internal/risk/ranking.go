package risk

import "sort"

// HighRiskThreshold sets the risk_score cutoff (100 - HighRiskThreshold) an
// entity must meet or exceed to count as high-risk in RiskReport.HighRiskCount.
// Chosen to line up with HealthScore's own MEDIUM/LOW boundary at overall=70.
const HighRiskThreshold = 30

func anomalyPenalty(counts AnomalyCounts) int64 {
	penalty := int64(counts.Critical)*15 + int64(counts.Alert)*8 + int64(counts.Warning)*3 + int64(counts.Info)*1
	return clampInt64(penalty, 0, 30)
}

// RiskRankingInput is one entity's health score and anomaly tally, the raw
// material RankEntities composes into a risk score.
type RiskRankingInput struct {
	EntityID      string
	EntityType    EntityType
	Health        HealthScore
	AnomalyCounts AnomalyCounts
}

// RiskEntry is one entity's place in a risk ranking.
type RiskEntry struct {
	EntityID   string
	EntityType EntityType
	RiskScore  int64
	Rank       int
}

func riskScoreOf(in RiskRankingInput) int64 {
	invertedHealth := 100 - in.Health.Overall
	penalty := anomalyPenalty(in.AnomalyCounts)
	bonus := int64(1500) * int64(in.AnomalyCounts.Critical) * 10 / 10000
	return (6000*invertedHealth+2500*penalty)/10000 + bonus
}

// RiskReport is the outcome of RankEntities: every entity ranked
// descending by risk score (entity id ascending breaks ties), plus the
// count meeting the high-risk threshold.
type RiskReport struct {
	Entries       []RiskEntry
	HighRiskCount int
}

// RankEntities scores and ranks every input, rank 1 being highest risk.
func RankEntities(inputs []RiskRankingInput) RiskReport {
	entries := make([]RiskEntry, len(inputs))
	for i, in := range inputs {
		entries[i] = RiskEntry{EntityID: in.EntityID, EntityType: in.EntityType, RiskScore: riskScoreOf(in)}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RiskScore != entries[j].RiskScore {
			return entries[i].RiskScore > entries[j].RiskScore
		}
		return entries[i].EntityID < entries[j].EntityID
	})

	var highRisk int
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].RiskScore >= 100-HighRiskThreshold {
			highRisk++
		}
	}
	return RiskReport{Entries: entries, HighRiskCount: highRisk}
}
