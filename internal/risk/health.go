package risk

import "github.com/rawblock/feltledger/pkg/ledger"

// RiskLevel bands an overall health score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

func riskLevelOf(overall int64) RiskLevel {
	switch {
	case overall < 20:
		return RiskCritical
	case overall < 40:
		return RiskHigh
	case overall < 70:
		return RiskMedium
	default:
		return RiskLow
	}
}

// HealthScore is a fully computed per-entity, per-period health score. All
// four sub-scores and Overall are 0-100; Checksum covers the canonical
// input summary, not the score itself, so two independently computed scores
// from identical inputs produce identical checksums.
type HealthScore struct {
	ID           string
	EntityID     string
	EntityType   EntityType
	Period       string
	Correlation  int64
	Distribution int64
	Attribution  int64
	Alignment    int64
	Overall      int64
	RiskLevel    RiskLevel
	Checksum     string
}

func correlationScore(f FlowData) int64 {
	if f.TotalFlows == 0 {
		return 50
	}
	bad := f.OrphanFlows + f.PartialFlows + f.MissingFlows
	return clampInt64(100-(bad*100)/f.TotalFlows, 0, 100)
}

// concentrationBp returns the Herfindahl-like sum-of-squared-shares (in bp
// units) across an entity's counterparties, and the counterparty count.
// Shared by distributionScore and the flow-concentration anomaly detector.
func concentrationBp(f FlowData) (sumSq, n int64) {
	n = int64(len(f.CounterpartyFlowCounts))
	if n == 0 {
		return 0, 0
	}
	var total int64
	for _, c := range f.CounterpartyFlowCounts {
		total += c
	}
	if total == 0 {
		return 0, n
	}
	var sq int64
	for _, c := range f.CounterpartyFlowCounts {
		shareBp := c * 10000 / total
		sq += shareBp * shareBp
	}
	return sq / 10000, n
}

func distributionScore(f FlowData) int64 {
	sumSq, n := concentrationBp(f)
	if n == 0 {
		return 50
	}
	if n == 1 {
		return 20
	}
	minHHI := int64(10000) / n
	if sumSq <= minHHI {
		return 100
	}
	if sumSq >= 10000 {
		return 0
	}
	return 100 - (sumSq-minHHI)*100/(10000-minHHI)
}

func completenessScore(zeroRateBp int64) int64 {
	return clampInt64(100-zeroRateBp/100, 0, 100)
}

func balanceScore(maxSinglePartyBp int64) int64 {
	switch {
	case maxSinglePartyBp < 6000:
		return 100
	case maxSinglePartyBp < 7000:
		return 80
	case maxSinglePartyBp < 8000:
		return 60
	case maxSinglePartyBp < 9000:
		return 40
	default:
		return 20
	}
}

func attributionScore(a AttributionData) int64 {
	comp := completenessScore(a.ZeroRateBp)
	bal := balanceScore(a.MaxSinglePartyBp)
	return (60*comp + 40*bal) / 100
}

func amountAlignmentScore(ratioBp int64) int64 {
	return clampInt64(100-absInt64(ratioBp-10000)/100, 0, 100)
}

func alignmentScore(a AttributionData) int64 {
	linkRate := clampInt64(a.LinkRateBp/100, 0, 100)
	amtAlign := amountAlignmentScore(a.AmountRatioBp)
	return (70*linkRate + 30*amtAlign) / 100
}

func overallScore(correlation, distribution, attribution, alignment int64) int64 {
	return (3000*correlation + 2500*distribution + 2500*attribution + 2000*alignment) / 10000
}

func (h HealthScore) canonical() map[string]any {
	return map[string]any{
		"entityId":   h.EntityID,
		"entityType": string(h.EntityType),
		"period":     h.Period,
	}
}

// ComputeHealthScore derives an entity's health score for one reconciliation
// period. nowMillis stamps the score's id; the function itself never reads
// a clock.
func ComputeHealthScore(in EntityInput, nowMillis int64) HealthScore {
	correlation := correlationScore(in.Flow)
	distribution := distributionScore(in.Flow)
	attribution := attributionScore(in.Attribution)
	alignment := alignmentScore(in.Attribution)
	overall := overallScore(correlation, distribution, attribution, alignment)

	h := HealthScore{
		ID:           ledger.NewHealthScoreID(in.EntityID, in.Period, nowMillis),
		EntityID:     in.EntityID,
		EntityType:   in.EntityType,
		Period:       in.Period,
		Correlation:  correlation,
		Distribution: distribution,
		Attribution:  attribution,
		Alignment:    alignment,
		Overall:      overall,
		RiskLevel:    riskLevelOf(overall),
	}
	h.Checksum = ledger.Checksum("hs", h.canonical())
	return h
}
