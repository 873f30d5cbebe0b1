package risk

import (
	"sort"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// AnomalyKind names one of the eight detector variants.
type AnomalyKind string

const (
	AnomalyFlowConcentration   AnomalyKind = "FLOW_CONCENTRATION"
	AnomalyAttributionSkew     AnomalyKind = "ATTRIBUTION_SKEW"
	AnomalyAgentOverExtraction AnomalyKind = "AGENT_OVER_EXTRACTION"
	AnomalyRechargeMismatch    AnomalyKind = "RECHARGE_MISMATCH"
	AnomalyHighOrphanRate      AnomalyKind = "HIGH_ORPHAN_RATE"
	AnomalyAttributionGap      AnomalyKind = "ATTRIBUTION_GAP"
	AnomalyVolumeSpike         AnomalyKind = "VOLUME_SPIKE"
	AnomalyTableWashPattern    AnomalyKind = "TABLE_WASH_PATTERN"
)

// AnomalySeverity bands a single descriptor.
type AnomalySeverity string

const (
	SeverityInfo     AnomalySeverity = "INFO"
	SeverityWarning  AnomalySeverity = "WARNING"
	SeverityAlert    AnomalySeverity = "ALERT"
	SeverityCritical AnomalySeverity = "CRITICAL"
)

// MinConfidence is the floor below which a detector's descriptor is dropped
// entirely rather than reported.
const MinConfidence = 50

var severityRank = map[AnomalySeverity]int{
	SeverityCritical: 0,
	SeverityAlert:    1,
	SeverityWarning:  2,
	SeverityInfo:     3,
}

// Anomaly is one detector's descriptor for one entity/period.
type Anomaly struct {
	ID         string
	Kind       AnomalyKind
	EntityID   string
	Severity   AnomalySeverity
	Confidence int64
	Message    string
	Checksum   string
}

func bandBySteps(value int64, steps []int64, severities []AnomalySeverity) (AnomalySeverity, bool) {
	for i := len(steps) - 1; i >= 0; i-- {
		if value >= steps[i] {
			return severities[i], true
		}
	}
	return "", false
}

func newAnomaly(kind AnomalyKind, in EntityInput, severity AnomalySeverity, confidence int64, message string, nowMillis int64) *Anomaly {
	if confidence < MinConfidence {
		return nil
	}
	a := &Anomaly{
		ID:         ledger.NewAnomalyID(string(kind), in.EntityID, in.Period, nowMillis),
		Kind:       kind,
		EntityID:   in.EntityID,
		Severity:   severity,
		Confidence: clampInt64(confidence, 0, 100),
		Message:    message,
	}
	a.Checksum = ledger.Checksum("anom", map[string]any{
		"kind":     string(kind),
		"entityId": in.EntityID,
		"period":   in.Period,
	})
	return a
}

// detectFlowConcentration flags an entity whose flows concentrate heavily on
// a small set of counterparties.
func detectFlowConcentration(in EntityInput, nowMillis int64) *Anomaly {
	sumSq, n := concentrationBp(in.Flow)
	if n <= 1 {
		return nil
	}
	sev, hit := bandBySteps(sumSq, []int64{6000, 7000, 8000, 9000}, []AnomalySeverity{SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyFlowConcentration, in, sev, sumSq/100, "flow volume concentrates on a small counterparty set", nowMillis)
}

// detectAttributionSkew flags an entity where one counterparty holds an
// outsized share of attributed value.
func detectAttributionSkew(in EntityInput, nowMillis int64) *Anomaly {
	sev, hit := bandBySteps(in.Attribution.MaxSinglePartyBp, []int64{6000, 7000, 8000, 9000}, []AnomalySeverity{SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyAttributionSkew, in, sev, in.Attribution.MaxSinglePartyBp/100, "attribution skews heavily toward one counterparty", nowMillis)
}

// detectAgentOverExtraction flags an agent whose commission share exceeds
// the expected referral-commission range. Only meaningful for AGENT
// entities.
func detectAgentOverExtraction(in EntityInput, nowMillis int64) *Anomaly {
	if in.EntityType != EntityAgent {
		return nil
	}
	sev, hit := bandBySteps(in.AgentShareBp, []int64{6000, 7500, 9000}, []AnomalySeverity{SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyAgentOverExtraction, in, sev, in.AgentShareBp/100, "agent commission share exceeds the expected referral range", nowMillis)
}

// detectRechargeMismatch flags an entity whose observed recharge volume
// diverges from what was expected.
func detectRechargeMismatch(in EntityInput, nowMillis int64) *Anomaly {
	if in.Recharge.ExpectedAmount == 0 {
		return nil
	}
	mismatchBp := absInt64(in.Recharge.ObservedAmount-in.Recharge.ExpectedAmount) * 10000 / in.Recharge.ExpectedAmount
	sev, hit := bandBySteps(mismatchBp, []int64{2000, 3500, 5000}, []AnomalySeverity{SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyRechargeMismatch, in, sev, mismatchBp/100, "observed recharge volume diverges from the expected amount", nowMillis)
}

// detectHighOrphanRate flags an entity with an unusually high share of
// orphaned flows (no matching counterpart ever found).
func detectHighOrphanRate(in EntityInput, nowMillis int64) *Anomaly {
	if in.Flow.TotalFlows == 0 {
		return nil
	}
	orphanBp := in.Flow.OrphanFlows * 10000 / in.Flow.TotalFlows
	sev, hit := bandBySteps(orphanBp, []int64{500, 1000, 2000, 3000}, []AnomalySeverity{SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyHighOrphanRate, in, sev, orphanBp/100, "an unusually high share of flows were never matched", nowMillis)
}

// detectAttributionGap flags an entity where a large share of flows carry
// no attribution at all.
func detectAttributionGap(in EntityInput, nowMillis int64) *Anomaly {
	sev, hit := bandBySteps(in.Attribution.ZeroRateBp, []int64{500, 1000, 2000, 3000}, []AnomalySeverity{SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	return newAnomaly(AnomalyAttributionGap, in, sev, in.Attribution.ZeroRateBp/100, "a large share of flows carry no attribution", nowMillis)
}

// detectVolumeSpike flags an entity whose flow volume jumped sharply versus
// the previous reconciliation period.
func detectVolumeSpike(in EntityInput, nowMillis int64) *Anomaly {
	if in.PreviousPeriodFlowCount == 0 {
		return nil
	}
	changeBp := (in.Flow.TotalFlows - in.PreviousPeriodFlowCount) * 10000 / in.PreviousPeriodFlowCount
	if changeBp <= 0 {
		return nil
	}
	sev, hit := bandBySteps(changeBp, []int64{2000, 5000, 10000, 20000}, []AnomalySeverity{SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical})
	if !hit {
		return nil
	}
	confidence := changeBp / 200
	return newAnomaly(AnomalyVolumeSpike, in, sev, confidence, "flow volume spiked sharply versus the previous period", nowMillis)
}

// detectTableWashPattern flags a table exhibiting both high counterparty
// concentration and a high orphan rate at once — the combined signature of
// chip-washing between a small ring of seats. Applies only to TABLE
// entities.
func detectTableWashPattern(in EntityInput, nowMillis int64) *Anomaly {
	if in.EntityType != EntityTable {
		return nil
	}
	sumSq, n := concentrationBp(in.Flow)
	if n <= 1 || in.Flow.TotalFlows == 0 {
		return nil
	}
	orphanBp := in.Flow.OrphanFlows * 10000 / in.Flow.TotalFlows
	if sumSq < 7000 || orphanBp < 1000 {
		return nil
	}
	confidence := (sumSq + orphanBp) / 200
	sev := SeverityWarning
	if sumSq >= 9000 && orphanBp >= 2000 {
		sev = SeverityCritical
	} else if sumSq >= 8000 || orphanBp >= 1500 {
		sev = SeverityAlert
	}
	return newAnomaly(AnomalyTableWashPattern, in, sev, confidence, "concentrated flows and a high orphan rate together suggest chip washing", nowMillis)
}

var detectors = []func(EntityInput, int64) *Anomaly{
	detectFlowConcentration,
	detectAttributionSkew,
	detectAgentOverExtraction,
	detectRechargeMismatch,
	detectHighOrphanRate,
	detectAttributionGap,
	detectVolumeSpike,
	detectTableWashPattern,
}

// AnomalyCounts tallies detector output by severity.
type AnomalyCounts struct {
	Critical int
	Alert    int
	Warning  int
	Info     int
}

// ClassifyAnomalies runs every detector against in and returns the surviving
// descriptors (confidence >= MinConfidence), sorted first by severity
// (CRITICAL -> INFO) then by descending confidence, plus a severity tally.
func ClassifyAnomalies(in EntityInput, nowMillis int64) ([]Anomaly, AnomalyCounts) {
	var out []Anomaly
	var counts AnomalyCounts
	for _, detect := range detectors {
		a := detect(in, nowMillis)
		if a == nil {
			continue
		}
		out = append(out, *a)
		switch a.Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityAlert:
			counts.Alert++
		case SeverityWarning:
			counts.Warning++
		case SeverityInfo:
			counts.Info++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if severityRank[out[i].Severity] != severityRank[out[j].Severity] {
			return severityRank[out[i].Severity] < severityRank[out[j].Severity]
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out, counts
}
