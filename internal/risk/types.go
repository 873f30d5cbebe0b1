// Package risk implements the risk-insight layer (C8): health scoring,
// anomaly classification, trend analysis, risk ranking, and executive
// dashboards. It is deterministic, read-only, integer-and-basis-point
// arithmetic throughout, and never reads a clock of its own — every
// timestamp is an explicit parameter, mirroring the store's "one sanctioned
// clock read" discipline. It never touches the store directly; callers
// assemble per-entity rollups (from internal/query and internal/revenue)
// into the EntityInput shape below.
//
// Structurally grounded on the teacher's internal/heuristics/realtime_risk.go
// and factor_graph.go (weighted multi-factor scoring feeding a single risk
// score) and internal/metrics/clustering.go (threshold-banded severity
// classification) — the arithmetic itself is new (basis-point ledger health
// metrics, not Bitcoin clustering), but the shape of "several weighted
// sub-scores combined into one, then banded into a severity" is theirs.
package risk

// EntityType names what kind of ledger participant a health score,
// anomaly, or ranking entry describes.
type EntityType string

const (
	EntityPlayer EntityType = "PLAYER"
	EntityTable  EntityType = "TABLE"
	EntityClub   EntityType = "CLUB"
	EntityAgent  EntityType = "AGENT"
)

// FlowData is the per-entity flow-shape input to health scoring: counts of
// flows that could not be fully traced (orphan/partial/missing), the total
// flow count, and a per-counterparty flow count used for the concentration
// (Herfindahl-like) measure.
type FlowData struct {
	TotalFlows             int64
	OrphanFlows            int64
	PartialFlows           int64
	MissingFlows           int64
	CounterpartyFlowCounts map[string]int64
}

// AttributionData is the per-entity attribution-shape input: rates and
// ratios already expressed in basis points (10000 = 100%).
type AttributionData struct {
	ZeroRateBp       int64 // share of flows with no attribution at all
	MaxSinglePartyBp int64 // share held by the largest single counterparty
	LinkRateBp       int64 // share of flows successfully linked end-to-end
	AmountRatioBp    int64 // attributed amount / expected amount; 10000 = exact
}

// RechargeData is the per-entity recharge-shape input, feeding the
// recharge-mismatch anomaly detector.
type RechargeData struct {
	ExpectedAmount int64
	ObservedAmount int64
}

// EntityInput bundles one entity's flow/attribution/recharge data plus the
// context health scoring and anomaly detection need: its id, type, the
// reconciliation period, and (for the volume-spike detector) the previous
// period's flow count. AgentShareBp feeds the agent-over-extraction
// detector and is only meaningful when EntityType is EntityAgent.
type EntityInput struct {
	EntityID                string
	EntityType              EntityType
	Period                  string
	Flow                    FlowData
	Attribution             AttributionData
	Recharge                RechargeData
	PreviousPeriodFlowCount int64
	AgentShareBp            int64
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
