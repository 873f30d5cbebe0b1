package revenue

import "sort"

// AgentTotal is one agent's commission total.
type AgentTotal struct {
	AgentID string
	Total   int64
}

// AgentRollup is the all-agents view: each agent's total, sorted by agent
// id, plus the grand total. The grand total is a flat, non-recursive sum of
// the per-agent totals — this system has no hierarchical agent chains to
// walk.
type AgentRollup struct {
	Totals     []AgentTotal
	GrandTotal int64
}

// AgentCommissionView is per-agent attribution over the ledger.
type AgentCommissionView struct {
	st storeReader
}

func NewAgentCommissionView(st storeReader) *AgentCommissionView { return &AgentCommissionView{st: st} }

// PerAgent sums every entry attributed to agentID within window.
func (v *AgentCommissionView) PerAgent(agentID string, window *TimeWindow) int64 {
	var total int64
	for _, e := range v.st.GetAllEntries() {
		if e.AffectedParty.IsAgent() && e.AffectedParty.ID() == agentID && windowContains(window, e.Timestamp) {
			total += e.Delta
		}
	}
	return total
}

// AllAgents sums every agent's commission within window, sorted by agent id.
func (v *AgentCommissionView) AllAgents(window *TimeWindow) AgentRollup {
	totals := make(map[string]int64)
	for _, e := range v.st.GetAllEntries() {
		if !e.AffectedParty.IsAgent() || !windowContains(window, e.Timestamp) {
			continue
		}
		totals[e.AffectedParty.ID()] += e.Delta
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rollup := AgentRollup{Totals: make([]AgentTotal, 0, len(ids))}
	for _, id := range ids {
		rollup.Totals = append(rollup.Totals, AgentTotal{AgentID: id, Total: totals[id]})
		rollup.GrandTotal += totals[id]
	}
	return rollup
}
