package ledger

import (
	"strings"
	"testing"
)

func TestNewEntryIDFormat(t *testing.T) {
	ResetIDCounterForTest()

	first := NewEntryID(1700000000000)
	second := NewEntryID(1700000000000)

	if !strings.HasPrefix(string(first), "lent_1700000000000_") {
		t.Fatalf("unexpected id shape: %s", first)
	}
	if first == second {
		t.Fatalf("counter did not advance between calls: %s == %s", first, second)
	}
}

func TestResetIDCounterForTestIsDeterministic(t *testing.T) {
	ResetIDCounterForTest()
	a := NewEntryID(1)
	ResetIDCounterForTest()
	b := NewEntryID(1)

	if a != b {
		t.Fatalf("reset did not produce identical ids: %s != %s", a, b)
	}
}

func TestGeneratedIDPrefixes(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"batch", string(NewBatchID(1)), "lbat_"},
		{"violation", string(NewViolationID(1)), "viol_"},
		{"health score", NewHealthScoreID("table:t1", "2026-07", 1), "hs_"},
		{"anomaly", NewAnomalyID("flow_concentration", "table:t1", "2026-07", 1), "anom_"},
		{"trend", NewTrendID("table:t1", "total_rake", 1), "ta_"},
		{"risk ranking", NewRiskRankingID("table", "2026-07", 1), "rr_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.got, tt.want) {
				t.Errorf("%s id %q does not start with %q", tt.name, tt.got, tt.want)
			}
		})
	}
}
