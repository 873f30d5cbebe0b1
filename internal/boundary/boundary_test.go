package boundary

import (
	"reflect"
	"testing"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// TestScanStringMatchesScenario11 reproduces the boundary scenario from
// spec §8 (item 11): a forbidden keyword in a scanned field fails validation
// and the violation carries the exact keyword.
func TestScanStringMatchesScenario11(t *testing.T) {
	r := ScanString("description", "please process this withdrawal request")
	if r.IsValid {
		t.Fatalf("expected invalid for a description containing a forbidden keyword")
	}
	if len(r.Violations) != 1 || r.Violations[0].Detail != "withdraw" {
		t.Fatalf("violations = %+v, want exactly one with detail=withdraw", r.Violations)
	}
}

func TestScanStringAllowsCleanDescription(t *testing.T) {
	r := ScanString("description", "pot win on the river")
	if !r.IsValid {
		t.Fatalf("expected valid, got violations %+v", r.Violations)
	}
}

func TestScanMetadataRejectsForbiddenFieldName(t *testing.T) {
	r := ScanMetadata(map[string]any{"walletAddress": "anything"}, true)
	if r.IsValid {
		t.Fatalf("expected invalid for forbidden metadata field name")
	}
}

func TestScanMetadataSkipsForbiddenFieldNameWhenNotStrict(t *testing.T) {
	r := ScanMetadata(map[string]any{"walletAddress": "anything"}, false)
	if !r.IsValid {
		t.Fatalf("expected valid with strict mode off, got violations %+v", r.Violations)
	}
}

func TestScanMetadataRejectsNonIntegerValueRegardlessOfStrictMode(t *testing.T) {
	r := ScanMetadata(map[string]any{"multiplier": 1.5}, false)
	if r.IsValid || r.Violations[0].Code != CodeNonIntegerValue {
		t.Fatalf("expected NON_INTEGER_VALUE violation even with strict mode off, got %+v", r)
	}
}

func TestValidateSourceRejectsUnknown(t *testing.T) {
	r := ValidateSource(ledger.Source("NOT_A_REAL_SOURCE"))
	if r.IsValid || r.Violations[0].Code != CodeInvalidSource {
		t.Fatalf("expected INVALID_SOURCE violation, got %+v", r)
	}
}

func TestValidateSettlementRejectsRakeBreakdownMismatch(t *testing.T) {
	r := ValidateSettlement(DefaultConfig(), SettlementFields{
		RakeTotal:        10,
		HasRakeBreakdown: true,
		ClubShare:        7,
		PlatformShare:    1,
		AgentShare:       1, // 7 + 1 + 1 = 9 != 10
	})
	if r.IsValid {
		t.Fatalf("expected invalid for a rake breakdown that does not sum to rake_total")
	}
}

func TestValidateSettlementAcceptsConsistentBreakdown(t *testing.T) {
	r := ValidateSettlement(DefaultConfig(), SettlementFields{
		PotWinnerAmounts: []int64{90},
		PotTypes:         []string{"main"},
		RakeTotal:        10,
		HasRakeBreakdown: true,
		ClubShare:        7,
		PlatformShare:    1,
		AgentShare:       2,
	})
	if !r.IsValid {
		t.Fatalf("expected valid, got violations %+v", r.Violations)
	}
}

func TestValidateSettlementSkipsRakeBreakdownCheckWhenNotStrict(t *testing.T) {
	r := ValidateSettlement(Config{StrictMode: false}, SettlementFields{
		RakeTotal:        10,
		HasRakeBreakdown: true,
		ClubShare:        7,
		PlatformShare:    1,
		AgentShare:       1, // would mismatch under strict mode
	})
	if !r.IsValid {
		t.Fatalf("expected valid with strict mode off, got violations %+v", r.Violations)
	}
}

func TestCheckNonNegativeRejectsNegative(t *testing.T) {
	r := CheckNonNegative("rake_total", -5)
	if r.IsValid {
		t.Fatalf("expected invalid for a negative rake_total")
	}
}

func TestSanitizeStripsInternalFieldsRecursively(t *testing.T) {
	in := map[string]any{
		"hand_id": "h1",
		"_debug":  "trace data",
		"nested": map[string]any{
			"_raw":  []byte("x"),
			"value": int64(5),
		},
		"list": []any{
			map[string]any{"_internal": "x", "keep": "y"},
		},
	}
	out := Sanitize(in).(map[string]any)

	if _, present := out["_debug"]; present {
		t.Fatalf("_debug should have been stripped")
	}
	nested := out["nested"].(map[string]any)
	if _, present := nested["_raw"]; present {
		t.Fatalf("_raw should have been stripped from nested map")
	}
	if nested["value"] != int64(5) {
		t.Fatalf("nested non-internal value should survive unchanged")
	}
	list := out["list"].([]any)
	elem := list[0].(map[string]any)
	if _, present := elem["_internal"]; present {
		t.Fatalf("_internal should have been stripped inside a list element")
	}
	if elem["keep"] != "y" {
		t.Fatalf("non-internal list element field should survive")
	}

	// the input itself must be untouched.
	if _, stillThere := in["_debug"]; !stillThere {
		t.Fatalf("Sanitize must not mutate its input")
	}
	if !reflect.DeepEqual(in["hand_id"], "h1") {
		t.Fatalf("input hand_id mutated unexpectedly")
	}
}
