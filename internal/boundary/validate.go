package boundary

import "github.com/rawblock/feltledger/pkg/ledger"

func merge(results ...Result) Result {
	var violations []Violation
	for _, r := range results {
		violations = append(violations, r.Violations...)
	}
	if len(violations) > 0 {
		return fail(violations...)
	}
	return ok()
}

// ValidateSource checks that source is one of the seven recognised kinds.
func ValidateSource(source ledger.Source) Result {
	if !source.Valid() {
		return fail(Violation{Code: CodeInvalidSource, Field: "source", Detail: string(source)})
	}
	return ok()
}

// EntryFields is the subset of an entry input the boundary validates:
// description/metadata text plus the source kind. Amount positivity is
// checked per-operation via CheckNonNegative, since which amounts must be
// non-negative depends on the operation (a plain adjustment may legitimately
// be negative; a pot win may not).
type EntryFields struct {
	Source      ledger.Source
	Description string
	Metadata    map[string]any
}

// ValidateEntryFields runs the source check unconditionally and, when
// cfg.StrictMode is set, the forbidden-keyword/metadata-field scans common
// to every entry-shaped input.
func ValidateEntryFields(cfg Config, f EntryFields) Result {
	results := []Result{ValidateSource(f.Source), ScanMetadata(f.Metadata, cfg.StrictMode)}
	if cfg.StrictMode {
		results = append(results, ScanString("description", f.Description))
	}
	return merge(results...)
}

// SettlementFields is the subset of a settlement input the boundary
// validates beyond ValidateEntryFields: pot winner/uncalled-return amounts
// and the rake breakdown's conservation.
type SettlementFields struct {
	PotWinnerAmounts      []int64
	PotTypes              []string
	UncalledReturnAmounts []int64
	RakeTotal             int64
	HasRakeBreakdown      bool
	ClubShare             int64
	PlatformShare         int64
	AgentShare            int64
}

// ValidateSettlement applies the non-negativity checks to every pot-win,
// uncalled-return, and rake amount unconditionally, and — only when
// cfg.StrictMode is set — scans pot_type strings and, when a rake breakdown
// is present, requires club_share + platform_share + agent_share to equal
// rake_total exactly (no value created or destroyed in the split).
func ValidateSettlement(cfg Config, f SettlementFields) Result {
	var results []Result
	for i, amt := range f.PotWinnerAmounts {
		results = append(results, CheckNonNegative("pot_winners", amt))
		if cfg.StrictMode && i < len(f.PotTypes) {
			results = append(results, ScanString("pot_type", f.PotTypes[i]))
		}
	}
	for _, amt := range f.UncalledReturnAmounts {
		results = append(results, CheckNonNegative("uncalled_returns", amt))
	}
	results = append(results, CheckNonNegative("rake_total", f.RakeTotal))

	if cfg.StrictMode && f.HasRakeBreakdown {
		sum := f.ClubShare + f.PlatformShare + f.AgentShare
		if sum != f.RakeTotal {
			results = append(results, fail(Violation{
				Code:   CodeForbiddenConcept,
				Field:  "rake_breakdown",
				Detail: "club_share + platform_share + agent_share must equal rake_total",
			}))
		}
	}
	return merge(results...)
}

// TimeFeeFields is the subset of a time-fee input the boundary validates.
type TimeFeeFields struct {
	FeeAmount int64
}

// ValidateTimeFee requires fee_amount to be non-negative. cfg is accepted
// for call-site uniformity with the other Validate* functions; time-fee
// inputs carry no strict-mode-gated field.
func ValidateTimeFee(cfg Config, f TimeFeeFields) Result {
	return CheckNonNegative("fee_amount", f.FeeAmount)
}
