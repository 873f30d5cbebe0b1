package invariant

// Config selects which invariants check_all runs and how it behaves.
type Config struct {
	EnabledInvariants []Id
	FailFast          bool
	IncludeWarnings   bool
	MaxScanEntries    int
}

// DefaultConfig runs all five invariants, no fail-fast.
func DefaultConfig() Config {
	return Config{EnabledInvariants: allInvariants, FailFast: false, IncludeWarnings: true}
}

// StrictConfig runs all five invariants and stops at the first failure.
func StrictConfig() Config {
	return Config{EnabledInvariants: allInvariants, FailFast: true, IncludeWarnings: true}
}

// PerformanceConfig runs only the cheaper, highest-value checks: I1, I2, I5.
func PerformanceConfig() Config {
	return Config{
		EnabledInvariants: []Id{NonNegativeBalance, SystemConservation, AttributionImmutable},
		FailFast:          false,
		IncludeWarnings:   false,
	}
}

var allInvariants = []Id{
	NonNegativeBalance,
	SystemConservation,
	DeterministicReplay,
	AppendOnlyIntegrity,
	AttributionImmutable,
}

// Counts tallies results by severity.
type Counts struct {
	Critical int
	Error    int
	Warning  int
}

// Report is the aggregated outcome of check_all.
type Report struct {
	AllPassed  bool
	Results    []Result
	Violations []Violation
	Counts     Counts
	DurationNs int64
}

// CheckAll runs cfg.EnabledInvariants in declared order, optionally stopping
// at the first failure. nowMillis stamps every violation_id and detected_at;
// the checker never reads a clock of its own.
func (c *Checker) CheckAll(cfg Config, nowMillis int64) Report {
	rep := Report{AllPassed: true}
	for _, id := range cfg.EnabledInvariants {
		result := c.runOne(id, nowMillis)
		rep.Results = append(rep.Results, result)
		if !result.Passed {
			rep.AllPassed = false
			rep.Violations = append(rep.Violations, *result.Violation)
			tally(&rep.Counts, result.Violation.Severity)
			if cfg.FailFast {
				break
			}
		}
	}
	return rep
}

func tally(c *Counts, sev Severity) {
	switch sev {
	case SeverityCritical:
		c.Critical++
	case SeverityError:
		c.Error++
	case SeverityWarning:
		c.Warning++
	}
}

func (c *Checker) runOne(id Id, nowMillis int64) Result {
	switch id {
	case NonNegativeBalance:
		return c.CheckNonNegativeBalance(nowMillis)
	case SystemConservation:
		return c.CheckSystemConservation(nowMillis)
	case DeterministicReplay:
		return c.CheckDeterministicReplay(nowMillis)
	case AppendOnlyIntegrity:
		return c.CheckAppendOnlyIntegrity(nowMillis)
	case AttributionImmutable:
		return c.CheckAttributionImmutability(nowMillis)
	default:
		return Result{Invariant: id, Passed: true}
	}
}
