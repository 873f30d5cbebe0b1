// Package boundary implements the external-value boundary guard (C6): pure
// validators that forbid any external-value concept (payment, wallet,
// currency, crypto, gateway vocabulary) from entering the ledger, and reject
// malformed inputs before they ever reach the recorder. Grounded on the
// teacher's internal/heuristics/address_watchlist.go map-based scanning
// shape, repurposed from "flag a watchlisted address" to "reject a forbidden
// keyword" — same O(1)-lookup-over-a-closed-set mechanics, opposite intent.
package boundary

import (
	"math"
	"strings"
)

// Config configures the boundary guard's strictness. See the governing
// spec's external interfaces section.
type Config struct {
	// StrictMode gates the forbidden-keyword/metadata-field scan and the
	// rake-breakdown conservation check. Non-negativity, source validity,
	// and integer-value checks run regardless — they guard structural
	// correctness, not external-value vocabulary, so turning strict mode
	// off never lets a malformed amount or an unrecognised source through.
	StrictMode bool
}

// DefaultConfig returns the spec-mandated default {true}.
func DefaultConfig() Config {
	return Config{StrictMode: true}
}

// Code names one violation kind a validator can report.
type Code string

const (
	CodeNonIntegerValue  Code = "NON_INTEGER_VALUE"
	CodeForbiddenConcept Code = "FORBIDDEN_CONCEPT"
	CodeInvalidSource    Code = "INVALID_SOURCE"
)

// Violation is one rejected field: what rule it broke, where, and the
// offending value.
type Violation struct {
	Code   Code
	Field  string
	Detail string
}

// Result is what every validator returns; it never raises.
type Result struct {
	IsValid    bool
	Violations []Violation
}

func ok() Result { return Result{IsValid: true} }

func fail(violations ...Violation) Result {
	return Result{IsValid: false, Violations: violations}
}

// forbiddenKeywords is the closed, case-insensitive substring list covering
// payment, wallet, currency, crypto, and external-gateway vocabulary.
var forbiddenKeywords = []string{
	"payment", "pay", "payout", "deposit", "withdraw", "withdrawal", "transfer",
	"send", "receive", "wallet", "balance", "account", "bank", "card", "credit",
	"currency", "exchange", "rate", "conversion", "convert", "forex", "crypto",
	"blockchain", "chain", "usdt", "usdc", "bitcoin", "btc", "eth", "token",
	"coin", "nft", "web3", "defi", "swap", "gateway", "processor", "merchant",
	"stripe", "paypal", "venmo",
}

// forbiddenMetadataFields is the closed list of external identifier/account
// field names that must never appear as a metadata key.
var forbiddenMetadataFields = map[string]struct{}{
	"paymentId": {}, "transactionId": {}, "walletAddress": {}, "accountNumber": {},
	"cardNumber": {}, "bankAccount": {}, "cryptoAddress": {}, "blockchainTx": {},
	"externalRef": {}, "externalId": {},
}

// ScanString checks one free-text field (description, pot_type, a metadata
// string value) for the first forbidden keyword it contains. fieldName
// labels the violation so callers can report which field failed.
func ScanString(fieldName, value string) Result {
	lower := strings.ToLower(value)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(lower, kw) {
			return fail(Violation{Code: CodeForbiddenConcept, Field: fieldName, Detail: kw})
		}
	}
	return ok()
}

// ScanMetadata checks every key in m against the forbidden-metadata-field
// list and every string value against ScanString when strictMode is set,
// and — regardless of strictMode — checks every numeric value is integral.
func ScanMetadata(m map[string]any, strictMode bool) Result {
	var violations []Violation
	for k, v := range m {
		if strictMode {
			if _, forbidden := forbiddenMetadataFields[k]; forbidden {
				violations = append(violations, Violation{Code: CodeForbiddenConcept, Field: "metadata." + k, Detail: k})
				continue
			}
		}
		switch val := v.(type) {
		case string:
			if strictMode {
				if r := ScanString("metadata."+k, val); !r.IsValid {
					violations = append(violations, r.Violations...)
				}
			}
		case float64:
			if r := CheckIntegerValue("metadata."+k, val); !r.IsValid {
				violations = append(violations, r.Violations...)
			}
		}
	}
	if len(violations) > 0 {
		return fail(violations...)
	}
	return ok()
}

// CheckIntegerValue rejects a metadata value carrying a fractional component.
// Ledger amounts are int64 end-to-end and so cannot themselves be
// non-integer, but caller-supplied metadata is an open map[string]any and
// can smuggle in a float with a fraction — the one place this boundary
// still needs to enforce the spec's "non-integer value" violation kind.
func CheckIntegerValue(fieldName string, v float64) Result {
	if v != math.Trunc(v) {
		return fail(Violation{Code: CodeNonIntegerValue, Field: fieldName, Detail: "value must be an integer"})
	}
	return ok()
}

// CheckNonNegative rejects a negative amount field that must never be
// negative (pot win, rake, fee, uncalled return): a negative here means
// value was sourced from outside the ledger, which the guard forbids
// outright rather than merely flagging.
func CheckNonNegative(fieldName string, amount int64) Result {
	if amount < 0 {
		return fail(Violation{Code: CodeForbiddenConcept, Field: fieldName, Detail: "negative amount implies externally-sourced value"})
	}
	return ok()
}
