package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// canonicalize renders v as the deterministic byte sequence the checksum hashes
// over: strings are quoted, integers stringified, booleans lowercase, missing
// values render as the null sentinel, arrays are bracketed, and object keys are
// sorted lexicographically. Any change here is a wire break.
func canonicalize(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = canonicalize(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ":" + canonicalize(val[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		// A caller's canonicalFields() produced a shape outside the grammar above;
		// that is a programming error, not a runtime input problem.
		panic(fmt.Sprintf("ledger: non-canonicalizable value %T", v))
	}
}

// mixHash is the deterministic, non-cryptographic integer mixer mandated for
// checksum generation: h = h*31 + c (equivalently (h<<5)-h+c), accumulated over
// the canonical string's bytes and wrapped in 32 bits.
func mixHash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = (h << 5) - h + uint32(s[i])
	}
	return h
}

// checksum formats the fixed wire checksum "<prefix>_<8-hex-lowercase>" over a
// canonical field map. prefix identifies the value kind (e.g. "ent", "bat",
// "hs", "anom").
func checksum(prefix string, fields map[string]any) string {
	return fmt.Sprintf("%s_%08x", prefix, mixHash(canonicalize(fields)))
}

// Checksum is checksum's exported form, for packages outside pkg/ledger that
// need the same "<prefix>_<8-hex>" wire checksum over their own canonical
// input summary (the risk-insight layer's health scores, anomalies, trends,
// and rankings).
func Checksum(prefix string, fields map[string]any) string {
	return checksum(prefix, fields)
}

// optionalString renders an absent (empty) optional field as the canonical
// null sentinel instead of an empty string, so presence/absence round-trips
// through the checksum.
func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// metadataCanonical copies a metadata bag into the canonical map shape, or
// returns nil (rendered as "null") when metadata was never set.
func metadataCanonical(m map[string]any) any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
