package ledger

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// LedgerEntryId, LedgerBatchId and AgentId are branded identifier types; callers
// should not construct them from arbitrary strings outside this package except
// when deserialising a previously persisted id.
type (
	LedgerEntryId string
	LedgerBatchId string
	ViolationId   string
	AgentId       string
	PlayerId      string
	ClubId        string
	TableId       string
	HandId        string
	PlatformId    string
	StateVersion  string
)

var idCounter uint64

func init() {
	seedIDCounter()
}

// seedIDCounter reseeds the process-local id counter from a uuid-derived random
// value, so two feltledger processes started within the same millisecond never
// mint colliding ids even though the counter itself is a plain increasing
// integer in the generated id's text.
func seedIDCounter() {
	seed := uuid.New()
	atomic.StoreUint64(&idCounter, binary.BigEndian.Uint64(seed[:8])>>16)
}

// ResetIDCounterForTest resets the id counter to zero. It exists only so tests
// can assert on literal generated ids; production code must never call it.
func ResetIDCounterForTest() {
	atomic.StoreUint64(&idCounter, 0)
}

func nextCounter() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// NewEntryID mints "lent_<ms>_<counter>". tsMillis must come from the writer's
// single sanctioned clock read; this function never reads the clock itself.
func NewEntryID(tsMillis int64) LedgerEntryId {
	return LedgerEntryId(fmt.Sprintf("lent_%d_%d", tsMillis, nextCounter()))
}

// NewBatchID mints "lbat_<ms>_<counter>".
func NewBatchID(tsMillis int64) LedgerBatchId {
	return LedgerBatchId(fmt.Sprintf("lbat_%d_%d", tsMillis, nextCounter()))
}

// NewViolationID mints "viol_<ms>_<counter>".
func NewViolationID(tsMillis int64) ViolationId {
	return ViolationId(fmt.Sprintf("viol_%d_%d", tsMillis, nextCounter()))
}

// NewHealthScoreID mints "hs_<entity>_<period>_<ts>".
func NewHealthScoreID(entity, period string, tsMillis int64) string {
	return fmt.Sprintf("hs_%s_%s_%d", entity, period, tsMillis)
}

// NewAnomalyID mints "anom_<kind>_<entity>_<period>_<ts>".
func NewAnomalyID(kind, entity, period string, tsMillis int64) string {
	return fmt.Sprintf("anom_%s_%s_%s_%d", kind, entity, period, tsMillis)
}

// NewTrendID mints "ta_<entity>_<metric>_<ts>".
func NewTrendID(entity, metric string, tsMillis int64) string {
	return fmt.Sprintf("ta_%s_%s_%d", entity, metric, tsMillis)
}

// NewRiskRankingID mints "rr_<type>_<period>_<ts>".
func NewRiskRankingID(rankingType, period string, tsMillis int64) string {
	return fmt.Sprintf("rr_%s_%s_%d", rankingType, period, tsMillis)
}
