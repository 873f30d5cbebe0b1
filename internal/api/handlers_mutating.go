package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/feltledger/internal/boundary"
	"github.com/rawblock/feltledger/internal/recorder"
	"github.com/rawblock/feltledger/internal/risk"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// nowMillis stamps the HTTP-layer-only identifiers the risk endpoints mint
// (trend/health IDs, anomaly detected-at). The deterministic core below this
// layer never reads a clock of its own; this is the one sanctioned caller-side
// clock read for the risk API surface, mirroring internal/store's discipline.
func nowMillis() int64 { return time.Now().UnixMilli() }

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func boundaryViolationResponse(c *gin.Context, res boundary.Result) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "boundary violation", "violations": res.Violations})
}

func recorderResultResponse(c *gin.Context, res recorder.Result, hub interface {
	PublishBatch(ledger.Batch, []ledger.Entry)
}) {
	if res.IsDuplicate {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request", "isDuplicate": true})
		return
	}
	if res.Err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Err.Error()})
		return
	}
	hub.PublishBatch(res.Batch, res.Entries)
	c.JSON(http.StatusCreated, gin.H{"batch": res.Batch, "entries": res.Entries})
}

// settlementRequest mirrors recorder.SettlementInput over the wire.
type settlementRequest struct {
	HandID          string                    `json:"handId"`
	TableID         string                    `json:"tableId"`
	ClubID          string                    `json:"clubId"`
	StateVersion    string                    `json:"stateVersion"`
	PotWinners      []recorder.PotWinner      `json:"potWinners"`
	RakeTotal       int64                     `json:"rakeTotal"`
	RakeBreakdown   *recorder.RakeBreakdown   `json:"rakeBreakdown"`
	UncalledReturns []recorder.UncalledReturn `json:"uncalledReturns"`
}

func (h *APIHandler) handleRecordSettlement(c *gin.Context) {
	var req settlementRequest
	if !bindJSON(c, &req) {
		return
	}

	potAmounts := make([]int64, len(req.PotWinners))
	potTypes := make([]string, len(req.PotWinners))
	for i, w := range req.PotWinners {
		potAmounts[i] = w.Amount
		potTypes[i] = w.PotType
	}
	uncalledAmounts := make([]int64, len(req.UncalledReturns))
	for i, u := range req.UncalledReturns {
		uncalledAmounts[i] = u.Amount
	}
	fields := boundary.SettlementFields{
		PotWinnerAmounts:      potAmounts,
		PotTypes:              potTypes,
		UncalledReturnAmounts: uncalledAmounts,
		RakeTotal:             req.RakeTotal,
	}
	if req.RakeBreakdown != nil {
		fields.HasRakeBreakdown = true
		fields.ClubShare = req.RakeBreakdown.ClubShare
		fields.PlatformShare = req.RakeBreakdown.PlatformShare
		fields.AgentShare = req.RakeBreakdown.AgentShare
	}
	if res := boundary.ValidateSettlement(h.boundaryCfg, fields); !res.IsValid {
		boundaryViolationResponse(c, res)
		return
	}

	result := h.rec.RecordSettlement(recorder.SettlementInput{
		HandID:          req.HandID,
		TableID:         req.TableID,
		ClubID:          req.ClubID,
		StateVersion:    req.StateVersion,
		PotWinners:      req.PotWinners,
		RakeTotal:       req.RakeTotal,
		RakeBreakdown:   req.RakeBreakdown,
		UncalledReturns: req.UncalledReturns,
	})
	recorderResultResponse(c, result, h.hub)
}

type timeFeeRequest struct {
	TableID       string `json:"tableId"`
	ClubID        string `json:"clubId"`
	PlayerID      string `json:"playerId"`
	FeeAmount     int64  `json:"feeAmount"`
	PeriodMinutes int    `json:"periodMinutes"`
	StateVersion  string `json:"stateVersion"`
}

func (h *APIHandler) handleRecordTimeFee(c *gin.Context) {
	var req timeFeeRequest
	if !bindJSON(c, &req) {
		return
	}
	if res := boundary.ValidateTimeFee(h.boundaryCfg, boundary.TimeFeeFields{FeeAmount: req.FeeAmount}); !res.IsValid {
		boundaryViolationResponse(c, res)
		return
	}
	result := h.rec.RecordTimeFee(recorder.TimeFeeInput{
		TableID:       req.TableID,
		ClubID:        req.ClubID,
		PlayerID:      req.PlayerID,
		FeeAmount:     req.FeeAmount,
		PeriodMinutes: req.PeriodMinutes,
		StateVersion:  req.StateVersion,
	})
	recorderResultResponse(c, result, h.hub)
}

type adjustmentRequest struct {
	PartyType    string `json:"partyType"`
	PartyID      string `json:"partyId"`
	Delta        int64  `json:"delta"`
	Reason       string `json:"reason"`
	StateVersion string `json:"stateVersion"`
	TableID      string `json:"tableId"`
	HandID       string `json:"handId"`
	ClubID       string `json:"clubId"`
}

func (h *APIHandler) handleRecordAdjustment(c *gin.Context) {
	var req adjustmentRequest
	if !bindJSON(c, &req) {
		return
	}
	party, err := ledger.NewAffectedParty(req.PartyType, req.PartyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.boundaryCfg.StrictMode {
		if res := boundary.ScanString("reason", req.Reason); !res.IsValid {
			boundaryViolationResponse(c, res)
			return
		}
	}
	entry, err := h.rec.RecordAdjustment(recorder.AdjustmentInput{
		AffectedParty: party,
		Delta:         req.Delta,
		Reason:        req.Reason,
		StateVersion:  req.StateVersion,
		TableID:       req.TableID,
		HandID:        req.HandID,
		ClubID:        req.ClubID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.hub.PublishEntry(entry)
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

type bonusRequest struct {
	PlayerID     string `json:"playerId"`
	Amount       int64  `json:"amount"`
	StateVersion string `json:"stateVersion"`
	TableID      string `json:"tableId"`
	ClubID       string `json:"clubId"`
	Description  string `json:"description"`
}

func (h *APIHandler) handleRecordBonus(c *gin.Context) {
	var req bonusRequest
	if !bindJSON(c, &req) {
		return
	}
	if res := boundary.CheckNonNegative("amount", req.Amount); !res.IsValid {
		boundaryViolationResponse(c, res)
		return
	}
	if h.boundaryCfg.StrictMode {
		if res := boundary.ScanString("description", req.Description); !res.IsValid {
			boundaryViolationResponse(c, res)
			return
		}
	}
	entry, err := h.rec.RecordBonus(recorder.BonusInput{
		PlayerID:     req.PlayerID,
		Amount:       req.Amount,
		StateVersion: req.StateVersion,
		TableID:      req.TableID,
		ClubID:       req.ClubID,
		Description:  req.Description,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.hub.PublishEntry(entry)
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *APIHandler) handleComputeHealthScore(c *gin.Context) {
	var req risk.EntityInput
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, risk.ComputeHealthScore(req, nowMillis()))
}

func (h *APIHandler) handleClassifyAnomalies(c *gin.Context) {
	var req risk.EntityInput
	if !bindJSON(c, &req) {
		return
	}
	anomalies, counts := risk.ClassifyAnomalies(req, nowMillis())
	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies, "counts": counts})
}

func (h *APIHandler) handleComputeTrend(c *gin.Context) {
	var req struct {
		EntityID string            `json:"entityId"`
		Metric   string            `json:"metric"`
		Points   []risk.TrendPoint `json:"points"`
	}
	if !bindJSON(c, &req) {
		return
	}
	trend, ok := risk.ComputeTrend(req.EntityID, req.Metric, req.Points, nowMillis())
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough points to compute a trend"})
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *APIHandler) handleRankEntities(c *gin.Context) {
	var req struct {
		Entities []risk.RiskRankingInput `json:"entities"`
	}
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, risk.RankEntities(req.Entities))
}
