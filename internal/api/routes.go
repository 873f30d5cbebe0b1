package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/feltledger/internal/boundary"
	"github.com/rawblock/feltledger/internal/feed"
	"github.com/rawblock/feltledger/internal/invariant"
	"github.com/rawblock/feltledger/internal/query"
	"github.com/rawblock/feltledger/internal/recorder"
	"github.com/rawblock/feltledger/internal/revenue"
	"github.com/rawblock/feltledger/internal/store"
	"github.com/rawblock/feltledger/pkg/ledger"
)

// APIHandler wires the read-only core views and the recorder onto HTTP
// handlers. It holds no state of its own beyond these references.
type APIHandler struct {
	st          *store.Store
	rec         *recorder.Recorder
	hub         *feed.Hub
	view        *query.View
	checker     *invariant.Checker
	platform    *revenue.PlatformRevenueView
	club        *revenue.ClubRevenueView
	agent       *revenue.AgentCommissionView
	tableRake   *revenue.TableRakeTimelineView
	boundaryCfg boundary.Config
}

// SetupRouter builds the full Gin router: public GET endpoints over
// query/invariant/revenue, and bearer-auth + rate-limited mutating
// endpoints over the recorder and the risk-insight layer.
func SetupRouter(st *store.Store, rec *recorder.Recorder, hub *feed.Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	boundaryCfg := boundary.DefaultConfig()
	if os.Getenv("BOUNDARY_STRICT_MODE") == "false" {
		boundaryCfg.StrictMode = false
	}

	h := &APIHandler{
		st:          st,
		rec:         rec,
		hub:         hub,
		view:        query.New(st),
		checker:     invariant.New(st),
		platform:    revenue.NewPlatformRevenueView(st),
		club:        revenue.NewClubRevenueView(st),
		agent:       revenue.NewAgentCommissionView(st),
		tableRake:   revenue.NewTableRakeTimelineView(st),
		boundaryCfg: boundaryCfg,
	}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", h.handleHealth)
		pub.GET("/stream", hub.Subscribe)
		pub.GET("/entries", h.handleQueryEntries)
		pub.GET("/report", h.handleExportForReporting)
		pub.GET("/party/:type/:id/summary", h.handlePartySummary)
		pub.GET("/table/:id/summary", h.handleTableSummary)
		pub.GET("/club/:id/summary", h.handleClubSummary)
		pub.GET("/agent/:id/summary", h.handleAgentSummary)
		pub.GET("/hand/:id/analysis", h.handleHandAnalysis)
		pub.GET("/invariants", h.handleCheckInvariants)
		pub.GET("/revenue/platform", h.handlePlatformRevenue)
		pub.GET("/revenue/club/:id", h.handleClubRevenue)
		pub.GET("/revenue/agent/:id", h.handleAgentRevenue)
		pub.GET("/revenue/agents", h.handleAllAgentsRevenue)
		pub.GET("/revenue/table/:id/timeline", h.handleTableTimeline)
	}

	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/boundary/scan", h.handleBoundaryScan)
		auth.POST("/settlements", h.handleRecordSettlement)
		auth.POST("/timefees", h.handleRecordTimeFee)
		auth.POST("/adjustments", h.handleRecordAdjustment)
		auth.POST("/bonuses", h.handleRecordBonus)
		auth.POST("/risk/health", h.handleComputeHealthScore)
		auth.POST("/risk/anomalies", h.handleClassifyAnomalies)
		auth.POST("/risk/trend", h.handleComputeTrend)
		auth.POST("/risk/rank", h.handleRankEntities)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "operational",
		"engine":   "feltledger",
		"sequence": h.st.CurrentSequence(),
	})
}

func parsePartyType(s string) (ledger.PartyType, bool) {
	switch strings.ToLower(s) {
	case "player":
		return ledger.PartyPlayer, true
	case "club":
		return ledger.PartyClub, true
	case "agent":
		return ledger.PartyAgent, true
	case "platform":
		return ledger.PartyPlatform, true
	default:
		return 0, false
	}
}

func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// windowFromQuery reads "from"/"to" millisecond-timestamp query params into
// a *query.TimeWindow, nil (all-time) when neither is set.
func windowFromQuery(c *gin.Context) *query.TimeWindow {
	from, to := queryInt64(c, "from"), queryInt64(c, "to")
	if from == 0 && to == 0 {
		return nil
	}
	return &query.TimeWindow{From: from, To: to}
}

func revenueWindowFromQuery(c *gin.Context) *revenue.TimeWindow {
	from, to := queryInt64(c, "from"), queryInt64(c, "to")
	if from == 0 && to == 0 {
		return nil
	}
	return &revenue.TimeWindow{From: from, To: to}
}

func granularityFromQuery(c *gin.Context) revenue.Granularity {
	switch strings.ToUpper(c.DefaultQuery("granularity", "DAY")) {
	case "HOUR":
		return revenue.Hour
	case "WEEK":
		return revenue.Week
	case "MONTH":
		return revenue.Month
	default:
		return revenue.Day
	}
}

func groupByFromQuery(c *gin.Context) revenue.GroupDimension {
	switch strings.ToUpper(c.DefaultQuery("groupBy", "TABLE")) {
	case "CLUB":
		return revenue.GroupByClub
	case "SOURCE":
		return revenue.GroupBySource
	case "TIME":
		return revenue.GroupByTime
	default:
		return revenue.GroupByTable
	}
}

func (h *APIHandler) handleQueryEntries(c *gin.Context) {
	params := query.Params{
		PlayerID:      c.Query("playerId"),
		ClubID:        c.Query("clubId"),
		AgentID:       c.Query("agentId"),
		TableID:       c.Query("tableId"),
		HandID:        c.Query("handId"),
		Source:        ledger.Source(c.Query("source")),
		Category:      ledger.Category(c.Query("category")),
		FromTimestamp: queryInt64(c, "fromTimestamp"),
		ToTimestamp:   queryInt64(c, "toTimestamp"),
		FromSequence:  queryInt64(c, "fromSequence"),
		ToSequence:    queryInt64(c, "toSequence"),
		BatchID:       ledger.LedgerBatchId(c.Query("batchId")),
		Limit:         queryInt(c, "limit"),
		Offset:        queryInt(c, "offset"),
	}
	if pt, ok := parsePartyType(c.Query("partyType")); ok {
		params.PartyType = &pt
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.view.Query(params)})
}

func (h *APIHandler) handleExportForReporting(c *gin.Context) {
	params := query.Params{
		HandID:  c.Query("handId"),
		TableID: c.Query("tableId"),
		ClubID:  c.Query("clubId"),
		Limit:   queryInt(c, "limit"),
		Offset:  queryInt(c, "offset"),
	}
	c.JSON(http.StatusOK, gin.H{"rows": h.view.ExportForReporting(params)})
}

func (h *APIHandler) handlePartySummary(c *gin.Context) {
	pt, ok := parsePartyType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown party type"})
		return
	}
	summary := h.view.PartySummary(pt, c.Param("id"), windowFromQuery(c))
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) handleTableSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.TableSummary(c.Param("id"), windowFromQuery(c)))
}

func (h *APIHandler) handleClubSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.ClubSummary(c.Param("id"), windowFromQuery(c)))
}

func (h *APIHandler) handleAgentSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.AgentSummary(c.Param("id"), windowFromQuery(c)))
}

func (h *APIHandler) handleHandAnalysis(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.AnalyzeHand(c.Param("id")))
}

func (h *APIHandler) handleCheckInvariants(c *gin.Context) {
	cfg := invariant.DefaultConfig()
	if c.Query("strict") == "true" {
		cfg = invariant.StrictConfig()
	}
	c.JSON(http.StatusOK, h.checker.CheckAll(cfg, time.Now().UnixMilli()))
}

func (h *APIHandler) handlePlatformRevenue(c *gin.Context) {
	summary := h.platform.Summary(revenueWindowFromQuery(c), groupByFromQuery(c), granularityFromQuery(c))
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) handleClubRevenue(c *gin.Context) {
	summary := h.club.Summary(c.Param("id"), revenueWindowFromQuery(c), groupByFromQuery(c), granularityFromQuery(c))
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) handleAgentRevenue(c *gin.Context) {
	total := h.agent.PerAgent(c.Param("id"), revenueWindowFromQuery(c))
	c.JSON(http.StatusOK, gin.H{"agentId": c.Param("id"), "totalCommission": total})
}

func (h *APIHandler) handleAllAgentsRevenue(c *gin.Context) {
	c.JSON(http.StatusOK, h.agent.AllAgents(revenueWindowFromQuery(c)))
}

func (h *APIHandler) handleTableTimeline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timeline": h.tableRake.Timeline(c.Param("id"), revenueWindowFromQuery(c))})
}

func (h *APIHandler) handleBoundaryScan(c *gin.Context) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, boundary.ScanString(req.Field, req.Value))
}
