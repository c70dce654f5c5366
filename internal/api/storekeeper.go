package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storeroom/internal/ledger"
	"storeroom/internal/models"
	"storeroom/internal/storekeeper"
)

// defaultRestockReason is used when a restock arrives without a reason
const defaultRestockReason = "Scheduled Restock"

// StorekeeperAPI represents the HTTP surface of the storekeeper dashboard
type StorekeeperAPI struct {
	Router  *gin.Engine
	Service *storekeeper.Service
	Hub     *Hub
}

// NewStorekeeperAPI creates a new storekeeper API instance
func NewStorekeeperAPI(svc *storekeeper.Service, hub *Hub, logger zerolog.Logger) *StorekeeperAPI {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	api := &StorekeeperAPI{
		Router:  router,
		Service: svc,
		Hub:     hub,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *StorekeeperAPI) setupRoutes() {
	// Health check
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Storeroom API is running"})
	})
	a.Router.GET("/ws", a.Hub.handleWebSocket)

	v1 := a.Router.Group("/api/v1")
	{
		// Dashboard
		v1.GET("/summary", a.GetSummary)
		v1.GET("/technicians", a.GetTechnicians)
		v1.GET("/activity", a.GetActivity)
		v1.GET("/audit", a.GetAudit)

		// Inventory management
		v1.GET("/inventory", a.ListInventory)
		v1.POST("/inventory", a.CreateItem)
		v1.GET("/inventory/:id", a.GetItem)
		v1.GET("/inventory/:id/history", a.GetHistory)
		v1.POST("/inventory/:id/issue", a.IssueStock)
		v1.POST("/inventory/:id/restock", a.Restock)

		// Material requests
		v1.GET("/requests", a.ListRequests)
		v1.POST("/requests", a.SubmitRequest)
		v1.GET("/requests/:id", a.GetRequest)
		v1.PUT("/requests/:id/status", a.SetRequestStatus)
		v1.POST("/requests/:id/issue", a.FulfillRequest)
	}
}

// Dashboard handlers

func (a *StorekeeperAPI) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, a.Service.Summary(c.Request.Context()))
}

func (a *StorekeeperAPI) GetTechnicians(c *gin.Context) {
	c.JSON(http.StatusOK, a.Service.Technicians())
}

func (a *StorekeeperAPI) GetActivity(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	activity, err := a.Service.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (a *StorekeeperAPI) GetAudit(c *gin.Context) {
	discrepancies := a.Service.Audit(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"consistent": len(discrepancies) == 0, "discrepancies": discrepancies})
}

// Inventory management handlers

func (a *StorekeeperAPI) ListInventory(c *gin.Context) {
	items, err := a.Service.SearchItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *StorekeeperAPI) CreateItem(c *gin.Context) {
	var in ledger.NewItem
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := a.Service.CreateItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (a *StorekeeperAPI) GetItem(c *gin.Context) {
	item, err := a.Service.Item(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *StorekeeperAPI) GetHistory(c *gin.Context) {
	history, err := a.Service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (a *StorekeeperAPI) IssueStock(c *gin.Context) {
	var req struct {
		Quantity   int    `json:"quantity"`
		Technician string `json:"technician"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := a.Service.IssueStock(c.Request.Context(), c.Param("id"), req.Quantity, req.Technician)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *StorekeeperAPI) Restock(c *gin.Context) {
	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = defaultRestockReason
	}
	item, err := a.Service.Restock(c.Request.Context(), c.Param("id"), req.Quantity, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Material request handlers

func (a *StorekeeperAPI) ListRequests(c *gin.Context) {
	reqs, err := a.Service.Requests(c.Request.Context(), models.RequestStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (a *StorekeeperAPI) SubmitRequest(c *gin.Context) {
	var in ledger.NewRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := a.Service.SubmitRequest(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (a *StorekeeperAPI) GetRequest(c *gin.Context) {
	req, err := a.Service.Request(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (a *StorekeeperAPI) SetRequestStatus(c *gin.Context) {
	var body struct {
		Status models.RequestStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := a.Service.SetRequestStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (a *StorekeeperAPI) FulfillRequest(c *gin.Context) {
	req, items, err := a.Service.FulfillRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "items": items})
}
