package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/server/middleware"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// BatchHandler serves batches, their entry ledgers and activities.
type BatchHandler struct {
	svc    *batches.Service
	logger *zap.Logger
}

func NewBatchHandler(svc *batches.Service, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{svc: svc, logger: logger}
}

// List returns one page of batches.
func (h *BatchHandler) List(c *gin.Context) {
	q, page, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.List(c.Request.Context(), q, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BatchHandler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BatchHandler) Create(c *gin.Context) {
	var in models.Batch
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if in.Supervisor == "" {
		in.Supervisor = middleware.Actor(c)
	}

	b, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type completeRequest struct {
	EndDate     string   `json:"endDate"`
	FarmerShare *float64 `json:"farmerShare"`
}

// Complete closes a batch. The body is optional; farmerShare overrides the
// share settled from the farmer rates.
func (h *BatchHandler) Complete(c *gin.Context) {
	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, err)
			return
		}
	}

	b, err := h.svc.Complete(c.Request.Context(), c.Param("id"), req.EndDate, req.FarmerShare)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BatchHandler) Metrics(c *gin.Context) {
	m, err := h.svc.Metrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type quoteRequest struct {
	Birds      int      `json:"birds"`
	AvgWeight  *float64 `json:"avgWeight"`
	PricePerKg *float64 `json:"pricePerKg"`
}

type quoteResponse struct {
	*metrics.SaleDraft
	TotalWeightKg float64 `json:"totalWeightKg"`
	TotalAmount   float64 `json:"totalAmount"`
}

// Quote prices a prospective sale. Weight defaults to the batch's latest
// average and price to the price list entry for that weight.
func (h *BatchHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	weight := metrics.LatestAvgWeight(b)
	if req.AvgWeight != nil {
		weight = *req.AvgWeight
	}
	price := h.svc.DefaultPrice(c.Request.Context(), b, weight, "")

	draft := metrics.NewSaleDraft(price, weight).SetBirds(req.Birds)
	if req.PricePerKg != nil {
		draft.SetPricePerKg(*req.PricePerKg)
	}

	c.JSON(http.StatusOK, quoteResponse{
		SaleDraft:     draft,
		TotalWeightKg: draft.TotalWeightKg(),
		TotalAmount:   draft.Total(),
	})
}

// addEntry adapts one of the ledger's Add*Entry methods to a handler that
// answers with the updated batch and the stored entry.
func addEntry[T any](h *BatchHandler, add func(ctx context.Context, batchID string, in T, addedBy string) (models.Batch, T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, h.logger, err)
			return
		}

		b, entry, err := add(c.Request.Context(), c.Param("id"), in, middleware.Actor(c))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"batch": b, "entry": entry})
	}
}

func (h *BatchHandler) AddDaily() gin.HandlerFunc    { return addEntry(h, h.svc.AddDailyEntry) }
func (h *BatchHandler) AddSale() gin.HandlerFunc     { return addEntry(h, h.svc.AddSalesEntry) }
func (h *BatchHandler) AddFeed() gin.HandlerFunc     { return addEntry(h, h.svc.AddFeedEntry) }
func (h *BatchHandler) AddMedicine() gin.HandlerFunc { return addEntry(h, h.svc.AddMedicineEntry) }
func (h *BatchHandler) AddExpense() gin.HandlerFunc  { return addEntry(h, h.svc.AddExpenseEntry) }
func (h *BatchHandler) AddEggs() gin.HandlerFunc     { return addEntry(h, h.svc.AddEggEntry) }

// Activities lists one entry ledger across all batches.
func (h *BatchHandler) Activities(c *gin.Context) {
	q, page, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Activities(c.Request.Context(), models.ActivityKind(c.Param("kind")), q, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
