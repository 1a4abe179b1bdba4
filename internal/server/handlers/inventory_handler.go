package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/service/dashboard"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/inventory"
)

// InventoryHandler serves stock levels, the purchase ledger and the
// dashboard summary.
type InventoryHandler struct {
	stock     *inventory.Service
	dashboard *dashboard.Service
	pageSize  int
	logger    *zap.Logger
}

func NewInventoryHandler(stock *inventory.Service, dash *dashboard.Service, pageSize int, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{stock: stock, dashboard: dash, pageSize: pageSize, logger: logger}
}

func (h *InventoryHandler) Stock(c *gin.Context) {
	r, err := h.stock.Stock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type purchasesResponse struct {
	Items         []inventory.Purchase `json:"items"`
	Page          int                  `json:"page"`
	PageSize      int                  `json:"pageSize"`
	TotalItems    int                  `json:"totalItems"`
	TotalPages    int                  `json:"totalPages"`
	FeedTotal     float64              `json:"feedTotal"`
	MedicineTotal float64              `json:"medicineTotal"`
	Total         float64              `json:"total"`
}

// Purchases lists feed and medicine purchases. ?type= is all, feed or
// medicine; totals cover every matching purchase, not just the page.
func (h *InventoryHandler) Purchases(c *gin.Context) {
	q, page, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := inventory.ParseItemType(c.Query("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ledger, err := h.stock.Purchases(c.Request.Context(), kind, q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	p := filter.Paginate(ledger.Items, page, h.pageSize)
	c.JSON(http.StatusOK, purchasesResponse{
		Items:         p.Items,
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalItems:    p.TotalItems,
		TotalPages:    p.TotalPages,
		FeedTotal:     ledger.FeedTotal,
		MedicineTotal: ledger.MedicineTotal,
		Total:         ledger.Total,
	})
}

func (h *InventoryHandler) Dashboard(c *gin.Context) {
	s, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
