package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/masterdata"
)

// MasterDataHandler serves bird types, price bands and the configured rates.
type MasterDataHandler struct {
	svc    *masterdata.Service
	logger *zap.Logger
}

func NewMasterDataHandler(svc *masterdata.Service, logger *zap.Logger) *MasterDataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterDataHandler{svc: svc, logger: logger}
}

func (h *MasterDataHandler) ListBirdTypes(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"
	types, err := h.svc.ListBirdTypes(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *MasterDataHandler) CreateBirdType(c *gin.Context) {
	var in models.BirdType
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	t, err := h.svc.CreateBirdType(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *MasterDataHandler) UpdateBirdType(c *gin.Context) {
	var in models.BirdType
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	t, err := h.svc.UpdateBirdType(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *MasterDataHandler) ListPriceBands(c *gin.Context) {
	bands, err := h.svc.ListPriceBands(c.Request.Context(), c.Query("birdTypeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bands)
}

func (h *MasterDataHandler) CreatePriceBand(c *gin.Context) {
	var in models.PriceBand
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	p, err := h.svc.CreatePriceBand(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *MasterDataHandler) UpdatePriceBand(c *gin.Context) {
	var in models.PriceBand
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	p, err := h.svc.UpdatePriceBand(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Price resolves the sale price for ?chickType=&weight=&date=.
func (h *MasterDataHandler) Price(c *gin.Context) {
	chick := c.Query("chickType")
	if chick == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chickType is required"})
		return
	}
	weight, err := strconv.ParseFloat(c.Query("weight"), 64)
	if err != nil || weight <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight must be a positive number of grams"})
		return
	}

	q, err := h.svc.PriceFor(c.Request.Context(), models.ChickType(chick), weight, c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *MasterDataHandler) Rates(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rates())
}
