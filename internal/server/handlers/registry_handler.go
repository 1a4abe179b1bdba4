package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/registry"
)

// RegistryHandler serves farmers, traders, users and the pincode lookup.
type RegistryHandler struct {
	svc    *registry.Service
	logger *zap.Logger
}

func NewRegistryHandler(svc *registry.Service, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{svc: svc, logger: logger}
}

func (h *RegistryHandler) ListFarmers(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farmers, err := h.svc.ListFarmers(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, farmers)
}

func (h *RegistryHandler) GetFarmer(c *gin.Context) {
	f, err := h.svc.GetFarmer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *RegistryHandler) CreateFarmer(c *gin.Context) {
	var in models.Farmer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	f, err := h.svc.CreateFarmer(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *RegistryHandler) UpdateFarmer(c *gin.Context) {
	var in models.Farmer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	f, err := h.svc.UpdateFarmer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *RegistryHandler) AddShed(c *gin.Context) {
	var in models.Shed
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	f, err := h.svc.AddShed(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *RegistryHandler) ListTraders(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	traders, err := h.svc.ListTraders(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, traders)
}

func (h *RegistryHandler) GetTrader(c *gin.Context) {
	t, err := h.svc.GetTrader(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *RegistryHandler) TraderStats(c *gin.Context) {
	st, err := h.svc.TraderStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *RegistryHandler) CreateTrader(c *gin.Context) {
	var in models.Trader
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	t, err := h.svc.CreateTrader(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *RegistryHandler) UpdateTrader(c *gin.Context) {
	var in models.Trader
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	t, err := h.svc.UpdateTrader(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListUsers filters by ?q= and ?role= ("all" or empty for every role).
func (h *RegistryHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("q"), c.Query("role"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	models.User
	Password string `json:"password" binding:"required"`
}

func (h *RegistryHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), req.User, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

type userStatusRequest struct {
	Status models.PartyStatus `json:"status" binding:"required"`
}

func (h *RegistryHandler) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	u, err := h.svc.SetUserStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Pincode resolves village, district and state for a postal pincode.
func (h *RegistryHandler) Pincode(c *gin.Context) {
	addr, err := h.svc.ResolvePincode(c.Request.Context(), c.Param("pin"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}
