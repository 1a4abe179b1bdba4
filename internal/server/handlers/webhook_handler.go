package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/server/middleware"
	service "github.com/mamadbah2/poultryops/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/poultryops/pkg/clients/whatsapp"
)

// WebhookHandler handles the supervisor intake webhook and manual outbound messages.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify responds to Meta's webhook verification challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive runs supervisor commands delivered by Meta. Meta redelivers
// non-2xx callbacks, so command failures are logged and still answered 200.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("supervisor command failed", zap.String("object", payload.Object), zap.Error(err))
	}
	c.Status(http.StatusOK)
}

// SendMessage lets an admin message a supervisor or farmer directly.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	err := h.svc.SendOutbound(c.Request.Context(), req)
	switch {
	case errors.Is(err, whatsappclient.ErrInvalidRecipient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("outbound message failed", zap.String("actor", middleware.Actor(c)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
	default:
		c.Status(http.StatusAccepted)
	}
}
