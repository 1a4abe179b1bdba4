package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

const defaultHistoryLimit = 30

// SnapshotHistory reads stored nightly snapshots.
type SnapshotHistory interface {
	History(ctx context.Context, batchID string, limit int64) ([]models.BatchSnapshot, error)
}

// SnapshotHandler serves the snapshot history of a batch.
type SnapshotHandler struct {
	history SnapshotHistory
	logger  *zap.Logger
}

// NewSnapshotHandler wires the handler. history may be nil when MongoDB is
// not configured.
func NewSnapshotHandler(history SnapshotHistory, logger *zap.Logger) *SnapshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHandler{history: history, logger: logger}
}

// History lists the newest snapshots first, ?limit= defaulting to 30.
func (h *SnapshotHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot store not configured"})
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	snaps, err := h.history.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}
