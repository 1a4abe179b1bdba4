package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/report"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/filter"
	"github.com/mamadbah2/poultryops/internal/service/inventory"
	"github.com/mamadbah2/poultryops/internal/service/masterdata"
	"github.com/mamadbah2/poultryops/internal/service/registry"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, batches.ErrNotFound),
		errors.Is(err, registry.ErrNotFound),
		errors.Is(err, registry.ErrPincodeNotFound),
		errors.Is(err, masterdata.ErrNotFound),
		errors.Is(err, report.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, batches.ErrInvalidEntry),
		errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, masterdata.ErrInvalidInput),
		errors.Is(err, inventory.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, batches.ErrBatchCompleted):
		return http.StatusConflict
	case errors.Is(err, batches.ErrInsufficientBirds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrLookupUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Internal failures are logged
// and reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// bindQuery reads the listing filters. ids may be repeated or comma separated
// and date bounds must be YYYY-MM-DD.
func bindQuery(c *gin.Context) (filter.Query, int, error) {
	var q filter.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		return filter.Query{}, 0, err
	}

	var ids []string
	for _, raw := range q.IDs {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	q.IDs = ids

	if err := checkDate("startDate", q.StartDate); err != nil {
		return filter.Query{}, 0, err
	}
	if err := checkDate("endDate", q.EndDate); err != nil {
		return filter.Query{}, 0, err
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter.Query{}, 0, errors.New("page must be a positive integer")
		}
		page = n
	}
	return q, page, nil
}

func checkDate(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := models.ParseDate(value); err != nil {
		return fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return nil
}
