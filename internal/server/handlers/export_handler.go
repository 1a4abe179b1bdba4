package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/report"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/registry"
)

const (
	csvContentType = "text/csv; charset=utf-8"
	pdfContentType = "application/pdf"
)

// ReportArchive stores generated PDF reports.
type ReportArchive interface {
	StoreReport(ctx context.Context, batchCode string, pdf []byte, generatedAt time.Time) (string, error)
}

// ExportHandler serves CSV exports and batch PDF reports.
type ExportHandler struct {
	batches  *batches.Service
	registry *registry.Service
	archive  ReportArchive
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportHandler wires the export endpoints. archive may be nil.
func NewExportHandler(b *batches.Service, r *registry.Service, archive ReportArchive, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{batches: b, registry: r, archive: archive, logger: logger, now: time.Now}
}

func (h *ExportHandler) attachment(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, body)
}

func (h *ExportHandler) stamp() string {
	return h.now().Format(models.DateLayout)
}

// Batches exports the batches matching the listing filters.
func (h *ExportHandler) Batches(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.batches.Filter(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out, err := report.CSV(rows, report.BatchColumns)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachment(c, "batches-"+h.stamp()+".csv", csvContentType, out)
}

// Activities exports one entry ledger across batches.
func (h *ExportHandler) Activities(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := models.ActivityKind(c.Param("kind"))
	rows, err := h.batches.FilterActivities(c.Request.Context(), kind, q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out, err := report.CSV(rows, report.ActivityColumns)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachment(c, fmt.Sprintf("%s-activities-%s.csv", kind, h.stamp()), csvContentType, out)
}

func (h *ExportHandler) Farmers(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.registry.ListFarmers(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out, err := report.CSV(rows, report.FarmerColumns)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachment(c, "farmers-"+h.stamp()+".csv", csvContentType, out)
}

func (h *ExportHandler) Traders(c *gin.Context) {
	q, _, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.registry.ListTraders(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out, err := report.CSV(rows, report.TraderColumns)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.attachment(c, "traders-"+h.stamp()+".csv", csvContentType, out)
}

func (h *ExportHandler) render(c *gin.Context) (models.Batch, []byte, time.Time, bool) {
	ctx := c.Request.Context()
	b, err := h.batches.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return models.Batch{}, nil, time.Time{}, false
	}
	m, err := h.batches.Metrics(ctx, b.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return models.Batch{}, nil, time.Time{}, false
	}

	at := h.now()
	pdf, err := report.BatchPDF(b, m, at)
	if err != nil {
		respondError(c, h.logger, err)
		return models.Batch{}, nil, time.Time{}, false
	}
	return b, pdf, at, true
}

// BatchReport downloads the PDF report of a batch.
func (h *ExportHandler) BatchReport(c *gin.Context) {
	b, pdf, _, ok := h.render(c)
	if !ok {
		return
	}
	h.attachment(c, fmt.Sprintf("batch-report-%s.pdf", b.BatchCode), pdfContentType, pdf)
}

// ArchiveReport renders the PDF report and stores it in the archive.
func (h *ExportHandler) ArchiveReport(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive not configured"})
		return
	}

	b, pdf, at, ok := h.render(c)
	if !ok {
		return
	}

	key, err := h.archive.StoreReport(c.Request.Context(), b.BatchCode, pdf, at)
	if err != nil {
		h.logger.Error("report archive failed", zap.String("batch", b.BatchCode), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to archive report"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "bytes": len(pdf)})
}
