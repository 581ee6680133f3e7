package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-layout/internal/application/service"
	"github.com/garyjia/invoice-layout/internal/container"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/export"
	"github.com/garyjia/invoice-layout/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	documents service.DocumentService
	health    HealthReporter
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(documents service.DocumentService, health HealthReporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		documents: documents,
		health:    health,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                               `json:"status"`
	Timestamp  string                               `json:"timestamp"`
	Version    string                               `json:"version"`
	Formats    []string                             `json:"formats"`
	Components map[string]container.ComponentHealth `json:"components,omitempty"`
}

// ListExportsRequest represents query parameters for listing exports
type ListExportsRequest struct {
	InvoiceNumber string `form:"invoice_number"`
	Limit         int    `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
		Formats:   h.documents.Formats(),
	}
	status := http.StatusOK
	if h.health != nil {
		st := h.health.Health()
		resp.Components = st.Components
		if !st.Overall {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{Success: status == http.StatusOK, Data: resp})
}

// ListDesigns handles GET /api/v1/designs
func (h *Handlers) ListDesigns(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.documents.Designs()})
}

// PreviewDocument handles POST /api/v1/documents/preview
func (h *Handlers) PreviewDocument(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	result, err := h.documents.Preview(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to preview document", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ExportDocument handles POST /api/v1/documents/export?format=pdf|png|xlsx
func (h *Handlers) ExportDocument(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", entity.ExportFormatPDF))
	if !entity.IsExportFormat(format) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unsupported format %q", format),
		})
		return
	}

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	result, err := h.documents.Export(c.Request.Context(), req, format)
	if err != nil {
		h.fail(c, "Failed to export document", err)
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: true, Data: result})
}

// ListExports handles GET /api/v1/exports?invoice_number=...
func (h *Handlers) ListExports(c *gin.Context) {
	var req ListExportsRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.InvoiceNumber == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invoice_number is required",
		})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	records, err := h.documents.ListExports(c.Request.Context(), req.InvoiceNumber, req.Limit)
	if err != nil {
		h.fail(c, "Failed to list exports", err)
		return
	}
	if records == nil {
		records = []*entity.ExportRecord{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// GetExport handles GET /api/v1/exports/:id
func (h *Handlers) GetExport(c *gin.Context) {
	rec, err := h.documents.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get export", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rec})
}

// DownloadExport handles GET /api/v1/exports/:id/download?page=N
func (h *Handlers) DownloadExport(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid page"})
		return
	}

	part, err := h.documents.OpenExportPart(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		h.fail(c, "Failed to open export part", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, part.Name))
	c.Data(http.StatusOK, part.ContentType, part.Data)
}

// bindRequest decodes and validates a document request, writing a 400
// response when it is unusable. With ?strict=true negative quantities and
// amounts are rejected instead of being rendered with diagnostics.
func (h *Handlers) bindRequest(c *gin.Context) (entity.DocumentRequest, bool) {
	var req entity.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return req, false
	}

	sanitizeRequest(&req)
	strict, _ := strconv.ParseBool(c.DefaultQuery("strict", "false"))
	if err := validateRequest(req, strict); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return req, false
	}
	return req, true
}

func sanitizeRequest(req *entity.DocumentRequest) {
	for _, s := range []*string{req.Invoice.Number, req.Invoice.DocumentType, req.Business.Name, req.Client.Name} {
		if s != nil {
			*s = utils.SanitizeString(*s)
		}
	}
	for i := range req.Invoice.Items {
		req.Invoice.Items[i].Name = utils.SanitizeString(req.Invoice.Items[i].Name)
	}
}

func validateRequest(req entity.DocumentRequest, strict bool) error {
	if req.DesignID != "" {
		if err := utils.ValidateDesignID(req.DesignID); err != nil {
			return err
		}
	}
	if req.Invoice.CurrencyCode != "" {
		if err := utils.ValidateCurrencyCode(req.Invoice.CurrencyCode); err != nil {
			return err
		}
	}
	for _, email := range []*string{req.Business.Email, req.Client.Email} {
		if email != nil && *email != "" {
			if err := utils.ValidateEmail(*email); err != nil {
				return err
			}
		}
	}
	if !strict {
		return nil
	}

	for i, item := range req.Invoice.Items {
		if err := utils.ValidateQuantity(item.Quantity); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := utils.ValidateAmount(fmt.Sprintf("item %d unit price", i+1), item.UnitPrice); err != nil {
			return err
		}
	}
	inv := req.Invoice
	for _, a := range []struct {
		field string
		value *decimal.Decimal
	}{
		{"subtotal", inv.Subtotal},
		{"tax_amount", inv.TaxAmount},
		{"discount", inv.Discount},
		{"total_amount", inv.TotalAmount},
	} {
		if a.value == nil {
			continue
		}
		if err := utils.ValidateAmount(a.field, *a.value); err != nil {
			return err
		}
	}
	return nil
}

// fail maps service errors onto HTTP statuses
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrExportNotFound), errors.Is(err, service.ErrPartNotFound):
		status = http.StatusNotFound
	case errors.Is(err, export.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	} else {
		h.logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}
