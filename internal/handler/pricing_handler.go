package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dresscirc/pricing-api/internal/models"
	"github.com/dresscirc/pricing-api/internal/service"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
	"github.com/dresscirc/pricing-api/pkg/response"
)

// PricingHandler exposes the pricing report endpoints.
type PricingHandler struct {
	pricing *service.PricingService
	exports *service.ExportService
}

// NewPricingHandler constructs handler.
func NewPricingHandler(pricing *service.PricingService, exports *service.ExportService) *PricingHandler {
	return &PricingHandler{pricing: pricing, exports: exports}
}

// Compute godoc
// @Summary Compute a pricing report
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body service.PricingReportRequest true "Pricing request"
// @Success 200 {object} response.Envelope
// @Router /pricing/report [post]
func (h *PricingHandler) Compute(c *gin.Context) {
	var req service.PricingReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.pricing.ComputeReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// ExportRequest wraps a pricing request with an output format.
type ExportRequest struct {
	service.PricingReportRequest
	Format string `json:"format"`
}

// Export godoc
// @Summary Compute a pricing report and export it as CSV or PDF
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body ExportRequest true "Pricing request with format"
// @Success 201 {object} response.Envelope
// @Router /pricing/report/export [post]
func (h *PricingHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	format := models.ReportFormat(req.Format)
	if format == "" {
		format = models.ReportFormatCSV
	}
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	report, err := h.pricing.ComputeReport(c.Request.Context(), req.PricingReportRequest)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Export(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
