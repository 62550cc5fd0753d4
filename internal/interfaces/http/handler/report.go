package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/minimart/backend/internal/application/report"
)

// ReportHandler handles stock valuation report endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.StockReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.StockReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/stock-value", h.StockValue)
		reports.GET("/stock-value/:productId", h.ProductStockValue)
		reports.GET("/low-stock", h.LowStock)
	}
}

// StockValue returns the valuation of the full active catalog
func (h *ReportHandler) StockValue(c *gin.Context) {
	report, err := h.reportService.StockValue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ProductStockValue returns the valuation of a single product
func (h *ReportHandler) ProductStockValue(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	line, err := h.reportService.ProductStockValue(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, line)
}

// LowStock returns active products below their minimum stock threshold
func (h *ReportHandler) LowStock(c *gin.Context) {
	lines, err := h.reportService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lines)
}
