package handlers

import (
	"fmt"
	"net/http"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/middleware"
	"searchapp_backend/internal/services"
	"searchapp_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ============================================
// REPORT HANDLER
// ============================================

type ReportHandler struct {
	*BaseHandler
	sharingService services.SharingService
	reportService  services.ReportService
}

func NewReportHandler(base *BaseHandler, sharingService services.SharingService, reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		BaseHandler:    base,
		sharingService: sharingService,
		reportService:  reportService,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.POST("/share-to-bureau", middleware.RequirePermission(auth.PermReportShare), h.ShareToBureau)

		render := reports.Group("")
		render.Use(middleware.RequirePermission(auth.PermReportRender))
		{
			render.POST("/generate-pdf/:id", h.GenerateSearchPDF)
			render.POST("/generate-summary-pdf", h.GenerateSummaryPDF)
		}
	}

	r.GET("/stats/dashboard", h.GetDashboard)
}

// ============================================
// HANDLERS
// ============================================

// ShareToBureau - частичный успех: 200 с отчетами и списком неудач
func (h *ReportHandler) ShareToBureau(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SearchIDsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.sharingService.ShareToBureau(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ReportHandler) GenerateSearchPDF(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	doc, err := h.reportService.RenderSearchPDF(c.Request.Context(), h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	writePDF(c, doc)
}

func (h *ReportHandler) GenerateSummaryPDF(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SearchIDsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	doc, err := h.reportService.RenderSummaryPDF(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	writePDF(c, doc)
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ListReportsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	response, err := h.reportService.ListReports(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ReportHandler) GetDashboard(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	response, err := h.reportService.GetDashboard(c.Request.Context(), h.GetDB(c), principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func writePDF(c *gin.Context, doc *dto.PDFDocument) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
