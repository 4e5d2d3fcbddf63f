package handlers

import (
	"io"
	"net/http"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/middleware"
	"searchapp_backend/internal/services"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================
// COMPANY SETTINGS HANDLER
// ============================================

type CompanyHandler struct {
	*BaseHandler
	settingsService services.CompanySettingsService
	maxLogoSize     int64
}

func NewCompanyHandler(base *BaseHandler, settingsService services.CompanySettingsService, maxLogoSize int64) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler:     base,
		settingsService: settingsService,
		maxLogoSize:     maxLogoSize,
	}
}

func (h *CompanyHandler) RegisterRoutes(r *gin.RouterGroup) {
	company := r.Group("/company")
	{
		company.GET("/settings", h.GetSettings)

		manage := company.Group("")
		manage.Use(middleware.RequirePermission(auth.PermSettingsManage))
		{
			manage.PUT("/settings", h.UpdateSettings)
			manage.PUT("/settings/logo", h.UploadLogo)
		}
	}
}

func (h *CompanyHandler) GetSettings(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	response, err := h.settingsService.GetSettings(c.Request.Context(), h.GetDB(c), principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanySettingsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.settingsService.UpdateSettings(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UploadLogo - multipart, поле logo
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no logo file provided"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to open uploaded logo"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxLogoSize+1))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read uploaded logo"))
		return
	}

	response, err := h.settingsService.UploadLogo(c.Request.Context(), h.GetDB(c), principal, dto.PhotoUpload{
		OriginalName: fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Data:         data,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
