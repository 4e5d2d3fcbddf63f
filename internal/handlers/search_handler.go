package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/middleware"
	"searchapp_backend/internal/services"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// maxStatusBody - тело PUT /status: одно слово, строка JSON или {"status": ...}
const maxStatusBody = 1 << 10

// ============================================
// SEARCH HANDLER
// ============================================

type SearchHandler struct {
	*BaseHandler
	searchService services.SearchService
	photoService  services.PhotoService
	maxPhotoSize  int64
}

func NewSearchHandler(base *BaseHandler, searchService services.SearchService, photoService services.PhotoService, maxPhotoSize int64) *SearchHandler {
	return &SearchHandler{
		BaseHandler:   base,
		searchService: searchService,
		photoService:  photoService,
		maxPhotoSize:  maxPhotoSize,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *SearchHandler) RegisterRoutes(r *gin.RouterGroup) {
	searches := r.Group("/searches")
	{
		searches.POST("", middleware.RequirePermission(auth.PermSearchCreate), h.CreateSearch)
		searches.GET("", h.ListSearches)
		searches.GET("/:id", h.GetSearch)
		searches.PUT("/:id", middleware.RequirePermission(auth.PermSearchEdit), h.UpdateSearch)
		searches.PUT("/:id/status", h.UpdateStatus)
		searches.GET("/:id/photos/:filename", h.GetPhoto)
	}
}

// ============================================
// HANDLERS
// ============================================

// CreateSearch - multipart: поля поиска + photos[] с photo_numbers/photo_sections
func (h *SearchHandler) CreateSearch(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	req, photos, ok := h.parseSearchForm(c)
	if !ok {
		return
	}

	response, err := h.searchService.CreateSearch(c.Request.Context(), h.GetDB(c), principal, req, photos)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateSearch - полная замена полей и набора фото
func (h *SearchHandler) UpdateSearch(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	req, photos, ok := h.parseSearchForm(c)
	if !ok {
		return
	}

	response, err := h.searchService.UpdateSearch(c.Request.Context(), h.GetDB(c), principal, c.Param("id"), req, photos)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SearchHandler) UpdateStatus(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStatusBody+1))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read request body"))
		return
	}
	if len(raw) > maxStatusBody {
		apperrors.HandleError(c, apperrors.NewBadRequestError("status body is too large"))
		return
	}

	status, err := parseStatusBody(raw)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	response, err := h.searchService.UpdateStatus(c.Request.Context(), h.GetDB(c), principal, c.Param("id"), status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SearchHandler) GetSearch(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	response, err := h.searchService.GetSearch(c.Request.Context(), h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SearchHandler) ListSearches(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ListSearchesRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	response, err := h.searchService.ListSearches(c.Request.Context(), h.GetDB(c), principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPhoto отдает байты фото без изменений
func (h *SearchHandler) GetPhoto(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	content, err := h.photoService.Fetch(c.Request.Context(), h.GetDB(c), principal, c.Param("id"), c.Param("filename"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Filename))
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, content.ContentType, content.Data)
}

// ============================================
// PARSING
// ============================================

// parseSearchForm разбирает multipart-форму поиска. JSON-тело тоже
// принимается, но без фото.
func (h *SearchHandler) parseSearchForm(c *gin.Context) (*dto.SearchRequest, *dto.PhotoSet, bool) {
	var req dto.SearchRequest

	if c.ContentType() == gin.MIMEJSON {
		if !h.BindAndValidate_JSON(c, &req) {
			return nil, nil, false
		}
		return &req, nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to parse multipart form: "+err.Error()))
		return nil, nil, false
	}

	if !h.BindAndValidate_Form(c, &req) {
		return nil, nil, false
	}

	fieldErrors := map[string]string{}
	if req.Latitude, err = parseOptionalFloat(c.PostForm("latitude")); err != nil {
		fieldErrors["latitude"] = "must be a number"
	}
	if req.Longitude, err = parseOptionalFloat(c.PostForm("longitude")); err != nil {
		fieldErrors["longitude"] = "must be a number"
	}

	photos := &dto.PhotoSet{}
	if photos.Numbers, err = parsePhotoNumbers(form.Value["photo_numbers"]); err != nil {
		fieldErrors["photo_numbers"] = err.Error()
	}
	photos.Sections = parsePhotoSections(form.Value["photo_sections"])

	if len(fieldErrors) > 0 {
		apperrors.HandleError(c, apperrors.ValidationError(fieldErrors))
		return nil, nil, false
	}

	for _, fh := range form.File["photos"] {
		upload, err := h.readPhoto(fh)
		if err != nil {
			h.HandleServiceError(c, err)
			return nil, nil, false
		}
		photos.Uploads = append(photos.Uploads, upload)
	}

	return &req, photos, true
}

// readPhoto читает не больше лимита+1 байт: превышение ловит проверка размера в сервисе
func (h *SearchHandler) readPhoto(fh *multipart.FileHeader) (dto.PhotoUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return dto.PhotoUpload{}, apperrors.NewBadRequestError("failed to open uploaded photo " + fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxPhotoSize+1))
	if err != nil {
		return dto.PhotoUpload{}, apperrors.NewBadRequestError("failed to read uploaded photo " + fh.Filename)
	}

	return dto.PhotoUpload{
		OriginalName: fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Data:         data,
	}, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parsePhotoNumbers: повторяющееся поле, одно значение через запятую или JSON-массив
func parsePhotoNumbers(values []string) ([]int, error) {
	var numbers []int
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.HasPrefix(value, "[") {
			var batch []int
			if err := json.Unmarshal([]byte(value), &batch); err != nil {
				return nil, fmt.Errorf("must be a list of integers")
			}
			numbers = append(numbers, batch...)
			continue
		}

		for _, part := range strings.Split(value, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", part)
			}
			numbers = append(numbers, n)
		}
	}
	return numbers, nil
}

// parsePhotoSections: повторяющееся поле или один JSON-массив строк
func parsePhotoSections(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var sections []string
		if err := json.Unmarshal([]byte(values[0]), &sections); err == nil {
			return sections
		}
	}
	return values
}

// parseStatusBody принимает FINISHED, "FINISHED" или {"status":"FINISHED"}
func parseStatusBody(raw []byte) (string, error) {
	body := strings.TrimSpace(string(raw))
	switch {
	case body == "":
		return "", fmt.Errorf("status is required")
	case strings.HasPrefix(body, `"`):
		var status string
		if err := json.Unmarshal([]byte(body), &status); err != nil {
			return "", fmt.Errorf("invalid status body")
		}
		return status, nil
	case strings.HasPrefix(body, "{"):
		var payload struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return "", fmt.Errorf("invalid status body")
		}
		return payload.Status, nil
	default:
		return body, nil
	}
}
