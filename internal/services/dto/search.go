package dto

import (
	"time"

	"searchapp_backend/internal/models"
)

// ====================
//  Request DTOs
// ====================

// SearchRequest - текстовые поля multipart-формы создания/редактирования.
// Координаты проверяет geo.Resolver, чтобы вернуть INVALID_COORDINATE;
// из формы их разбирает хэндлер (пустое поле = координата не задана).
type SearchRequest struct {
	Location     string   `form:"location" json:"location" validate:"required,max=255"`
	Description  string   `form:"description" json:"description" validate:"max=10000"`
	Observations string   `form:"observations" json:"observations" validate:"max=10000"`
	Latitude     *float64 `form:"-" json:"latitude"`
	Longitude    *float64 `form:"-" json:"longitude"`
}

type ListSearchesRequest struct {
	Status   string `form:"status" json:"status" validate:"omitempty,is-search-status"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
}

// PhotoUpload - одно загруженное фото. DeclaredType - Content-Type части формы.
type PhotoUpload struct {
	OriginalName string
	DeclaredType string
	Size         int64
	Data         []byte
}

// PhotoSet - фото запроса с номерами и секциями в порядке отправки
type PhotoSet struct {
	Uploads  []PhotoUpload
	Numbers  []int
	Sections []string
}

func (p *PhotoSet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Uploads)
}

// ====================
//  Response DTOs
// ====================

type PhotoResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Number       int    `json:"number"`
	SectionID    string `json:"section_id,omitempty"`
	Position     int    `json:"position"`
	URL          string `json:"url"`
}

type SearchResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	UserID       string          `json:"user_id"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
	Observations string          `json:"observations"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Status       string          `json:"status"`
	Photos       []PhotoResponse `json:"photos"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type SearchListResponse struct {
	Searches   []SearchResponse `json:"searches"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

type StatusUpdateResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// PhotoContent - бинарное содержимое фото для отдачи как есть
type PhotoContent struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ====================
//  Mappers
// ====================

func PhotoURL(searchID, filename string) string {
	return "/api/v1/searches/" + searchID + "/photos/" + filename
}

func NewSearchResponse(search *models.Search) *SearchResponse {
	photos := make([]PhotoResponse, 0, len(search.Photos))
	for _, p := range search.Photos {
		photos = append(photos, PhotoResponse{
			Filename:     p.Filename,
			OriginalName: p.OriginalName,
			ContentType:  p.ContentType,
			Size:         p.Size,
			Number:       p.Number,
			SectionID:    p.SectionID,
			Position:     p.Position,
			URL:          PhotoURL(search.ID, p.Filename),
		})
	}

	return &SearchResponse{
		ID:           search.ID,
		CompanyID:    search.CompanyID,
		UserID:       search.UserID,
		Location:     search.Location,
		Description:  search.Description,
		Observations: search.Observations,
		Latitude:     search.Latitude,
		Longitude:    search.Longitude,
		Status:       string(search.Status),
		Photos:       photos,
		CreatedAt:    search.CreatedAt,
		UpdatedAt:    search.UpdatedAt,
	}
}
