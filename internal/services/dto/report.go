package dto

import (
	"time"

	"searchapp_backend/internal/models"
)

// SearchIDsRequest - тело share-to-bureau и generate-summary-pdf.
// Пустой список отклоняют сервисы, а не биндинг.
type SearchIDsRequest struct {
	SearchIDs []string `json:"search_ids"`
}

type ListReportsRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// ShareFailure - поиск, который не удалось передать в бюро
type ShareFailure struct {
	SearchID string `json:"search_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

type ShareResponse struct {
	ReportsCreated int              `json:"reports_created"`
	Reports        []ReportResponse `json:"reports"`
	Failures       []ShareFailure   `json:"failures"`
}

type ReportResponse struct {
	ID        string    `json:"id"`
	SearchID  string    `json:"search_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Заполняются, если поиск подгружен
	Location     string `json:"location,omitempty"`
	SearchStatus string `json:"search_status,omitempty"`
}

type ReportListResponse struct {
	Reports    []ReportResponse `json:"reports"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// PDFDocument - собранный PDF; байты не сохраняются
type PDFDocument struct {
	Filename string
	Data     []byte
}

type DashboardResponse struct {
	TotalSearches    int64            `json:"total_searches"`
	TotalReports     int64            `json:"total_reports"`
	SearchesByStatus map[string]int64 `json:"searches_by_status"`
}

func NewReportResponse(report *models.Report) ReportResponse {
	resp := ReportResponse{
		ID:        report.ID,
		SearchID:  report.SearchID,
		Title:     report.Title,
		Content:   report.Content,
		CreatedBy: report.CreatedBy,
		CreatedAt: report.CreatedAt,
	}
	if report.Search != nil {
		resp.Location = report.Search.Location
		resp.SearchStatus = string(report.Search.Status)
	}
	return resp
}

// TotalPages - число страниц для пагинированных списков
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
