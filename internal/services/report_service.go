package services

import (
	"context"
	"fmt"
	"time"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/pdf"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService interface {
	RenderSearchPDF(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string) (*dto.PDFDocument, error)
	// RenderSummaryPDF: все id проверяются до сборки, частичного PDF не бывает
	RenderSummaryPDF(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchIDsRequest) (*dto.PDFDocument, error)
	ListReports(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.ListReportsRequest) (*dto.ReportListResponse, error)
	GetDashboard(ctx context.Context, db *gorm.DB, principal auth.Principal) (*dto.DashboardResponse, error)
}

type reportService struct {
	searchRepo      repositories.SearchRepository
	reportRepo      repositories.ReportRepository
	settingsService CompanySettingsService
	renderer        *pdf.Renderer
	maxSummary      int
}

func NewReportService(
	searchRepo repositories.SearchRepository,
	reportRepo repositories.ReportRepository,
	settingsService CompanySettingsService,
	renderer *pdf.Renderer,
	maxSummary int,
) ReportService {
	if maxSummary <= 0 {
		maxSummary = 50
	}
	return &reportService{
		searchRepo:      searchRepo,
		reportRepo:      reportRepo,
		settingsService: settingsService,
		renderer:        renderer,
		maxSummary:      maxSummary,
	}
}

// ============================================
// PDF
// ============================================

func (s *reportService) RenderSearchPDF(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string) (*dto.PDFDocument, error) {
	if !principal.Can(auth.PermReportRender) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "render reports")
	}

	search, err := loadSearch(db, s.searchRepo, principal, searchID)
	if err != nil {
		return nil, err
	}

	branding, err := s.branding(ctx, db, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.RenderSearch(ctx, branding, search)
	if err != nil {
		logger.CtxWithError(ctx, "failed to render search PDF", err, "search_id", search.ID)
		return nil, apperrors.ErrRenderFailed(err)
	}

	return &dto.PDFDocument{
		Filename: fmt.Sprintf("rapport_recherche_%s.pdf", search.ID),
		Data:     data,
	}, nil
}

func (s *reportService) RenderSummaryPDF(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchIDsRequest) (*dto.PDFDocument, error) {
	if !principal.Can(auth.PermReportRender) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "render reports")
	}

	ids := uniqueIDs(req.SearchIDs)
	if len(ids) == 0 {
		return nil, apperrors.ErrEmptySearchIDs()
	}
	if len(ids) > s.maxSummary {
		return nil, apperrors.ErrTooManySearches(s.maxSummary)
	}

	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.ErrSearchNotFound(id)
		}
	}

	found, err := s.searchRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byID := make(map[string]models.Search, len(found))
	for _, search := range found {
		byID[search.ID] = search
	}

	// Порядок разделов = порядок запроса
	searches := make([]models.Search, 0, len(ids))
	for _, id := range ids {
		search, ok := byID[id]
		if !ok {
			return nil, apperrors.ErrSearchNotFound(id)
		}
		if !principal.SameCompany(search.CompanyID) {
			return nil, apperrors.ErrSearchAccessDenied(id)
		}
		searches = append(searches, search)
	}

	branding, err := s.branding(ctx, db, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.RenderSummary(ctx, branding, searches)
	if err != nil {
		logger.CtxWithError(ctx, "failed to render summary PDF", err, "searches", len(searches))
		return nil, apperrors.ErrRenderFailed(err)
	}

	return &dto.PDFDocument{
		Filename: fmt.Sprintf("rapport_synthese_%s.pdf", time.Now().Format("20060102_150405")),
		Data:     data,
	}, nil
}

// branding - шапка из настроек компании; без настроек - нейтральная
func (s *reportService) branding(ctx context.Context, db *gorm.DB, companyID string) (pdf.Branding, error) {
	settings, err := s.settingsService.Lookup(ctx, db, companyID)
	if err != nil {
		return pdf.Branding{}, err
	}
	if settings == nil {
		return pdf.NeutralBranding(), nil
	}
	return pdf.Branding{
		CompanyName:  settings.CompanyName,
		AddressLines: settings.Address.Data().Lines(),
		Logo:         s.settingsService.LoadLogo(ctx, settings),
	}, nil
}

// ============================================
// Списки и статистика
// ============================================

func (s *reportService) ListReports(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.ListReportsRequest) (*dto.ReportListResponse, error) {
	if !principal.Can(auth.PermReportRead) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "read reports")
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	filter := repositories.ReportFilter{
		CompanyID: principal.CompanyID,
		Page:      page,
		PageSize:  pageSize,
	}
	if !principal.Can(auth.PermSearchReadAll) {
		filter.SearchOwnerID = principal.UserID
	}

	reports, total, err := s.reportRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.NewReportResponse(&reports[i]))
	}

	return &dto.ReportListResponse{
		Reports:    items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: dto.TotalPages(total, pageSize),
	}, nil
}

func (s *reportService) GetDashboard(ctx context.Context, db *gorm.DB, principal auth.Principal) (*dto.DashboardResponse, error) {
	if !principal.Can(auth.PermSearchRead) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "read statistics")
	}

	ownerID := ""
	if !principal.Can(auth.PermSearchReadAll) {
		ownerID = principal.UserID
	}

	counts, err := s.searchRepo.CountByStatus(db, principal.CompanyID, ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	reports, err := s.reportRepo.Count(db, principal.CompanyID, ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.DashboardResponse{
		TotalReports:     reports,
		SearchesByStatus: make(map[string]int64, len(models.SearchStatuses)),
	}
	for _, st := range models.SearchStatuses {
		resp.SearchesByStatus[string(st)] = counts[st]
		resp.TotalSearches += counts[st]
	}
	return resp, nil
}
