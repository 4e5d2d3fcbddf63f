package services

import (
	"context"
	"strings"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// SharingService передает поиски в бюро. Каждый id обрабатывается
// независимо, в своей транзакции; ошибки собираются, а не прерывают пакет.
type SharingService interface {
	ShareToBureau(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchIDsRequest) (*dto.ShareResponse, error)
}

type sharingService struct {
	searchRepo    repositories.SearchRepository
	reportRepo    repositories.ReportRepository
	searchService SearchService
	concurrency   int
}

func NewSharingService(
	searchRepo repositories.SearchRepository,
	reportRepo repositories.ReportRepository,
	searchService SearchService,
	concurrency int,
) SharingService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &sharingService{
		searchRepo:    searchRepo,
		reportRepo:    reportRepo,
		searchService: searchService,
		concurrency:   concurrency,
	}
}

type shareResult struct {
	report *models.Report
	err    error
}

func (s *sharingService) ShareToBureau(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchIDsRequest) (*dto.ShareResponse, error) {
	if !principal.Can(auth.PermReportShare) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "share searches")
	}

	ids := uniqueIDs(req.SearchIDs)
	if len(ids) == 0 {
		return nil, apperrors.ErrEmptySearchIDs()
	}

	results := make([]shareResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			report, err := s.shareOne(gctx, db, principal, id)
			results[i] = shareResult{report: report, err: err}
			return nil
		})
	}
	_ = g.Wait()

	resp := &dto.ShareResponse{
		Reports:  make([]dto.ReportResponse, 0, len(ids)),
		Failures: make([]dto.ShareFailure, 0),
	}
	for i, res := range results {
		if res.err == nil {
			resp.Reports = append(resp.Reports, dto.NewReportResponse(res.report))
			continue
		}

		appErr, ok := apperrors.AsAppError(res.err)
		if !ok || appErr.HTTPCode >= 500 {
			logger.CtxWithError(ctx, "share to bureau failed", res.err, "search_id", ids[i])
			appErr = apperrors.InternalError(res.err)
		}
		resp.Failures = append(resp.Failures, dto.ShareFailure{
			SearchID: ids[i],
			Code:     string(appErr.Code),
			Message:  appErr.Message,
		})
	}
	resp.ReportsCreated = len(resp.Reports)

	logger.CtxInfo(ctx, "searches shared to bureau",
		"requested", len(ids),
		"reports_created", resp.ReportsCreated,
		"failures", len(resp.Failures),
	)
	return resp, nil
}

// shareOne: проверка поиска, заглушка отчета и перевод в SHARED_TO_BUREAU
func (s *sharingService) shareOne(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	search, err := loadSearch(tx, s.searchRepo, principal, searchID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		CompanyID: search.CompanyID,
		SearchID:  search.ID,
		Title:     "Rapport - " + search.Location,
		CreatedBy: principal.UserID,
	}
	if err := s.reportRepo.Create(tx, report); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.searchService.TransitionStatus(tx, principal, search, models.SearchStatusSharedToBureau); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	report.Search = search
	return report, nil
}

// uniqueIDs убирает пробелы и повторы, сохраняя порядок
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
