package services

import (
	"context"
	"errors"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/geo"
	"searchapp_backend/internal/lifecycle"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type SearchService interface {
	CreateSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchRequest, photos *dto.PhotoSet) (*dto.SearchResponse, error)
	UpdateSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string, req *dto.SearchRequest, photos *dto.PhotoSet) (*dto.SearchResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID, rawStatus string) (*dto.StatusUpdateResponse, error)
	GetSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string) (*dto.SearchResponse, error)
	ListSearches(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.ListSearchesRequest) (*dto.SearchListResponse, error)

	// TransitionStatus применяет переход в уже открытой транзакции (используется SharingService)
	TransitionStatus(tx *gorm.DB, principal auth.Principal, search *models.Search, to models.SearchStatus) error
}

type searchService struct {
	searchRepo      repositories.SearchRepository
	photoService    PhotoService
	settingsService CompanySettingsService
	geo             *geo.Resolver
}

func NewSearchService(
	searchRepo repositories.SearchRepository,
	photoService PhotoService,
	settingsService CompanySettingsService,
	resolver *geo.Resolver,
) SearchService {
	return &searchService{
		searchRepo:      searchRepo,
		photoService:    photoService,
		settingsService: settingsService,
		geo:             resolver,
	}
}

// ============================================
// Создание и редактирование
// ============================================

func (s *searchService) CreateSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.SearchRequest, photos *dto.PhotoSet) (*dto.SearchResponse, error) {
	if !principal.Can(auth.PermSearchCreate) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "create searches")
	}

	point, err := s.resolveCoordinates(ctx, db, principal.CompanyID, req)
	if err != nil {
		return nil, err
	}

	prepared, err := s.photoService.Prepare(photos)
	if err != nil {
		return nil, err
	}

	search := &models.Search{
		CompanyID:    principal.CompanyID,
		UserID:       principal.UserID,
		Location:     req.Location,
		Description:  req.Description,
		Observations: req.Observations,
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		Status:       models.SearchStatusActive,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.searchRepo.Create(tx, search); err != nil {
		return nil, apperrors.InternalError(err)
	}

	batch, err := s.photoService.Attach(ctx, tx, search.ID, prepared)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		batch.Discard(ctx)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "search created", "search_id", search.ID, "photos", len(batch.Photos))
	return s.GetSearch(ctx, db, principal, search.ID)
}

// UpdateSearch - полная замена: текст, координаты и весь набор фото.
// id, company_id, user_id и статус не меняются.
func (s *searchService) UpdateSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string, req *dto.SearchRequest, photos *dto.PhotoSet) (*dto.SearchResponse, error) {
	if !principal.Can(auth.PermSearchEdit) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "edit searches")
	}

	existing, err := loadSearch(db, s.searchRepo, principal, searchID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsEditable(existing.Status) {
		return nil, apperrors.ErrInvalidTransition(string(existing.Status), "edit")
	}

	point, err := s.resolveCoordinates(ctx, db, principal.CompanyID, req)
	if err != nil {
		return nil, err
	}

	prepared, err := s.photoService.Prepare(photos)
	if err != nil {
		return nil, err
	}

	update := &models.Search{
		BaseModel:    models.BaseModel{ID: existing.ID},
		Location:     req.Location,
		Description:  req.Description,
		Observations: req.Observations,
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.searchRepo.UpdateContent(tx, update); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSearchNotFound):
			return nil, apperrors.ErrSearchNotFound(existing.ID)
		case errors.Is(err, repositories.ErrStatusConflict):
			// архивировали между чтением и записью
			return nil, apperrors.ErrInvalidTransition(string(models.SearchStatusArchived), "edit")
		}
		return nil, apperrors.InternalError(err)
	}

	batch, err := s.photoService.Replace(ctx, tx, existing.ID, prepared)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		batch.Discard(ctx)
		return nil, apperrors.InternalError(err)
	}
	batch.Finalize(ctx)

	logger.CtxInfo(ctx, "search updated", "search_id", existing.ID, "photos", len(batch.Photos))
	return s.GetSearch(ctx, db, principal, existing.ID)
}

func (s *searchService) resolveCoordinates(ctx context.Context, db *gorm.DB, companyID string, req *dto.SearchRequest) (geo.Point, error) {
	// Гео-дефолт тенанта читаем до начала транзакции
	var tenantDefault *geo.Point
	if req.Latitude == nil || req.Longitude == nil {
		point, err := s.settingsService.GeoDefault(ctx, db, companyID)
		if err != nil {
			return geo.Point{}, err
		}
		tenantDefault = point
	}
	return s.geo.Resolve(req.Latitude, req.Longitude, tenantDefault)
}

// ============================================
// Статусы
// ============================================

func (s *searchService) UpdateStatus(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID, rawStatus string) (*dto.StatusUpdateResponse, error) {
	to, err := lifecycle.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperrors.ErrUnknownStatus(rawStatus)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	search, err := loadSearch(tx, s.searchRepo, principal, searchID)
	if err != nil {
		return nil, err
	}

	from := search.Status
	if err := s.TransitionStatus(tx, principal, search, to); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "search status changed", "search_id", search.ID, "from", from, "to", to)
	return &dto.StatusUpdateResponse{
		Message: "Search status updated",
		Status:  string(to),
	}, nil
}

func (s *searchService) TransitionStatus(tx *gorm.DB, principal auth.Principal, search *models.Search, to models.SearchStatus) error {
	from := search.Status
	if !lifecycle.IsTransitionAllowed(from, to) {
		return apperrors.ErrInvalidTransition(string(from), string(to))
	}
	if !lifecycle.RoleCanTarget(principal.Role, to) {
		return apperrors.ErrRoleNotAllowed(string(principal.Role), "set status "+string(to))
	}

	if err := s.searchRepo.UpdateStatus(tx, search.ID, from, to); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSearchNotFound):
			return apperrors.ErrSearchNotFound(search.ID)
		case errors.Is(err, repositories.ErrStatusConflict):
			return apperrors.ErrInvalidTransition(string(from), string(to))
		}
		return apperrors.InternalError(err)
	}

	search.Status = to
	return nil
}

// ============================================
// Чтение
// ============================================

func (s *searchService) GetSearch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID string) (*dto.SearchResponse, error) {
	if !principal.Can(auth.PermSearchRead) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "read searches")
	}
	search, err := loadSearch(db, s.searchRepo, principal, searchID)
	if err != nil {
		return nil, err
	}
	return dto.NewSearchResponse(search), nil
}

func (s *searchService) ListSearches(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.ListSearchesRequest) (*dto.SearchListResponse, error) {
	if !principal.Can(auth.PermSearchRead) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "read searches")
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	filter := repositories.SearchFilter{
		CompanyID: principal.CompanyID,
		Status:    models.SearchStatus(req.Status),
		Page:      page,
		PageSize:  pageSize,
	}
	// Техник видит только свои поиски
	if !principal.Can(auth.PermSearchReadAll) {
		filter.UserID = principal.UserID
	}

	searches, total, err := s.searchRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.SearchResponse, 0, len(searches))
	for i := range searches {
		items = append(items, *dto.NewSearchResponse(&searches[i]))
	}

	return &dto.SearchListResponse{
		Searches:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: dto.TotalPages(total, pageSize),
	}, nil
}

// ============================================
// Хелперы
// ============================================

// loadSearch находит поиск и проверяет тенанта.
// Некорректный UUID - это NotFound, а не ошибка БД.
func loadSearch(db *gorm.DB, repo repositories.SearchRepository, principal auth.Principal, searchID string) (*models.Search, error) {
	if _, err := uuid.Parse(searchID); err != nil {
		return nil, apperrors.ErrSearchNotFound(searchID)
	}

	search, err := repo.FindByID(db, searchID)
	if err != nil {
		return nil, handleSearchError(err, searchID)
	}
	if !principal.SameCompany(search.CompanyID) {
		return nil, apperrors.ErrSearchAccessDenied(searchID)
	}
	return search, nil
}

func handleSearchError(err error, searchID string) error {
	if errors.Is(err, repositories.ErrSearchNotFound) {
		return apperrors.ErrSearchNotFound(searchID)
	}
	return apperrors.InternalError(err)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
