package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/cache"
	"searchapp_backend/internal/geo"
	"searchapp_backend/internal/imageprocessor"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/internal/storage"
	"searchapp_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CompanySettingsService - брендинг компании (шапка PDF) и гео-дефолт тенанта
type CompanySettingsService interface {
	GetSettings(ctx context.Context, db *gorm.DB, principal auth.Principal) (*dto.CompanySettingsResponse, error)
	UpdateSettings(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.UpdateCompanySettingsRequest) (*dto.CompanySettingsResponse, error)
	UploadLogo(ctx context.Context, db *gorm.DB, principal auth.Principal, upload dto.PhotoUpload) (*dto.CompanySettingsResponse, error)

	// Lookup возвращает nil без ошибки, если настроек нет
	Lookup(ctx context.Context, db *gorm.DB, companyID string) (*models.CompanySettings, error)
	// GeoDefault - координаты тенанта или nil
	GeoDefault(ctx context.Context, db *gorm.DB, companyID string) (*geo.Point, error)
	// LoadLogo - байты логотипа или nil, если его нет или он не читается
	LoadLogo(ctx context.Context, settings *models.CompanySettings) []byte
}

type companySettingsService struct {
	repo      repositories.CompanySettingsRepository
	cache     cache.CompanySettingsCache
	storage   storage.Storage
	processor *imageprocessor.Processor
	photos    PhotoConfig
}

func NewCompanySettingsService(
	repo repositories.CompanySettingsRepository,
	settingsCache cache.CompanySettingsCache,
	storage storage.Storage,
	processor *imageprocessor.Processor,
	photos PhotoConfig,
) CompanySettingsService {
	if settingsCache == nil {
		settingsCache = cache.NoopCompanySettingsCache{}
	}
	return &companySettingsService{
		repo:      repo,
		cache:     settingsCache,
		storage:   storage,
		processor: processor,
		photos:    photos,
	}
}

func logoStoragePath(companyID string) string {
	return "companies/" + companyID + "/logo.jpg"
}

func (s *companySettingsService) Lookup(ctx context.Context, db *gorm.DB, companyID string) (*models.CompanySettings, error) {
	if settings, ok := s.cache.Get(ctx, companyID); ok {
		return settings, nil
	}

	settings, err := s.repo.FindByCompanyID(db, companyID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompanySettingsNotFound) {
			return nil, nil
		}
		return nil, apperrors.InternalError(err)
	}

	s.cache.Set(ctx, settings)
	return settings, nil
}

func (s *companySettingsService) GeoDefault(ctx context.Context, db *gorm.DB, companyID string) (*geo.Point, error) {
	settings, err := s.Lookup(ctx, db, companyID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.DefaultLatitude == nil || settings.DefaultLongitude == nil {
		return nil, nil
	}
	return &geo.Point{Latitude: *settings.DefaultLatitude, Longitude: *settings.DefaultLongitude}, nil
}

func (s *companySettingsService) LoadLogo(ctx context.Context, settings *models.CompanySettings) []byte {
	if settings == nil || settings.LogoPath == "" {
		return nil
	}
	data, err := storage.ReadAll(ctx, s.storage, settings.LogoPath)
	if err != nil {
		logger.CtxWarn(ctx, "company logo is not readable", "company_id", settings.CompanyID, "path", settings.LogoPath, "error", err.Error())
		return nil
	}
	return data
}

func (s *companySettingsService) GetSettings(ctx context.Context, db *gorm.DB, principal auth.Principal) (*dto.CompanySettingsResponse, error) {
	settings, err := s.Lookup(ctx, db, principal.CompanyID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, apperrors.ErrCompanySettingsNotFound(principal.CompanyID)
	}
	return dto.NewCompanySettingsResponse(settings), nil
}

func (s *companySettingsService) UpdateSettings(ctx context.Context, db *gorm.DB, principal auth.Principal, req *dto.UpdateCompanySettingsRequest) (*dto.CompanySettingsResponse, error) {
	if !principal.Can(auth.PermSettingsManage) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "manage company settings")
	}
	if (req.DefaultLatitude == nil) != (req.DefaultLongitude == nil) {
		return nil, apperrors.ValidationError(map[string]string{
			"default_latitude": "default_latitude and default_longitude must be set together",
		})
	}

	current, err := s.repo.FindByCompanyID(db, principal.CompanyID)
	if err != nil && !errors.Is(err, repositories.ErrCompanySettingsNotFound) {
		return nil, apperrors.InternalError(err)
	}

	settings := &models.CompanySettings{
		CompanyID:        principal.CompanyID,
		CompanyName:      req.CompanyName,
		Address:          datatypes.NewJSONType(req.Address.ToModel()),
		DefaultLatitude:  req.DefaultLatitude,
		DefaultLongitude: req.DefaultLongitude,
	}
	if current != nil {
		settings.LogoPath = current.LogoPath
	}

	if err := s.repo.Upsert(db, settings); err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.cache.Invalidate(ctx, principal.CompanyID)

	logger.CtxInfo(ctx, "company settings updated", "company_id", principal.CompanyID)
	return dto.NewCompanySettingsResponse(settings), nil
}

func (s *companySettingsService) UploadLogo(ctx context.Context, db *gorm.DB, principal auth.Principal, upload dto.PhotoUpload) (*dto.CompanySettingsResponse, error) {
	if !principal.Can(auth.PermSettingsManage) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "manage company settings")
	}

	settings, err := s.repo.FindByCompanyID(db, principal.CompanyID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompanySettingsNotFound) {
			return nil, apperrors.ErrCompanySettingsNotFound(principal.CompanyID)
		}
		return nil, apperrors.InternalError(err)
	}

	if _, _, err := checkImage(s.photos, upload.OriginalName, upload.DeclaredType, upload.Size, upload.Data); err != nil {
		return nil, err
	}

	normalized, err := s.processor.ToJPEG(upload.Data)
	if err != nil {
		return nil, apperrors.ValidationError(map[string]string{"logo": "Image could not be decoded"})
	}

	path := logoStoragePath(principal.CompanyID)
	if err := s.storage.Save(ctx, path, bytes.NewReader(normalized.Data), "image/jpeg"); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to save logo to storage: %w", err))
	}

	settings.LogoPath = path
	if err := s.repo.Upsert(db, settings); err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.cache.Invalidate(ctx, principal.CompanyID)

	return dto.NewCompanySettingsResponse(settings), nil
}
