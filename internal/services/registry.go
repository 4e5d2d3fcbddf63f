package services

import (
	"searchapp_backend/internal/cache"
	"searchapp_backend/internal/config"
	"searchapp_backend/internal/geo"
	"searchapp_backend/internal/imageprocessor"
	"searchapp_backend/internal/pdf"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	SearchService          SearchService
	PhotoService           PhotoService
	SharingService         SharingService
	ReportService          ReportService
	CompanySettingsService CompanySettingsService
}

// NewServiceContainer собирает репозитории и сервисы по конфигу
func NewServiceContainer(cfg *config.Config, storageInstance storage.Storage, settingsCache cache.CompanySettingsCache) *ServiceContainer {
	// --- Репозитории ---
	searchRepo := repositories.NewSearchRepository()
	reportRepo := repositories.NewReportRepository()
	settingsRepo := repositories.NewCompanySettingsRepository()

	// --- Инфраструктура ---
	photoConfig := PhotoConfig{
		MaxPhotoSize: cfg.Upload.MaxPhotoSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.PDF.MaxImageEdge)
	resolver := geo.NewResolver(cfg.Geo.DefaultLatitude, cfg.Geo.DefaultLongitude)
	renderer := pdf.NewRenderer(storageInstance, processor, cfg.PDF.PhotoConcurrency)

	// --- Сервисы ---
	settingsService := NewCompanySettingsService(settingsRepo, settingsCache, storageInstance, processor, photoConfig)
	photoService := NewPhotoService(searchRepo, storageInstance, photoConfig)
	searchService := NewSearchService(searchRepo, photoService, settingsService, resolver)
	sharingService := NewSharingService(searchRepo, reportRepo, searchService, cfg.Sharing.Concurrency)
	reportService := NewReportService(searchRepo, reportRepo, settingsService, renderer, cfg.PDF.MaxSummarySearches)

	return &ServiceContainer{
		SearchService:          searchService,
		PhotoService:           photoService,
		SharingService:         sharingService,
		ReportService:          reportService,
		CompanySettingsService: settingsService,
	}
}
