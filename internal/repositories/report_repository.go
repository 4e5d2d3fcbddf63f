package repositories

import (
	"searchapp_backend/internal/models"

	"gorm.io/gorm"
)

// ReportFilter - фильтр списка отчетов. SearchOwnerID ограничивает отчеты
// поисками одного автора (для техников).
type ReportFilter struct {
	CompanyID     string
	SearchOwnerID string
	Page          int
	PageSize      int
}

type ReportRepository interface {
	Create(db *gorm.DB, report *models.Report) error
	List(db *gorm.DB, filter ReportFilter) ([]models.Report, int64, error)
	Count(db *gorm.DB, companyID, searchOwnerID string) (int64, error)
}

type ReportRepositoryImpl struct{}

func NewReportRepository() ReportRepository {
	return &ReportRepositoryImpl{}
}

func (r *ReportRepositoryImpl) Create(db *gorm.DB, report *models.Report) error {
	return db.Omit("Search").Create(report).Error
}

func (r *ReportRepositoryImpl) scoped(db *gorm.DB, companyID, searchOwnerID string) *gorm.DB {
	query := db.Model(&models.Report{}).Where("reports.company_id = ?", companyID)
	if searchOwnerID != "" {
		query = query.Joins("JOIN searches ON searches.id = reports.search_id").
			Where("searches.user_id = ?", searchOwnerID)
	}
	return query
}

func (r *ReportRepositoryImpl) List(db *gorm.DB, filter ReportFilter) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	if err := r.scoped(db, filter.CompanyID, filter.SearchOwnerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.scoped(db, filter.CompanyID, filter.SearchOwnerID)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	err := query.Preload("Search").
		Order("reports.created_at DESC").Order("reports.id DESC").
		Find(&reports).Error
	return reports, total, err
}

func (r *ReportRepositoryImpl) Count(db *gorm.DB, companyID, searchOwnerID string) (int64, error) {
	var total int64
	err := r.scoped(db, companyID, searchOwnerID).Count(&total).Error
	return total, err
}
