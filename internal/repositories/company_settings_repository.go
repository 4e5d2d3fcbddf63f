package repositories

import (
	"errors"

	"searchapp_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCompanySettingsNotFound = errors.New("company settings not found")

type CompanySettingsRepository interface {
	FindByCompanyID(db *gorm.DB, companyID string) (*models.CompanySettings, error)
	Upsert(db *gorm.DB, settings *models.CompanySettings) error
}

type CompanySettingsRepositoryImpl struct{}

func NewCompanySettingsRepository() CompanySettingsRepository {
	return &CompanySettingsRepositoryImpl{}
}

func (r *CompanySettingsRepositoryImpl) FindByCompanyID(db *gorm.DB, companyID string) (*models.CompanySettings, error) {
	var settings models.CompanySettings
	err := db.Where("company_id = ?", companyID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanySettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (r *CompanySettingsRepositoryImpl) Upsert(db *gorm.DB, settings *models.CompanySettings) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_name", "logo_path", "address", "default_latitude", "default_longitude", "updated_at"}),
	}).Create(settings).Error
}
