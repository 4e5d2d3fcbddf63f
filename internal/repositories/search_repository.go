package repositories

import (
	"errors"

	"searchapp_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSearchNotFound = errors.New("search not found")
	ErrPhotoNotFound  = errors.New("photo not found")

	// ErrStatusConflict - статус поиска изменился между чтением и записью
	ErrStatusConflict = errors.New("search status changed concurrently")
)

// SearchFilter - фильтр списка поисков. UserID пустой = вся компания.
type SearchFilter struct {
	CompanyID string
	UserID    string
	Status    models.SearchStatus
	Page      int
	PageSize  int
}

type SearchRepository interface {
	Create(db *gorm.DB, search *models.Search) error
	FindByID(db *gorm.DB, id string) (*models.Search, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.Search, error)
	List(db *gorm.DB, filter SearchFilter) ([]models.Search, int64, error)
	UpdateContent(db *gorm.DB, search *models.Search) error
	UpdateStatus(db *gorm.DB, id string, from, to models.SearchStatus) error
	CountByStatus(db *gorm.DB, companyID, userID string) (map[models.SearchStatus]int64, error)

	// Photos
	CreatePhotos(db *gorm.DB, photos []models.SearchPhoto) error
	DeletePhotos(db *gorm.DB, searchID string) error
	FindPhoto(db *gorm.DB, searchID, filename string) (*models.SearchPhoto, error)
}

type SearchRepositoryImpl struct{}

func NewSearchRepository() SearchRepository {
	return &SearchRepositoryImpl{}
}

func orderedPhotos(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *SearchRepositoryImpl) Create(db *gorm.DB, search *models.Search) error {
	return db.Omit("Photos").Create(search).Error
}

func (r *SearchRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Search, error) {
	var search models.Search
	err := db.Preload("Photos", orderedPhotos).Where("id = ?", id).First(&search).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}
	return &search, nil
}

// FindByIDs возвращает найденные поиски в произвольном порядке;
// отсутствующие id просто пропускаются
func (r *SearchRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.Search, error) {
	var searches []models.Search
	if len(ids) == 0 {
		return searches, nil
	}
	err := db.Preload("Photos", orderedPhotos).Where("id IN ?", ids).Find(&searches).Error
	return searches, err
}

func (r *SearchRepositoryImpl) scoped(db *gorm.DB, filter SearchFilter) *gorm.DB {
	query := db.Model(&models.Search{}).Where("company_id = ?", filter.CompanyID)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

func (r *SearchRepositoryImpl) List(db *gorm.DB, filter SearchFilter) ([]models.Search, int64, error) {
	var searches []models.Search
	var total int64

	if err := r.scoped(db, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.scoped(db, filter)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	err := query.Preload("Photos", orderedPhotos).
		Order("created_at DESC").Order("id DESC").
		Find(&searches).Error
	return searches, total, err
}

// UpdateContent перезаписывает только изменяемые поля; id, company_id,
// user_id и status не трогаются. Архивный поиск не обновляется: ErrStatusConflict.
func (r *SearchRepositoryImpl) UpdateContent(db *gorm.DB, search *models.Search) error {
	result := db.Model(&models.Search{}).
		Where("id = ? AND status <> ?", search.ID, models.SearchStatusArchived).
		Updates(map[string]interface{}{
			"location":     search.Location,
			"description":  search.Description,
			"observations": search.Observations,
			"latitude":     search.Latitude,
			"longitude":    search.Longitude,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(db, search.ID)
	}
	return nil
}

// UpdateStatus - compare-and-set: статус меняется, только если он все еще равен from
func (r *SearchRepositoryImpl) UpdateStatus(db *gorm.DB, id string, from, to models.SearchStatus) error {
	result := db.Model(&models.Search{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(db, id)
	}
	return nil
}

// missingOrConflict различает отсутствующую строку и строку, не прошедшую фильтр по статусу
func (r *SearchRepositoryImpl) missingOrConflict(db *gorm.DB, id string) error {
	var count int64
	if err := db.Model(&models.Search{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSearchNotFound
	}
	return ErrStatusConflict
}

func (r *SearchRepositoryImpl) CountByStatus(db *gorm.DB, companyID, userID string) (map[models.SearchStatus]int64, error) {
	var rows []struct {
		Status models.SearchStatus
		Count  int64
	}

	query := db.Model(&models.Search{}).
		Select("status, COUNT(*) AS count").
		Where("company_id = ?", companyID)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.SearchStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Photos

func (r *SearchRepositoryImpl) CreatePhotos(db *gorm.DB, photos []models.SearchPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return db.Create(&photos).Error
}

func (r *SearchRepositoryImpl) DeletePhotos(db *gorm.DB, searchID string) error {
	return db.Where("search_id = ?", searchID).Delete(&models.SearchPhoto{}).Error
}

func (r *SearchRepositoryImpl) FindPhoto(db *gorm.DB, searchID, filename string) (*models.SearchPhoto, error) {
	var photo models.SearchPhoto
	err := db.Where("search_id = ? AND filename = ?", searchID, filename).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}
