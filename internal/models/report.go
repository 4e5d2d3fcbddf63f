package models

// Report - заметка бюро, создается при передаче поиска в бюро.
// PDF при этом не сохраняется.
type Report struct {
	BaseModel
	CompanyID string `gorm:"size:36;not null;index"`
	SearchID  string `gorm:"size:36;not null;index"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	CreatedBy string `gorm:"size:36;not null"`

	// Relations
	Search *Search `gorm:"foreignKey:SearchID"`
}
