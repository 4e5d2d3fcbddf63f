package models

// Search - полевая запись техника (локация, заметки, координаты, фото)
type Search struct {
	BaseModel
	CompanyID    string       `gorm:"size:36;not null;index"`
	UserID       string       `gorm:"size:36;not null;index"`
	Location     string       `gorm:"not null"`
	Description  string       `gorm:"type:text"`
	Observations string       `gorm:"type:text"`
	Latitude     float64      `gorm:"not null"`
	Longitude    float64      `gorm:"not null"`
	Status       SearchStatus `gorm:"size:32;not null;index"`

	// Relations
	Photos []SearchPhoto `gorm:"foreignKey:SearchID;constraint:OnDelete:CASCADE"`
}

// SearchPhoto - фото поиска. Position хранит порядок отправки,
// Number - номер, назначенный клиентом в рамках секции.
type SearchPhoto struct {
	BaseModel
	SearchID     string `gorm:"size:36;not null;index"`
	Filename     string `gorm:"size:128;not null;uniqueIndex"`
	OriginalName string
	ContentType  string `gorm:"size:64;not null"`
	Size         int64  `gorm:"not null"`
	Number       int    `gorm:"not null"`
	SectionID    string `gorm:"size:64"`
	Position     int    `gorm:"not null"`
}

// StoragePath - ключ блоба в storage
func (p *SearchPhoto) StoragePath() string {
	return PhotoStoragePath(p.SearchID, p.Filename)
}

func PhotoStoragePath(searchID, filename string) string {
	return "searches/" + searchID + "/" + filename
}
