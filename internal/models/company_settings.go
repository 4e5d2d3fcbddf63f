package models

import (
	"time"

	"gorm.io/datatypes"
)

type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Lines - адрес построчно для шапки PDF
func (a Address) Lines() []string {
	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	city := a.PostalCode
	if a.City != "" {
		if city != "" {
			city += " "
		}
		city += a.City
	}
	if city != "" {
		lines = append(lines, city)
	}
	if a.Country != "" {
		lines = append(lines, a.Country)
	}
	contact := a.Phone
	if a.Email != "" {
		if contact != "" {
			contact += " - "
		}
		contact += a.Email
	}
	if contact != "" {
		lines = append(lines, contact)
	}
	return lines
}

// CompanySettings - брендинг компании для PDF и гео-дефолт тенанта
type CompanySettings struct {
	CompanyID        string `gorm:"primaryKey;size:36"`
	CompanyName      string `gorm:"not null"`
	LogoPath         string
	Address          datatypes.JSONType[Address]
	DefaultLatitude  *float64
	DefaultLongitude *float64
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}
