package dto

import (
	"time"

	"searchapp_backend/internal/models"
)

type AddressDTO struct {
	Street     string `json:"street" validate:"max=255"`
	PostalCode string `json:"postal_code" validate:"max=16"`
	City       string `json:"city" validate:"max=128"`
	Country    string `json:"country" validate:"max=128"`
	Phone      string `json:"phone" validate:"max=32"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanySettingsRequest - брендинг для PDF и гео-дефолт тенанта.
// Координаты по умолчанию задаются только парой.
type UpdateCompanySettingsRequest struct {
	CompanyName      string     `json:"company_name" validate:"required,max=255"`
	Address          AddressDTO `json:"address"`
	DefaultLatitude  *float64   `json:"default_latitude" validate:"omitempty,is-latitude"`
	DefaultLongitude *float64   `json:"default_longitude" validate:"omitempty,is-longitude"`
}

type CompanySettingsResponse struct {
	CompanyID        string     `json:"company_id"`
	CompanyName      string     `json:"company_name"`
	HasLogo          bool       `json:"has_logo"`
	Address          AddressDTO `json:"address"`
	DefaultLatitude  *float64   `json:"default_latitude"`
	DefaultLongitude *float64   `json:"default_longitude"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (a AddressDTO) ToModel() models.Address {
	return models.Address{
		Street:     a.Street,
		PostalCode: a.PostalCode,
		City:       a.City,
		Country:    a.Country,
		Phone:      a.Phone,
		Email:      a.Email,
	}
}

func NewCompanySettingsResponse(settings *models.CompanySettings) *CompanySettingsResponse {
	addr := settings.Address.Data()
	return &CompanySettingsResponse{
		CompanyID:   settings.CompanyID,
		CompanyName: settings.CompanyName,
		HasLogo:     settings.LogoPath != "",
		Address: AddressDTO{
			Street:     addr.Street,
			PostalCode: addr.PostalCode,
			City:       addr.City,
			Country:    addr.Country,
			Phone:      addr.Phone,
			Email:      addr.Email,
		},
		DefaultLatitude:  settings.DefaultLatitude,
		DefaultLongitude: settings.DefaultLongitude,
		UpdatedAt:        settings.UpdatedAt,
	}
}
