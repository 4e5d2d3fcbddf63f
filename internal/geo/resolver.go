package geo

import (
	"math"

	"searchapp_backend/pkg/apperrors"
)

// Point - пара координат в градусах
type Point struct {
	Latitude  float64
	Longitude float64
}

// Resolver подставляет координаты по умолчанию, если клиент их не передал
type Resolver struct {
	fallback Point
}

func NewResolver(defaultLat, defaultLng float64) *Resolver {
	return &Resolver{fallback: Point{Latitude: defaultLat, Longitude: defaultLng}}
}

// Default - сконфигурированная точка по умолчанию
func (r *Resolver) Default() Point {
	return r.fallback
}

// Resolve возвращает переданную пару как есть, если обе координаты заданы.
// Если не задана хотя бы одна, пара целиком заменяется на tenantDefault
// (если он не nil) или на сконфигурированную точку.
func (r *Resolver) Resolve(lat, lng *float64, tenantDefault *Point) (Point, error) {
	if lat == nil || lng == nil {
		if tenantDefault != nil {
			return *tenantDefault, nil
		}
		return r.fallback, nil
	}

	if err := ValidateLatitude(*lat); err != nil {
		return Point{}, err
	}
	if err := ValidateLongitude(*lng); err != nil {
		return Point{}, err
	}
	return Point{Latitude: *lat, Longitude: *lng}, nil
}

func ValidateLatitude(v float64) error {
	if math.IsNaN(v) || v < -90 || v > 90 {
		return apperrors.ErrInvalidCoordinate("latitude", v)
	}
	return nil
}

func ValidateLongitude(v float64) error {
	if math.IsNaN(v) || v < -180 || v > 180 {
		return apperrors.ErrInvalidCoordinate("longitude", v)
	}
	return nil
}
