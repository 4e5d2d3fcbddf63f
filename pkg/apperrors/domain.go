package apperrors

import (
	"fmt"
	"net/http"
	"strconv"
)

/*
Фабрики доменных ошибок: поиски, фото, отчеты.
Возвращают новый экземпляр на каждый вызов, чтобы WithDetails
не изменял общую переменную.
*/

// =========================================================================
// Поиски
// =========================================================================

func ErrSearchNotFound(searchID string) *AppError {
	return New(CodeNotFound, "search", "Search not found", http.StatusNotFound).
		WithDetails(map[string]string{"search_id": searchID})
}

// ErrSearchAccessDenied - поиск принадлежит другой компании
func ErrSearchAccessDenied(searchID string) *AppError {
	return New(CodeForbidden, "search", "Search belongs to another company", http.StatusForbidden).
		WithDetails(map[string]string{"search_id": searchID})
}

// ErrInvalidTransition - переход статуса запрещен машиной состояний
func ErrInvalidTransition(from, to string) *AppError {
	return New(CodeInvalidTransition, "search",
		fmt.Sprintf("Transition %s -> %s is not allowed", from, to),
		http.StatusForbidden,
	).WithDetails(map[string]string{"from": from, "to": to})
}

// ErrRoleNotAllowed - роль не может выполнить переход или действие
func ErrRoleNotAllowed(role, action string) *AppError {
	return New(CodeForbidden, "auth",
		fmt.Sprintf("Role %s is not allowed to %s", role, action),
		http.StatusForbidden,
	)
}

func ErrUnknownStatus(raw string) *AppError {
	return New(CodeInvalidStatus, "search", fmt.Sprintf("Unknown search status %q", raw), http.StatusBadRequest)
}

func ErrInvalidCoordinate(field string, value float64) *AppError {
	return New(CodeInvalidCoordinate, "geo",
		fmt.Sprintf("%s is out of range", field),
		http.StatusBadRequest,
	).WithDetails(map[string]string{field: strconv.FormatFloat(value, 'f', -1, 64)})
}

// ErrEmptySearchIDs - пустой список search_ids в пакетной операции
func ErrEmptySearchIDs() *AppError {
	return New(CodeValidationFailed, "request", "search_ids must not be empty", http.StatusBadRequest)
}

func ErrTooManySearches(limit int) *AppError {
	return New(CodeLimitExceeded, "report",
		fmt.Sprintf("At most %d searches can be rendered at once", limit),
		http.StatusBadRequest,
	)
}

// =========================================================================
// Фото
// =========================================================================

func ErrPhotoNotFound(filename string) *AppError {
	return New(CodeNotFound, "photo", "Photo not found", http.StatusNotFound).
		WithDetails(map[string]string{"filename": filename})
}

// ErrUnsupportedMediaType - тип фото не из списка разрешенных
func ErrUnsupportedMediaType(name, contentType string) *AppError {
	return New(CodeUnsupportedMediaType, "photo",
		"The provided file type is not allowed",
		http.StatusUnsupportedMediaType,
	).WithDetails(map[string]string{"file": name, "content_type": contentType})
}

// ErrPayloadTooLarge - фото больше лимита
func ErrPayloadTooLarge(name string, size, limit int64) *AppError {
	return New(CodePayloadTooLarge, "photo",
		"File size exceeds the allowed limit",
		http.StatusRequestEntityTooLarge,
	).WithDetails(map[string]interface{}{"file": name, "size": size, "limit": limit})
}

// =========================================================================
// Отчеты
// =========================================================================

// ErrRenderFailed - сбой сборки PDF
func ErrRenderFailed(err error) *AppError {
	return Wrap(err, CodeRenderFailed, "report", "Failed to render PDF", http.StatusInternalServerError)
}

func ErrCompanySettingsNotFound(companyID string) *AppError {
	return New(CodeNotFound, "company", "Company settings not found", http.StatusNotFound).
		WithDetails(map[string]string{"company_id": companyID})
}
