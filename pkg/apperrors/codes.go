package apperrors

type ErrorCode string

const (
	// Системные
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Запрос и валидация
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeInvalidCoordinate ErrorCode = "INVALID_COORDINATE"
	CodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	CodeLimitExceeded     ErrorCode = "LIMIT_EXCEEDED"

	// Бизнес-логика
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeInvalidOperation  ErrorCode = "INVALID_OPERATION"

	// Фото
	CodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      ErrorCode = "PAYLOAD_TOO_LARGE"

	// PDF
	CodeRenderFailed ErrorCode = "RENDER_FAILED"

	// Аутентификация и авторизация
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)
