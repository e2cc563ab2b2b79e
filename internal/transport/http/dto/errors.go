package dto

// BaseError универсальный корневой формат ошибки
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание
// Details — дополнительная строка (пояснение / fragment)
// Fields — для валидационных ошибок (имя поля + текст)
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError отдельная ошибка по конкретному полю
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Предопределённые обёртки — можно использовать в swagger для разных @Failure.
// Все совместимы по JSON, просто повышают читаемость документации.

// ValidationErrorResponse 400, Code: "validation_error"
type ValidationErrorResponse BaseError

// UnauthorizedErrorResponse 401, Code: "unauthorized"
type UnauthorizedErrorResponse BaseError

// ForbiddenErrorResponse 403, Code: "forbidden"
type ForbiddenErrorResponse BaseError

// NotFoundErrorResponse 404, Code: "not_found"
type NotFoundErrorResponse BaseError

// ConflictErrorResponse 409, Code: "conflict"
type ConflictErrorResponse BaseError

// InvalidStateErrorResponse 409, Code: "invalid_state"
// Пример: заказ уже финализирован и не в PENDING
type InvalidStateErrorResponse BaseError

// UnavailableErrorResponse 422, Code: "unavailable"
// Пример: товар или пункт выдачи деактивирован
type UnavailableErrorResponse BaseError

// InternalErrorResponse 500, Code: "internal_error"
type InternalErrorResponse BaseError

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: "validation_error", Message: msg, Fields: fields})
}
func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse(BaseError{Code: "unauthorized", Message: msg})
}
func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse(BaseError{Code: "forbidden", Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: "not_found", Message: msg})
}
func NewConflictError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: "conflict", Message: msg})
}
func NewInvalidStateError(msg string) InvalidStateErrorResponse {
	return InvalidStateErrorResponse(BaseError{Code: "invalid_state", Message: msg})
}
func NewUnavailableError(msg string, details string) UnavailableErrorResponse {
	return UnavailableErrorResponse(BaseError{Code: "unavailable", Message: msg, Details: details})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: "internal_error", Message: "internal server error", Details: details})
}
