package helpers

import (
	"github.com/gofiber/fiber/v2"
)

// Application error codes, one per failure family.
const (
	CodeValidation   = "ValidationError"
	CodeConflict     = "Conflict"
	CodeNotFound     = "NotFound"
	CodeIllegalState = "IllegalState"
	CodeCapacity     = "CapacityExhausted"
)

// AppError is a typed error carried from services up to the controllers,
// which map it onto an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict, CodeIllegalState:
		return fiber.StatusConflict
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeCapacity:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewIllegalState(message string) *AppError {
	return &AppError{Code: CodeIllegalState, Message: message}
}

func NewCapacityError(message string) *AppError {
	return &AppError{Code: CodeCapacity, Message: message}
}

// ErrorResponse writes the JSON error envelope for err.
func ErrorResponse(ctx *fiber.Ctx, err error) error {
	if appErr, ok := err.(*AppError); ok {
		return ctx.Status(appErr.HTTPStatus()).JSON(fiber.Map{
			"success": false,
			"code":    appErr.Code,
			"error":   appErr.Message,
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
