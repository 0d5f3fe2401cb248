package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTimeout            = "TIMEOUT"
	CodeNetworkUnreachable = "NETWORK_UNREACHABLE"
	CodeServerRejected     = "SERVER_REJECTED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInvalidImage       = "INVALID_IMAGE"
	CodeImageTooLarge      = "IMAGE_TOO_LARGE"
	CodeImageUploadFailed  = "IMAGE_UPLOAD_FAILED"
	CodeVipStepFailed      = "VIP_STEP_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeCanceled           = "CANCELED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)

// WarmingUpMessage is shown when a long-budget call times out against a
// backend that is still cold-starting.
const WarmingUpMessage = "The server is warming up. Please try again in about a minute."

type AppError struct {
	Code    string
	Message string
	Status  int
	// Field names the offending input for VALIDATION_FAILED.
	Field string
	// RemoteStatus is the backend HTTP status for SERVER_REJECTED.
	RemoteStatus int
	Err          error
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
		Field:   field,
	}
}

func Timeout(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     err,
	}
}

// WarmingUp is a TIMEOUT carrying the cold-start hint.
func WarmingUp(err error) *AppError {
	return Timeout(WarmingUpMessage, err)
}

func NetworkUnreachable(err error) *AppError {
	return &AppError{
		Code:    CodeNetworkUnreachable,
		Message: "Server unreachable. Check your connection and try again.",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func ServerRejected(remoteStatus int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("Server rejected the request (HTTP %d)", remoteStatus)
	}
	return &AppError{
		Code:         CodeServerRejected,
		Message:      message,
		Status:       http.StatusBadGateway,
		RemoteStatus: remoteStatus,
	}
}

func PayloadTooLarge(message string) *AppError {
	return &AppError{
		Code:         CodePayloadTooLarge,
		Message:      message,
		Status:       http.StatusRequestEntityTooLarge,
		RemoteStatus: http.StatusRequestEntityTooLarge,
	}
}

func InvalidImage(err error) *AppError {
	return &AppError{
		Code:    CodeInvalidImage,
		Message: "The file is not a readable image",
		Status:  http.StatusUnprocessableEntity,
		Err:     err,
	}
}

// ImageTooLarge reports both sizes and how far the input is over the cap.
func ImageTooLarge(size, limit int64) *AppError {
	return &AppError{
		Code: CodeImageTooLarge,
		Message: fmt.Sprintf("Image is %s, the limit is %s (%s over)",
			HumanSize(size), HumanSize(limit), HumanSize(size-limit)),
		Status: http.StatusRequestEntityTooLarge,
		Field:  "images",
	}
}

func ImageUploadFailed(err error) *AppError {
	return &AppError{
		Code:    CodeImageUploadFailed,
		Message: "The listing was created but the photo could not be uploaded. You can add it later from the listing page.",
		Status:  http.StatusOK,
		Err:     err,
	}
}

func VipStepFailed(step string, err error) *AppError {
	message := fmt.Sprintf("VIP activation failed at %s", step)
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = fmt.Sprintf("%s: %s", message, appErr.Message)
	}
	return &AppError{
		Code:    CodeVipStepFailed,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func Canceled(err error) *AppError {
	return &AppError{
		Code:    CodeCanceled,
		Message: "Request canceled",
		Status:  499,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the AppError code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// As is errors.As narrowed to *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func HumanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
