package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"webshop/internal/domain/validation"
	apperrors "webshop/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Warnings  []ErrorInfo `json:"warnings,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

// Partial is a success that carries non-fatal warnings next to the primary entity.
func Partial(c echo.Context, status int, data interface{}, warnings ...*apperrors.AppError) error {
	resp := Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	}
	for _, w := range warnings {
		if w == nil {
			continue
		}
		resp.Warnings = append(resp.Warnings, ErrorInfo{Code: w.Code, Message: w.Message})
	}
	return c.JSON(status, resp)
}

func Paginated(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Timestamp: now(),
		Data: PaginatedResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		info := &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		details := map[string]interface{}{}
		if appErr.Field != "" {
			details["field"] = appErr.Field
		}
		if appErr.RemoteStatus != 0 {
			details["remoteStatus"] = appErr.RemoteStatus
		}
		if len(details) > 0 {
			info.Details = details
		}
		return c.JSON(appErr.Status, Response{
			Success:   false,
			Timestamp: now(),
			Error:     info,
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    codeForStatus(httpErr.Code),
				Message: http.StatusText(httpErr.Code),
			},
		})
	}

	return c.JSON(http.StatusInternalServerError, Response{
		Success:   false,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    apperrors.CodeInternal,
			Message: "An unexpected error occurred",
		},
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	for _, err := range validationErr {
		field := validation.LowerFirst(err.Field())
		return c.JSON(http.StatusBadRequest, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    apperrors.CodeValidationFailed,
				Message: validation.Message(err),
				Details: map[string]string{"field": field},
			},
		})
	}

	return c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    apperrors.CodeValidationFailed,
			Message: "Invalid input data",
		},
	})
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return apperrors.CodeForbidden
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case status == http.StatusRequestEntityTooLarge:
		return apperrors.CodePayloadTooLarge
	case status == http.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	case status < 500:
		return apperrors.CodeValidationFailed
	default:
		return apperrors.CodeInternal
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
