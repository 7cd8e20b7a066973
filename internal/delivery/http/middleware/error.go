package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"learnmap/internal/domain"
	"learnmap/internal/pkg/logger"
	"learnmap/internal/pkg/response"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// Fail turns a use case error into an AppError. action names what failed,
// e.g. "Failed to create resource"; the raw error never reaches the client.
func Fail(action string, err error) *AppError {
	var ve *domain.ValidationError
	var ce *domain.CycleError
	switch {
	case errors.As(err, &ve):
		return NewAppError(fiber.StatusBadRequest, action, fiber.Map{"field": ve.Field, "reason": ve.Reason}, err)
	case errors.Is(err, domain.ErrValidation):
		return NewAppError(fiber.StatusBadRequest, action, nil, err)
	case errors.As(err, &ce):
		return NewAppError(fiber.StatusConflict, action, fiber.Map{
			"reason":        "dependency cycle",
			"skill_id":      ce.SkillID,
			"depends_on_id": ce.DependsOnID,
		}, err)
	case errors.Is(err, domain.ErrNotFound):
		return NewAppError(fiber.StatusNotFound, action, nil, err)
	case errors.Is(err, domain.ErrTimeout):
		return NewAppError(fiber.StatusGatewayTimeout, action, fiber.Map{"retryable": true}, err)
	case errors.Is(err, domain.ErrProvider):
		return NewAppError(fiber.StatusBadGateway, action, fiber.Map{"retryable": true}, err)
	default:
		return NewAppError(fiber.StatusInternalServerError, action, nil, err)
	}
}

type ErrorMiddleware struct{}

func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Component(c.Context(), "http").WithField("panic", r).Error("panic recovered")
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		entry := logger.Component(c.Context(), "http").WithError(err).WithFields(logrus.Fields{
			"status": status,
			"path":   c.Path(),
		})
		if status >= 500 {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}
		return response.Error(c, status, msg, data)
	}
}

func normalizeError(err error) (int, string, any) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		switch status {
		case fiber.StatusBadGateway, fiber.StatusGatewayTimeout:
			return status, msg, appErr.Data
		}
		if status >= 500 {
			return fiber.StatusInternalServerError, msg, nil
		}
		return status, msg, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
