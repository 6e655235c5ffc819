package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorHandler is installed as echo's HTTPErrorHandler and renders every
// error as the failure envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, models.ErrorResponse{Success: false, Error: message})
	}
	if err != nil {
		logger.Error().Err(err).Msg("write error response")
	}
}

func classify(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Kind.Status(), appErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, validationMessage(validationErrs)
	}

	if mongo.IsDuplicateKeyError(err) {
		return http.StatusBadRequest, "Duplicate field value entered"
	}
	if errors.Is(err, primitive.ErrInvalidHex) {
		return http.StatusNotFound, "Resource not found"
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, "Route not found"
		case http.StatusRequestEntityTooLarge:
			return httpErr.Code, "File too large"
		}
		if httpErr.Internal != nil && httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, "Server Error"
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	return http.StatusInternalServerError, "Server Error"
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return "Please provide " + field
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "username":
		return "Username may only contain letters, numbers and underscores (3-30 characters)"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
