package http

import (
	"context"
	"errors"
	"net/http"

	"lr-validation-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusOf maps an error Kind to the status a client sees.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPrecondition:
		return http.StatusPreconditionFailed
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStorage:
		return http.StatusBadGateway
	case apperr.KindUpstream:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a usecase error. Internal causes are logged, not
// returned, except the storage path of an orphaned object.
func writeError(c echo.Context, err error) error {
	code := statusOf(err)
	resp := ErrorResponse{Error: http.StatusText(code)}

	if e, ok := apperr.As(err); ok {
		resp.Kind = string(e.Kind)
		resp.Error = e.Msg
		resp.StoragePath = e.StoragePath
		for _, f := range e.Fields {
			resp.Details = append(resp.Details, FieldError{Field: f, Message: e.Msg})
		}
	}

	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	return c.JSON(code, resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    string(apperr.KindValidation),
		Details: ToFieldErrors(err),
	})
}
