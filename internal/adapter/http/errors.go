package http

import (
	"errors"
	"net/http"

	"loantrack/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

const (
	codeBadRequest = "BAD_REQUEST"
	codeInternal   = "INTERNAL"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusUnprocessableEntity,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
}

// writeError maps a use case error to its HTTP response. Store and unknown
// errors are logged and answered with a generic 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if status, ok := statusByKind[ae.Kind]; ok {
			resp := ErrorResponse{Error: ae.Message, Code: string(ae.Kind)}
			if ae.Field != "" {
				resp.Error = ae.Field + " " + ae.Message
				resp.Details = []FieldError{{Field: ae.Field, Message: ae.Message}}
			}
			return c.JSON(status, resp)
		}
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: codeInternal})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: codeBadRequest})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    string(apperr.KindValidation),
		Details: ToFieldErrors(err),
	})
}

// bindAndValidate writes the 400 or 422 response itself when it returns false.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, badBody(c)
	}
	if err := c.Validate(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// bindPath checks path params against their validate tags. A malformed id
// cannot name a stored record, so it is answered as notFound.
func bindPath(c echo.Context, log *zap.Logger, dst any, notFound string) (bool, error) {
	if err := (&echo.DefaultBinder{}).BindPathParams(c, dst); err != nil {
		return false, writeError(c, log, apperr.NotFound(notFound))
	}
	if err := c.Validate(dst); err != nil {
		return false, writeError(c, log, apperr.NotFound(notFound))
	}
	return true, nil
}
