package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/agrimandi/agrimandi/internal/logger"
)

// Kind classifies an error into one of the business outcomes the API
// reports. Business outcomes map to 4xx and are never retried or logged
// as system errors; Upstream covers store and collaborator failures.
type Kind int

const (
	Validation Kind = iota
	NotFound
	Forbidden
	Conflict
	AlreadyDone
	Upstream
)

// Error is the taxonomy error returned by engine functions and turned
// into an HTTP response by Respond.
type Error struct {
	Kind    Kind
	Code    string // stable machine-readable code, e.g. "bid_too_low"
	Message string // actionable human-readable message
}

func (e *Error) Error() string {
	return e.Message
}

func newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validationf(code, format string, args ...interface{}) *Error {
	return newf(Validation, code, format, args...)
}

func NotFoundf(code, format string, args ...interface{}) *Error {
	return newf(NotFound, code, format, args...)
}

func Forbiddenf(code, format string, args ...interface{}) *Error {
	return newf(Forbidden, code, format, args...)
}

func Conflictf(code, format string, args ...interface{}) *Error {
	return newf(Conflict, code, format, args...)
}

func AlreadyDonef(code, format string, args ...interface{}) *Error {
	return newf(AlreadyDone, code, format, args...)
}

func Upstreamf(code, format string, args ...interface{}) *Error {
	return newf(Upstream, code, format, args...)
}

func status(kind Kind) int {
	switch kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict, AlreadyDone:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// Respond writes the error as a JSON response. Unclassified errors are
// treated as store failures: logged and reported as a 500 without
// leaking internals.
func Respond(c echo.Context, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		logger.FromEcho(c).Error("unhandled error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if e.Kind == Upstream {
		logger.FromEcho(c).Error("upstream failure",
			zap.String("code", e.Code), zap.Error(e))
	}
	return c.JSON(status(e.Kind), echo.Map{"error": e.Message, "code": e.Code})
}
