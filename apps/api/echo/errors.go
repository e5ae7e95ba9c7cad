package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/grading"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
)

var (
	errMissingToken  = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errBadRequest    = echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// statusOf maps core errors to their HTTP status; ok is false for unexpected errors.
func statusOf(err error) (code int, ok bool) {
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, grading.ErrIncompleteQuiz),
		errors.Is(err, core.ErrOutOfRange),
		errors.Is(err, user.ErrAuthenticationFailed):
		return http.StatusBadRequest, true
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, course.ErrNotFound),
		errors.Is(err, assignment.ErrNotFound),
		errors.Is(err, grading.ErrNotFound),
		errors.Is(err, report.ErrUnknownKind):
		return http.StatusNotFound, true
	case errors.Is(err, user.ErrUsernameExists), errors.Is(err, grading.ErrAlreadySubmitted):
		return http.StatusConflict, true
	case errors.Is(err, core.ErrInvalidReference):
		return http.StatusUnprocessableEntity, true
	case core.IsRecoverable(err):
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var (
			httpErr *echo.HTTPError
			vErr    *core.ValidationError
		)
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &vErr) && len(vErr.Fields) > 0:
			fldErrs := make(map[string]string, len(vErr.Fields))
			for _, fErr := range vErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			code = http.StatusBadRequest
			message = echo.Map{"error": vErr.Error(), "fields": fldErrs}
		default:
			var known bool
			if code, known = statusOf(err); known {
				message = err.Error()
				break
			}
			// any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			if ctx.Echo().Debug {
				message = err.Error()
			}
			logger.Error(msg, errors.Wrap(err, ctx.Request().URL.Path), getSession(ctx))
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
