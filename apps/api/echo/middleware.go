package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/user"
)

// capabilityMiddleware refuses the request early unless the session's role may perform op.
func capabilityMiddleware(op user.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if getSession(ctx).Can(op) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
