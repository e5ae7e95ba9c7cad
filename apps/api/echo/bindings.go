package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
)

// idParam reads a positive integer path parameter; anything else is a 404.
func idParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func floatQuery(ctx echo.Context, name string) (val float64, set bool, err error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	if val, err = strconv.ParseFloat(raw, 64); err != nil {
		return 0, false, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a number"})
	}
	return val, true, nil
}

// timeQuery reads an RFC 3339 query parameter, defaulting to now.
func timeQuery(ctx echo.Context, name string) (time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return core.NowFunc().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be an RFC 3339 timestamp"})
	}
	return t.UTC(), nil
}

func intQuery(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return val, nil
}
