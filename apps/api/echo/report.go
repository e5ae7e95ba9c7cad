package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}
	g.GET("/reports/:kind", api.retrieve, jwt, capabilityMiddleware(user.OpViewReports))
}

// retrieve renders a report as JSON, or as a CSV attachment with ?format=csv.
func (api *reportApi) retrieve(ctx echo.Context) error {
	kind, ok := report.ParseKind(ctx.Param("kind"))
	if !ok {
		return errHttpNotFound
	}
	rep, err := api.svc.Generate(ctx.Request().Context(), getSession(ctx), kind)
	if err != nil {
		return err
	}

	switch ctx.QueryParam("format") {
	case "", "json":
		return ctx.JSON(http.StatusOK, rep)
	case "csv":
		filename := fmt.Sprintf("%s_report_%s.csv", kind, time.Now().UTC().Format("20060102_150405"))
		resp := ctx.Response()
		resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		resp.WriteHeader(http.StatusOK)
		return report.WriteCSV(resp, rep)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format: must be json or csv")
	}
}
