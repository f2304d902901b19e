package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulahq/aula/core/school"
)

type dashboardApi struct {
	svc *school.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{svc: deps.SchoolSvc}

	g.GET("/dashboard-stats", api.stats, jwt)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	stats, err := api.svc.GetDashboardStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
