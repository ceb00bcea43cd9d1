package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/leaderboard"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
)

type leaderboardApi struct {
	svc     *leaderboard.Service
	metrics *metricsvc.EcoMetrics
}

func registerLeaderboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := leaderboardApi{
		svc:     deps.LeaderboardSvc,
		metrics: deps.Metrics,
	}
	g.GET("/leaderboard", api.get, jwt)
}

func (api *leaderboardApi) get(ctx echo.Context) error {
	entries, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing leaderboard")
	}
	api.metrics.ObserveLeaderboard()

	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
