package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/score"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
)

const resourceContextKey = "resource"

type consumptionApi struct {
	svc      *consumption.Service
	scoreSvc *score.Service
	metrics  *metricsvc.EcoMetrics
	validate *validator.Validate
}

func registerConsumptionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := consumptionApi{
		svc:      deps.ConsumptionSvc,
		scoreSvc: deps.ScoreSvc,
		metrics:  deps.Metrics,
		validate: deps.Validate,
	}

	cg := g.Group("/consumption/:resource", jwt, resourceMiddleware)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("/:id", api.destroy)

	g.GET("/dashboard", api.dashboard, jwt)
}

func (api *consumptionApi) create(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	var data consumption.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res := contextResource(ctx)
	rec, err := api.svc.Create(ctx.Request().Context(), uid, res, data)
	if err != nil {
		return errors.Wrap(err, "creating consumption record")
	}
	api.metrics.ObserveRecord(string(res))

	return ctx.JSON(http.StatusCreated, rec)
}

func (api *consumptionApi) query(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	records, err := api.svc.Query(ctx.Request().Context(), uid, contextResource(ctx))
	if err != nil {
		return errors.Wrap(err, "querying consumption records")
	}
	if records == nil {
		records = []consumption.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *consumptionApi) destroy(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}
	if err := api.svc.Delete(ctx.Request().Context(), uid, contextResource(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting consumption record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *consumptionApi) dashboard(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	dash, err := api.scoreSvc.ComputeDashboard(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	api.metrics.ObserveDashboard()

	return ctx.JSON(http.StatusOK, dash)
}
