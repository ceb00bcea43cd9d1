package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
)

type challengeApi struct {
	svc      *challenge.Service
	enrSvc   *enrollment.Service
	metrics  *metricsvc.EcoMetrics
	validate *validator.Validate
}

func registerChallengeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := challengeApi{
		svc:      deps.ChallengeSvc,
		enrSvc:   deps.EnrollmentSvc,
		metrics:  deps.Metrics,
		validate: deps.Validate,
	}

	cg := g.Group("/challenges", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, adminMiddleware())

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())

	// lifecycle endpoints
	cg.POST("/:id/join", api.join)
	cg.POST("/:id/withdraw", api.withdraw)
	cg.POST("/:id/award", api.award, adminMiddleware())
	cg.GET("/:id/enrollments", api.queryEnrollments, adminMiddleware())

	g.GET("/enrollments", api.queryOwnEnrollments, jwt)
}

// Handlers

func (api *challengeApi) query(ctx echo.Context) error {
	var query ChallengeQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ChallengeQuery")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	challenges, err := api.svc.Query(ctx.Request().Context(), query.Active, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying challenges")
	}
	if challenges == nil {
		challenges = []challenge.Challenge{}
	}
	return ctx.JSON(http.StatusOK, challenges)
}

func (api *challengeApi) create(ctx echo.Context) error {
	var data challenge.NewChallenge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChallenge")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chal, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating challenge")
	}
	return ctx.JSON(http.StatusCreated, chal)
}

func (api *challengeApi) retrieve(ctx echo.Context) error {
	chal, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting challenge")
	}
	return ctx.JSON(http.StatusOK, chal)
}

func (api *challengeApi) update(ctx echo.Context) error {
	var data challenge.NewChallenge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChallenge")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chal, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating challenge")
	}
	return ctx.JSON(http.StatusOK, chal)
}

func (api *challengeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting challenge")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *challengeApi) join(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	enr, err := api.enrSvc.Join(ctx.Request().Context(), uid, ctx.Param("id"))
	api.metrics.ObserveJoin(err)
	if err != nil {
		return errors.Wrap(err, "joining challenge")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *challengeApi) withdraw(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	enr, err := api.enrSvc.Withdraw(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "withdrawing from challenge")
	}
	api.metrics.ObserveWithdrawal()

	return ctx.JSON(http.StatusOK, enr)
}

func (api *challengeApi) award(ctx echo.Context) error {
	var data enrollment.AwardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AwardRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.enrSvc.Award(ctx.Request().Context(), ctx.Param("id"), data.UserID, data.Points)
	if err != nil {
		return errors.Wrap(err, "awarding points")
	}
	api.metrics.ObserveAward(data.Points)

	return ctx.JSON(http.StatusOK, enr)
}

func (api *challengeApi) queryEnrollments(ctx echo.Context) error {
	enrs, err := api.enrSvc.QueryByChallenge(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying challenge enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *challengeApi) queryOwnEnrollments(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	enrs, err := api.enrSvc.QueryByUser(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}
