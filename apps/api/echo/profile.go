package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
)

type profileApi struct {
	svc      *profile.Service
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := profileApi{
		svc:      deps.ProfileSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/profile", jwt)
	pg.GET("", api.retrieve)
	pg.PUT("", api.update)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}
	prof, err := api.svc.Get(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) update(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user id")
	}

	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.Save(ctx.Request().Context(), uid, data)
	if err != nil {
		return errors.Wrap(err, "saving profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}
