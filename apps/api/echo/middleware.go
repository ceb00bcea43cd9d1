package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// resourceMiddleware resolves the `:resource` path param; unknown resources are not found.
func resourceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		res, ok := consumption.ParseResource(ctx.Param("resource"))
		if !ok {
			return errHttpNotFound
		}
		ctx.Set(resourceContextKey, res)
		return next(ctx)
	}
}

func contextResource(ctx echo.Context) consumption.Resource {
	res, _ := ctx.Get(resourceContextKey).(consumption.Resource)
	return res
}
