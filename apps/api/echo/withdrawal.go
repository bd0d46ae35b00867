package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrowad/institute/core/withdrawal"
)

type withdrawalApi struct {
	svc *withdrawal.Service
}

func registerWithdrawalAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *withdrawal.Service) {
	api := withdrawalApi{svc: svc}

	wg := g.Group("/withdrawals", jwt)
	wg.POST("", api.create)
	wg.GET("", api.query)
	wg.DELETE("", api.destroyMultiple)
	wg.GET("/:id", api.retrieve)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)
}

func (api *withdrawalApi) create(ctx echo.Context) error {
	var data withdrawal.NewWithdrawal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWithdrawal")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	w, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating withdrawal")
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *withdrawalApi) query(ctx echo.Context) error {
	filter := new(withdrawal.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []withdrawal.Withdrawal{})
	}
	filter.Clean()

	var withdrawals []withdrawal.Withdrawal
	var err error
	if filter.IsEmpty() {
		withdrawals, err = api.svc.QueryAll()
	} else {
		withdrawals, err = api.svc.Filter(*filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying withdrawals")
	}
	if withdrawals == nil {
		withdrawals = []withdrawal.Withdrawal{}
	}
	return ctx.JSON(http.StatusOK, withdrawals)
}

func (api *withdrawalApi) retrieve(ctx echo.Context) error {
	w, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding withdrawal by ID")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *withdrawalApi) update(ctx echo.Context) error {
	var data withdrawal.UpdateWithdrawal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWithdrawal")
	}

	w, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating withdrawal")
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *withdrawalApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding withdrawal by ID")
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting withdrawal")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *withdrawalApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting withdrawals")
	}
	return ctx.NoContent(http.StatusNoContent)
}
