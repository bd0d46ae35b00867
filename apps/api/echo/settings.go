package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/settings"
)

type settingsApi struct {
	svc *settings.Service
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *settings.Service) {
	api := settingsApi{svc: svc}

	sg := g.Group("/settings", jwt)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.POST("/purge", api.purge)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get()
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data settings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Update(data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

// PurgeRequest wipes one table after re-checking the verification code.
type PurgeRequest struct {
	Table string `json:"table" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func (pr *PurgeRequest) Validate() error {
	pr.Table = core.CleanString(pr.Table)
	pr.Code = core.CleanString(pr.Code)
	return core.Validate.Struct(pr)
}

func (api *settingsApi) purge(ctx echo.Context) error {
	var data PurgeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PurgeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.Purge(data.Table, data.Code); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"purged": data.Table, "tables": api.svc.PurgeTables()})
}
