package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulahq/aula/core/school"
)

type topicApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerTopicAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := topicApi{svc: deps.SchoolSvc, validate: deps.Validate}

	tg := g.Group("/topics", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

func (api *topicApi) query(ctx echo.Context) error {
	var filter school.TopicFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Topic{})
	}

	topics, err := api.svc.QueryTopics(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	if topics == nil {
		topics = []school.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *topicApi) create(ctx echo.Context) error {
	var data school.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tpc, err := api.svc.CreateTopic(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, tpc)
}

func (api *topicApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tpc, err := api.svc.UpdateTopic(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTopics(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}
