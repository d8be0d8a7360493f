package dietchart

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/apierr"
	"github.com/ahara/ahara/internal/platform/auth"
	"github.com/ahara/ahara/pkg/pagination"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDietitian, auth.RoleViewer))
	read.GET("/patients/:id/diet-charts", h.ListCharts)
	read.GET("/patients/:id/diet-charts/latest", h.LatestChart)
	read.GET("/diet-charts/:id", h.GetChart)

	write := api.Group("", auth.RequireRole(auth.RoleDietitian))
	write.POST("/patients/:id/diet-charts", h.GenerateChart)
	write.PUT("/diet-charts/:id", h.UpdateChart)
	write.DELETE("/diet-charts/:id", h.DeleteChart)
}

func (h *Handler) GenerateChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Generate(c.Request().Context(), id, req)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusCreated, d.View(h.now()))
}

func (h *Handler) GetChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetChart(c.Request().Context(), id)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, d.View(h.now()))
}

func (h *Handler) LatestChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.LatestChart(c.Request().Context(), id)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, d.View(h.now()))
}

func (h *Handler) ListCharts(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCharts(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.FromError(err)
	}
	now := h.now()
	views := make([]View, len(items))
	for i, d := range items {
		views[i] = d.View(now)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg).WithLinks(c.Request().URL))
}

func (h *Handler) UpdateChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateChart(c.Request().Context(), id, req)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, d.View(h.now()))
}

func (h *Handler) DeleteChart(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteChart(c.Request().Context(), id); err != nil {
		return apierr.FromError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
