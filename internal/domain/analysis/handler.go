package analysis

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/apierr"
	"github.com/ahara/ahara/internal/platform/auth"
	"github.com/ahara/ahara/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDietitian, auth.RoleViewer))
	read.GET("/questionnaires/prakriti", h.PrakritiQuestionnaire)
	read.GET("/questionnaires/health", h.HealthQuestionnaire)
	read.GET("/patients/:id/prakriti", h.ListPrakriti)
	read.GET("/patients/:id/prakriti/latest", h.LatestPrakriti)
	read.GET("/patients/:id/health-history", h.ListHealth)
	read.GET("/patients/:id/health-history/latest", h.LatestHealth)

	write := api.Group("", auth.RequireRole(auth.RoleDietitian))
	write.POST("/patients/:id/prakriti", h.RecordPrakriti)
	write.POST("/patients/:id/health-history", h.RecordHealth)
}

func (h *Handler) PrakritiQuestionnaire(c echo.Context) error {
	return c.JSON(http.StatusOK, assessment.PrakritiCatalog)
}

func (h *Handler) HealthQuestionnaire(c echo.Context) error {
	return c.JSON(http.StatusOK, assessment.HealthCatalog)
}

func (h *Handler) RecordPrakriti(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RecordPrakriti(c.Request().Context(), id, req)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) LatestPrakriti(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.LatestPrakriti(c.Request().Context(), id)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListPrakriti(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPrakriti(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg).WithLinks(c.Request().URL))
}

func (h *Handler) RecordHealth(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RecordHealth(c.Request().Context(), id, req)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) LatestHealth(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.LatestHealth(c.Request().Context(), id)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListHealth(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListHealth(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.FromError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg).WithLinks(c.Request().URL))
}
