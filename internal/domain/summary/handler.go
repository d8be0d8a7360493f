package summary

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/domain/dietchart"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/apierr"
	"github.com/ahara/ahara/internal/platform/auth"
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
	read.GET("/patients/:id/summary", h.GetSummary)
}

type response struct {
	*Summary
	DietChart *dietchart.View `json:"latest_diet_chart"`
}

func (h *Handler) GetSummary(c echo.Context) error {
	id, err := patient.ParseID(c)
	if err != nil {
		return err
	}
	sum, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.FromError(err)
	}
	resp := response{Summary: sum}
	if sum.DietChart != nil {
		v := sum.DietChart.View(h.now())
		resp.DietChart = &v
	}
	return c.JSON(http.StatusOK, resp)
}
