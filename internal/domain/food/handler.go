package food

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/platform/auth"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDietitian, auth.RoleViewer))
	read.GET("/foods", h.ListFoods)
	read.GET("/foods/categories", h.ListCategories)
	read.GET("/foods/suitable/:category", h.SuitableFoods)
	read.GET("/foods/:name", h.GetFood)
	read.GET("/foods/:name/nutrition", h.GetNutrition)
}

// NutritionResponse is the nutrition of a quantity of one food.
type NutritionResponse struct {
	Name      string    `json:"name"`
	Grams     float64   `json:"grams"`
	Nutrition Nutrition `json:"nutrition"`
	Doshas    Doshas    `json:"doshas"`
}

func (h *Handler) ListFoods(c echo.Context) error {
	var f Filter
	f.Category = c.QueryParam("category")
	if v := c.QueryParam("dosha"); v != "" {
		cat, ok := assessment.ParseCategory(v)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown dosha: "+v)
		}
		f.Dosha = cat
	}
	if v := c.QueryParam("effect"); v != "" {
		if !Effect(v).Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "effect must be good, moderate or avoid")
		}
		if f.Dosha == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "effect requires dosha")
		}
		f.Effect = Effect(v)
	}
	foods := h.catalog.List(f)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  foods,
		"total": len(foods),
	})
}

func (h *Handler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Categories())
}

func (h *Handler) SuitableFoods(c echo.Context) error {
	cat, ok := assessment.ParseCategory(c.Param("category"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown dosha: "+c.Param("category"))
	}
	foods := h.catalog.List(Filter{Dosha: cat, Effect: Good})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": cat,
		"data":     foods,
		"total":    len(foods),
	})
}

func (h *Handler) lookup(c echo.Context) (Food, error) {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return Food{}, echo.NewHTTPError(http.StatusBadRequest, "invalid food name")
	}
	f, ok := h.catalog.Lookup(name)
	if !ok {
		return Food{}, echo.NewHTTPError(http.StatusNotFound, "unknown food: "+name)
	}
	return f, nil
}

func (h *Handler) GetFood(c echo.Context) error {
	f, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) GetNutrition(c echo.Context) error {
	f, err := h.lookup(c)
	if err != nil {
		return err
	}
	grams := 100.0
	if v := c.QueryParam("grams"); v != "" {
		grams, err = strconv.ParseFloat(v, 64)
		if err != nil || grams <= 0 || math.IsInf(grams, 0) || math.IsNaN(grams) {
			return echo.NewHTTPError(http.StatusBadRequest, "grams must be a positive number")
		}
	}
	return c.JSON(http.StatusOK, NutritionResponse{
		Name:      f.Name,
		Grams:     grams,
		Nutrition: f.Nutrition.Scale(grams),
		Doshas:    f.Doshas,
	})
}
