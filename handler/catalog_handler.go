package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
)

type catalogHandler struct{}

func NewCatalogHandler() *catalogHandler {
	return &catalogHandler{}
}

func (h *catalogHandler) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    catalog.Plans(),
	})
}

// GetAddOns lists add-ons as offered on ?plan= given the comma separated ?owned= types
func (h *catalogHandler) GetAddOns(c echo.Context) error {
	tier := model.PlanTier(c.QueryParam("plan"))
	if tier == "" {
		tier = model.PlanFree
	}
	if !tier.Valid() {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid plan type. Must be 'free', 'builder' or 'enterprise'",
		})
	}

	var owned []string
	for _, t := range strings.Split(c.QueryParam("owned"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			owned = append(owned, t)
		}
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    catalog.Offered(tier, owned),
	})
}
