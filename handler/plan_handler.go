package handler

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
	"github.com/sirupsen/logrus"
)

type planHandler struct {
	store    *sessionStore
	validate *validator.Validate
}

func NewPlanHandler(store *sessionStore) *planHandler {
	return &planHandler{
		store:    store,
		validate: validator.New(),
	}
}

// GetPlan retrieves the plan information for the authenticated user
func (h *planHandler) GetPlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_plan")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	user, err := h.store.currentUser(c.Request().Context(), auth)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve plan")
	}

	cycle := user.Billing.BillingCycle
	if cycle == "" {
		cycle = model.CycleMonthly
	}

	current := user.Billing.Plan()
	plans := catalog.Plans()
	downgrades := []model.PlanTier{}
	for _, p := range plans {
		if catalog.IsDowngrade(current, p.ID) {
			downgrades = append(downgrades, p.ID)
		}
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: model.PlanResponse{
			CurrentPlan:  current,
			BillingCycle: cycle,
			Plans:        plans,
			Downgrades:   downgrades,
		},
	})
}

// UpdatePlan changes the user's plan. Moving a paid plan to free needs an explicit confirmation.
func (h *planHandler) UpdatePlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "update_plan")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	var req model.ChangePlanRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Warnf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid plan type. Must be 'free', 'builder' or 'enterprise'",
		})
	}

	ctx := c.Request().Context()
	user, err := h.store.currentUser(ctx, auth)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve plan")
	}

	current := user.Billing.Plan()
	if catalog.RequiresDowngradeConfirmation(req.SelectedPlan, current) && !req.ConfirmDowngrade {
		return c.JSON(http.StatusConflict, response{
			Success: false,
			Message: "downgrade requires confirmation",
			Data: model.DowngradeConfirmation{
				RequiresConfirmation: true,
				CurrentPlan:          current,
				SelectedPlan:         req.SelectedPlan,
				Warning:              catalog.DowngradeWarning,
			},
		})
	}

	cycle := req.BillingCycle
	if cycle == "" {
		cycle = user.Billing.BillingCycle
	}
	if cycle == "" {
		cycle = model.CycleMonthly
	}

	billing, err := h.store.backend.ChangePlan(ctx, auth.BackendToken, model.UpstreamChangePlanRequest{
		SelectedPlan: req.SelectedPlan,
		BillingCycle: cycle,
	})
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to save plan")
	}

	if billing == nil {
		patched := user.Billing
		patched.SelectedPlan = req.SelectedPlan
		patched.BillingCycle = cycle
		billing = &patched
	}
	h.store.patchBilling(ctx, auth, *billing)

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    billing,
	})
}
