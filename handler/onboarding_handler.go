package handler

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
	"github.com/sirupsen/logrus"
)

type onboardingHandler struct {
	store    *sessionStore
	validate *validator.Validate
}

func NewOnboardingHandler(store *sessionStore) *onboardingHandler {
	return &onboardingHandler{
		store:    store,
		validate: validator.New(),
	}
}

// Complete returns the submit handler of an onboarding flow. Both flows post
// the same body and differ only in the backend endpoint.
func (h *onboardingHandler) Complete(flow model.OnboardingFlow) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logrus.WithFields(logrus.Fields{
			"endpoint": "complete_onboarding",
			"flow":     flow,
		})

		auth, err := authSession(c)
		if err != nil {
			logger.Errorf("Error getting session: %v", err)
			return unauthorized(c, "unauthorized")
		}

		var req model.OnboardingRequest
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
				Message: "Please select a plan",
			})
		}

		if req.BillingCycle == "" {
			req.BillingCycle = model.CycleMonthly
		}
		if req.AddOns == nil {
			req.AddOns = []string{}
		}

		if err := catalog.ValidateSelection(req.SelectedPlan, req.AddOns); err != nil {
			return c.JSON(http.StatusBadRequest, response{
				Success: false,
				Message: err.Error(),
			})
		}

		ctx := c.Request().Context()
		result, err := h.store.backend.CompleteOnboarding(ctx, auth.BackendToken, flow, model.UpstreamOnboardingRequest{
			SelectedPlan:        req.SelectedPlan,
			BillingCycle:        req.BillingCycle,
			AddOns:              req.AddOns,
			OnboardingCompleted: true,
		})
		if err != nil {
			return h.store.backendFailure(c, logger, auth, err, "Failed to complete onboarding. Please try again.")
		}

		if result.User != nil {
			if result.Billing != nil {
				result.User.Billing = *result.Billing
			}
			if err := h.store.cacheUser(ctx, auth, result.User); err != nil {
				logger.Errorf("Error caching profile: %v", err)
			}
		} else if result.Billing != nil {
			h.store.patchBilling(ctx, auth, *result.Billing)
		}

		return c.JSON(http.StatusOK, response{
			Success: true,
			Data:    result,
		})
	}
}
