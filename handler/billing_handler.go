package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
	"github.com/sirupsen/logrus"
)

type billingHandler struct {
	store    *sessionStore
	locks    *purchaseLocks
	validate *validator.Validate
}

func NewBillingHandler(store *sessionStore) *billingHandler {
	return &billingHandler{
		store:    store,
		locks:    newPurchaseLocks(),
		validate: validator.New(),
	}
}

// GetBilling returns the cached billing state with the add-ons offered on the current plan
func (h *billingHandler) GetBilling(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_billing")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	user, err := h.store.currentUser(c.Request().Context(), auth)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve billing")
	}

	tier := user.Billing.Plan()
	plan, _ := catalog.Plan(tier)

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: model.BillingResponse{
			Billing: user.Billing,
			Plan:    plan,
			AddOns:  catalog.Offered(tier, user.Billing.AddOns),
		},
	})
}

// PurchaseAddOn buys an add-on for one project, then refetches the profile
func (h *billingHandler) PurchaseAddOn(c echo.Context) error {
	logger := logrus.WithField("endpoint", "purchase_addon")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	var req model.PurchaseAddOnRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	req.ProjectID = model.ID(strings.TrimSpace(req.ProjectID.String()))
	if req.ProjectID == "" {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "Please select a project",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Warnf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "package type is required",
		})
	}

	if _, ok := catalog.AddOn(req.PackageType); !ok {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "unknown package type",
		})
	}

	if !h.locks.acquire(auth.Session.ID) {
		return c.JSON(http.StatusConflict, response{
			Success: false,
			Message: "a purchase is already in progress",
		})
	}
	defer h.locks.release(auth.Session.ID)

	ctx := c.Request().Context()
	message, err := h.store.backend.PurchaseAddOn(ctx, auth.BackendToken, req)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to purchase add-on")
	}
	if message == "" {
		message = "purchase successful"
	}

	resp := model.PurchaseResponse{Message: message}
	user, err := h.store.refreshUser(ctx, auth)
	if err != nil {
		logger.Warnf("Purchase succeeded but profile refresh failed: %v", err)
	} else {
		resp.Billing = &user.Billing
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: message,
		Data:    resp,
	})
}

// CancelSubscription cancels the paid subscription once the user confirmed it
func (h *billingHandler) CancelSubscription(c echo.Context) error {
	logger := logrus.WithField("endpoint", "cancel_subscription")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	var req model.CancelSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if !req.Confirm {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "cancellation must be confirmed",
		})
	}

	res, err := h.store.backend.CancelSubscription(c.Request().Context(), auth.BackendToken)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to cancel subscription")
	}

	if res.Billing != nil {
		h.store.patchBilling(c.Request().Context(), auth, *res.Billing)
	}
	if res.Message == "" {
		res.Message = "subscription cancelled"
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: res.Message,
		Data:    res,
	})
}
