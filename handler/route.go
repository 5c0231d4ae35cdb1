package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/notblessy/studio-core/backend"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/observability"
	"github.com/notblessy/studio-core/repository"
	"github.com/notblessy/studio-core/utils"
)

type Dependencies struct {
	Sessions   repository.SessionRepository
	Backend    *backend.Client
	Sealer     *utils.Sealer
	Avatars    utils.AvatarStore // nil disables avatar uploads
	Metrics    *observability.Metrics
	JWTSecret  string
	SessionTTL time.Duration
}

func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH, echo.OPTIONS},
	}))

	// Logger middleware
	e.Use(middleware.Logger())

	// Recover middleware
	e.Use(middleware.Recover())

	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware)
		e.GET("/metrics", deps.Metrics.Handler())
	}

	// Health check
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, response{
			Success: true,
			Data:    "pong",
		})
	})

	store := &sessionStore{sessions: deps.Sessions, backend: deps.Backend}

	// Catalog routes
	catalogHandler := NewCatalogHandler()
	catalogGroup := e.Group("/api/catalog")
	catalogGroup.GET("/plans", catalogHandler.GetPlans)
	catalogGroup.GET("/addons", catalogHandler.GetAddOns)

	// Session routes
	authHandler := NewAuthHandler(store, deps.Sealer, deps.JWTSecret, deps.SessionTTL)
	e.POST("/api/session", authHandler.CreateSession)

	// Protected routes (require a dashboard session)
	protected := e.Group("/api")
	protected.Use(NewJWTMiddleware(deps.JWTSecret, deps.Sessions, deps.Sealer).ValidateJWT)
	protected.DELETE("/session", authHandler.DeleteSession)

	// Profile routes
	profileHandler := NewProfileHandler(store, deps.Avatars)
	profile := protected.Group("/profile")
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.DELETE("", profileHandler.DeleteProfile)
	profile.POST("/avatar", profileHandler.UploadAvatar)

	// Project routes
	projectHandler := NewProjectHandler(store)
	project := protected.Group("/projects")
	project.GET("", projectHandler.GetProjects)
	project.GET("/:id", projectHandler.GetProject)
	project.PUT("/:id", projectHandler.UpdateProject)
	project.DELETE("/:id", projectHandler.DeleteProject)

	// Billing routes
	billingHandler := NewBillingHandler(store)
	billing := protected.Group("/billing")
	billing.GET("", billingHandler.GetBilling)
	billing.POST("/purchase", billingHandler.PurchaseAddOn)
	billing.POST("/cancel", billingHandler.CancelSubscription)

	// Plan routes
	planHandler := NewPlanHandler(store)
	plan := protected.Group("/plan")
	plan.GET("", planHandler.GetPlan)
	plan.PUT("", planHandler.UpdatePlan)

	// Onboarding routes
	onboardingHandler := NewOnboardingHandler(store)
	onboarding := protected.Group("/onboarding")
	onboarding.POST("", onboardingHandler.Complete(model.OnboardingStandard))
	onboarding.POST("/pricing", onboardingHandler.Complete(model.OnboardingPricing))
}
