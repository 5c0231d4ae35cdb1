package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/backend"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/utils"
	"github.com/sirupsen/logrus"
)

type response struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

type authHandler struct {
	store      *sessionStore
	sealer     *utils.Sealer
	jwtSecret  string
	sessionTTL time.Duration
	validate   *validator.Validate
}

func NewAuthHandler(store *sessionStore, sealer *utils.Sealer, jwtSecret string, sessionTTL time.Duration) *authHandler {
	return &authHandler{
		store:      store,
		sealer:     sealer,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		validate:   validator.New(),
	}
}

// CreateSession exchanges a backend bearer token for a dashboard session.
func (h *authHandler) CreateSession(c echo.Context) error {
	logger := logrus.WithField("endpoint", "create_session")

	var req model.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Errorf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: err.Error(),
		})
	}

	user, err := h.store.backend.GetProfile(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			logger.Warnf("Backend rejected token: %v", err)
			return unauthorized(c, "invalid token")
		}
		return h.store.backendFailure(c, logger, nil, err, "failed to verify token")
	}

	sealed, err := h.sealer.Seal(req.Token)
	if err != nil {
		logger.Errorf("Error sealing token: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create session",
		})
	}

	cached, err := model.EncodeUser(user)
	if err != nil {
		logger.Errorf("Error encoding profile: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create session",
		})
	}

	session := &model.Session{
		ID:          uuid.NewString(),
		SealedToken: sealed,
		User:        cached,
		ExpiresAt:   time.Now().Add(h.sessionTTL),
	}
	if err := h.store.sessions.Create(c.Request().Context(), session); err != nil {
		logger.Errorf("Error creating session: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create session",
		})
	}

	token, err := signJWTToken(h.jwtSecret, session.ID, h.sessionTTL)
	if err != nil {
		logger.Errorf("Error generating token: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to generate token",
		})
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data: model.SessionResponse{
			Token: token,
			Type:  "Bearer",
			User:  *user,
		},
	})
}

// DeleteSession logs out: the stored token and cached profile are dropped.
func (h *authHandler) DeleteSession(c echo.Context) error {
	logger := logrus.WithField("endpoint", "delete_session")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	if err := h.store.sessions.Delete(c.Request().Context(), auth.Session.ID); err != nil {
		logger.Errorf("Error deleting session: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to log out",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success:  true,
		Message:  "logged out",
		Redirect: loginPath,
	})
}
