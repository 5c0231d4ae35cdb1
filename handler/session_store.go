package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/backend"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/repository"
	"github.com/sirupsen/logrus"
)

// sessionStore is the one place handlers read and write the cached profile
// of a dashboard session.
type sessionStore struct {
	sessions repository.SessionRepository
	backend  *backend.Client
}

func (s *sessionStore) cacheUser(ctx context.Context, auth *authContext, user *model.User) error {
	encoded, err := model.EncodeUser(user)
	if err != nil {
		return err
	}
	if err := s.sessions.UpdateUser(ctx, auth.Session.ID, encoded); err != nil {
		return err
	}
	auth.Session.User = encoded
	return nil
}

// refreshUser fetches the profile from the backend and caches it.
func (s *sessionStore) refreshUser(ctx context.Context, auth *authContext) (*model.User, error) {
	user, err := s.backend.GetProfile(ctx, auth.BackendToken)
	if err != nil {
		return nil, err
	}
	if err := s.cacheUser(ctx, auth, user); err != nil {
		logrus.Errorf("Error caching profile for session %s: %v", auth.Session.ID, err)
	}
	return user, nil
}

// currentUser returns the cached profile, fetching it when the session has none.
func (s *sessionStore) currentUser(ctx context.Context, auth *authContext) (*model.User, error) {
	user, err := auth.Session.CachedUser()
	if err != nil {
		logrus.Warnf("Discarding unreadable cached profile for session %s: %v", auth.Session.ID, err)
	}
	if user != nil {
		return user, nil
	}
	return s.refreshUser(ctx, auth)
}

// patchBilling replaces the billing part of the cached profile.
func (s *sessionStore) patchBilling(ctx context.Context, auth *authContext, billing model.Billing) {
	user, err := auth.Session.CachedUser()
	if err != nil || user == nil {
		return
	}
	user.Billing = billing
	if err := s.cacheUser(ctx, auth, user); err != nil {
		logrus.Errorf("Error patching cached billing for session %s: %v", auth.Session.ID, err)
	}
}

// teardown clears the session's token and cached profile.
func (s *sessionStore) teardown(ctx context.Context, auth *authContext) {
	if auth == nil {
		return
	}
	if err := s.sessions.Delete(ctx, auth.Session.ID); err != nil {
		logrus.Errorf("Error deleting session %s: %v", auth.Session.ID, err)
	}
}

// backendFailure renders a failed backend call. A 401 also tears the session down.
func (s *sessionStore) backendFailure(c echo.Context, logger *logrus.Entry, auth *authContext, err error, fallback string) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		logger.Warnf("Backend rejected session: %v", err)
		s.teardown(c.Request().Context(), auth)
		return c.JSON(http.StatusUnauthorized, response{
			Success:  false,
			Message:  "session expired",
			Redirect: loginPath,
		})
	}

	if errors.Is(err, backend.ErrConnection) {
		logger.Errorf("Backend unreachable: %v", err)
		return c.JSON(http.StatusBadGateway, response{
			Success: false,
			Message: backend.ConnectionErrorMessage,
		})
	}

	if apiErr, ok := backend.AsAPIError(err); ok {
		status := apiErr.StatusCode
		switch {
		case status < 400:
			status = http.StatusBadRequest
		case status >= 500:
			status = http.StatusBadGateway
		}
		logger.Warnf("Backend refused request: %v", apiErr)
		return c.JSON(status, response{
			Success: false,
			Message: apiErr.Message,
		})
	}

	logger.Errorf("Backend call failed: %v", err)
	return c.JSON(http.StatusInternalServerError, response{
		Success: false,
		Message: fallback,
	})
}
