package handler

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/utils"
	"github.com/sirupsen/logrus"
)

const maxAvatarSize = 5 * 1024 * 1024

type profileHandler struct {
	store    *sessionStore
	avatars  utils.AvatarStore
	validate *validator.Validate
}

func NewProfileHandler(store *sessionStore, avatars utils.AvatarStore) *profileHandler {
	return &profileHandler{
		store:    store,
		avatars:  avatars,
		validate: validator.New(),
	}
}

// GetProfile reloads the profile from the backend and refreshes the session cache
func (h *profileHandler) GetProfile(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_profile")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	user, err := h.store.refreshUser(c.Request().Context(), auth)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve profile")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    user,
	})
}

func (h *profileHandler) UpdateProfile(c echo.Context) error {
	logger := logrus.WithField("endpoint", "update_profile")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	var req model.UpdateProfileRequest
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
			Message: err.Error(),
		})
	}

	if req.Empty() {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "no profile fields to update",
		})
	}

	user, err := h.store.backend.UpdateProfile(c.Request().Context(), auth.BackendToken, req)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to update profile")
	}

	if err := h.store.cacheUser(c.Request().Context(), auth, user); err != nil {
		logger.Errorf("Error caching profile: %v", err)
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    user,
	})
}

// DeleteProfile deletes the account upstream and ends the session
func (h *profileHandler) DeleteProfile(c echo.Context) error {
	logger := logrus.WithField("endpoint", "delete_profile")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	if err := h.store.backend.DeleteProfile(c.Request().Context(), auth.BackendToken); err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to delete account")
	}

	h.store.teardown(c.Request().Context(), auth)

	return c.JSON(http.StatusOK, response{
		Success:  true,
		Message:  "account deleted",
		Redirect: "/",
	})
}

// UploadAvatar stores a profile picture on Cloudinary and saves its URL on the profile
func (h *profileHandler) UploadAvatar(c echo.Context) error {
	logger := logrus.WithField("endpoint", "upload_avatar")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	if h.avatars == nil {
		return c.JSON(http.StatusServiceUnavailable, response{
			Success: false,
			Message: "avatar uploads are not configured",
		})
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.Warnf("Error getting file: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "avatar file is required",
		})
	}

	if file.Size > maxAvatarSize {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "file size must be less than 5MB",
		})
	}

	user, err := h.store.currentUser(c.Request().Context(), auth)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve profile")
	}

	src, err := file.Open()
	if err != nil {
		logger.Errorf("Error opening file: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to read file",
		})
	}
	defer src.Close()

	url, err := h.avatars.UploadAvatar(c.Request().Context(), src, "avatar-"+user.ID.String())
	if err != nil {
		logger.Errorf("Error uploading avatar: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to upload avatar",
		})
	}

	updated, err := h.store.backend.UpdateProfile(c.Request().Context(), auth.BackendToken, model.UpdateProfileRequest{Avatar: &url})
	if err != nil {
		if publicID := utils.GetPublicIDFromURL(url); publicID != "" {
			if delErr := h.avatars.DeleteAvatar(c.Request().Context(), publicID); delErr != nil {
				logger.Errorf("Error removing orphaned avatar: %v", delErr)
			}
		}
		return h.store.backendFailure(c, logger, auth, err, "failed to update profile")
	}

	if err := h.store.cacheUser(c.Request().Context(), auth, updated); err != nil {
		logger.Errorf("Error caching profile: %v", err)
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    updated,
	})
}
