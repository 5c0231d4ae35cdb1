package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/usage"
	"github.com/sirupsen/logrus"
)

type projectHandler struct {
	store    *sessionStore
	validate *validator.Validate
}

func NewProjectHandler(store *sessionStore) *projectHandler {
	return &projectHandler{
		store:    store,
		validate: validator.New(),
	}
}

func projectID(c echo.Context) (model.ID, bool) {
	id := strings.TrimSpace(c.Param("id"))
	return model.ID(id), id != ""
}

func (h *projectHandler) GetProjects(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_projects")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	projects, err := h.store.backend.ListProjects(c.Request().Context(), auth.BackendToken)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve projects")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    projects,
	})
}

// GetProject returns a project together with its document-usage bar
func (h *projectHandler) GetProject(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_project")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	id, ok := projectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid project ID",
		})
	}

	project, err := h.store.backend.GetProject(c.Request().Context(), auth.BackendToken, id)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to retrieve project")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: model.ProjectResponse{
			Project: *project,
			Usage:   usage.Compute(usage.FromProject(*project)),
		},
	})
}

func (h *projectHandler) UpdateProject(c echo.Context) error {
	logger := logrus.WithField("endpoint", "update_project")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	id, ok := projectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid project ID",
		})
	}

	var req model.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if err := h.validate.Struct(req); err != nil {
		logger.Warnf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "project name is required",
		})
	}

	project, err := h.store.backend.UpdateProject(c.Request().Context(), auth.BackendToken, id, req)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to update project")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    project,
	})
}

func (h *projectHandler) DeleteProject(c echo.Context) error {
	logger := logrus.WithField("endpoint", "delete_project")

	auth, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return unauthorized(c, "unauthorized")
	}

	id, ok := projectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid project ID",
		})
	}

	message, err := h.store.backend.DeleteProject(c.Request().Context(), auth.BackendToken, id)
	if err != nil {
		return h.store.backendFailure(c, logger, auth, err, "failed to delete project")
	}
	if message == "" {
		message = "project deleted"
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: message,
	})
}
