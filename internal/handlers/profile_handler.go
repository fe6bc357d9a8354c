package handlers

import (
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
)

// ProfileHandler serves and edits the caller's own profile.
type ProfileHandler struct {
	userRepository repositories.UserRepository
	engine         *moderation.Engine
	firebaseAuth   *auth.Client
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userRepo repositories.UserRepository, engine *moderation.Engine, firebaseAuthClient *auth.Client) *ProfileHandler {
	return &ProfileHandler{
		userRepository: userRepo,
		engine:         engine,
		firebaseAuth:   firebaseAuthClient,
	}
}

// RegisterProfileRoutes registers profile routes.
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/me", h.GetProfile)
	g.PUT("/me", h.UpdateProfile)
}

// GetProfile returns the caller's profile with their current ban status,
// reaping a stale ban as a side effect of the evaluation.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	claims, err := claimsFromContext(c)
	if err != nil {
		return err
	}

	profile, err := h.userRepository.Get(c.Request().Context(), claims.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status, err := h.engine.EvaluateStatus(c.Request().Context(), claims.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"profile": profile, "banStatus": status})
}

// UpdateProfile patches the caller's username and/or profile picture in one
// field-level update, and keeps the identity provider's display name in sync
// when the username changes.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	claims, err := claimsFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.ProfilePictureURL != "" {
		fields["profilePictureUrl"] = req.ProfilePictureURL
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nothing to update")
	}

	if err := h.userRepository.UpdateFields(c.Request().Context(), claims.UID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Username != "" && h.firebaseAuth != nil {
		params := (&auth.UserToUpdate{}).DisplayName(req.Username)
		if _, err := h.firebaseAuth.UpdateUser(c.Request().Context(), claims.UID, params); err != nil {
			// Profile fields are already saved; the display-name sync is
			// best effort, as in the widget.
			c.Logger().Warnf("display name sync for %s: %v", claims.UID, err)
		}
	}

	profile, err := h.userRepository.Get(c.Request().Context(), claims.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}
