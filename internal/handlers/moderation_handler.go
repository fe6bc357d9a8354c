package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
)

// ModerationHandler exposes pin, ban and unban operations.
type ModerationHandler struct {
	engine *moderation.Engine
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(engine *moderation.Engine) *ModerationHandler {
	return &ModerationHandler{engine: engine}
}

// RegisterModerationRoutes registers moderation-related routes.
func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group) {
	g.PUT("/pin", h.PinComment)
	g.DELETE("/pin", h.UnpinComment)
	g.POST("/moderation/bans", h.BanUser)
	g.DELETE("/moderation/bans/:uid", h.UnbanUser)
	g.GET("/moderation/bans", h.ListBans)
}

// PinRequest defines the request body for pinning a comment.
type PinRequest struct {
	CommentID string `json:"commentId" validate:"required"`
}

// PinComment pins a top-level comment for priority display.
func (h *ModerationHandler) PinComment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req PinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.engine.Pin(c.Request().Context(), actor, req.CommentID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		case errors.Is(err, moderation.ErrNotTopLevel):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, moderation.ErrNotAuthorized):
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to pin comments")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// UnpinComment clears the pinned comment.
func (h *ModerationHandler) UnpinComment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.engine.Unpin(c.Request().Context(), actor); err != nil {
		if errors.Is(err, moderation.ErrNotAuthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to unpin comments")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// BanUser suspends a user and purges their comments.
func (h *ModerationHandler) BanUser(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req models.BanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.engine.Ban(c.Request().Context(), actor, req.UserID, req.DurationHours); err != nil {
		if errors.Is(err, moderation.ErrNotAuthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to ban this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// UnbanUser lifts a user's suspension.
func (h *ModerationHandler) UnbanUser(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.engine.Unban(c.Request().Context(), actor, c.Param("uid")); err != nil {
		if errors.Is(err, moderation.ErrNotAuthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to unban users")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBans returns the active bans for the moderator view.
func (h *ModerationHandler) ListBans(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	views, err := h.engine.ListBans(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, moderation.ErrNotAuthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to list bans")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}
