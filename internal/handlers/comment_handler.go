package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	engine            *moderation.Engine
	now               func() time.Time
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentRepo repositories.CommentRepository, engine *moderation.Engine) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		engine:            engine,
		now:               time.Now,
	}
}

// RegisterCommentRoutes registers comment-related routes.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment posts a new comment or reply. The server assigns the id and
// the timestamp; banned users are refused, with a stale ban reaped on the
// spot.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims, err := claimsFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Message == "" && len(req.ImageURLs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "A comment needs a message or at least one image")
	}

	status, err := h.engine.EvaluateStatus(c.Request().Context(), claims.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if status.Banned {
		return echo.NewHTTPError(http.StatusForbidden, echo.Map{
			"message":     "Your account is suspended. You cannot post or comment.",
			"bannedUntil": status.BannedUntil,
			"permanent":   status.Permanent,
		})
	}

	comment := &models.Comment{
		UserID:    claims.UID,
		Timestamp: h.now().UnixMilli(),
		ParentID:  req.ParentID,
		Message:   req.Message,
		ImageURLs: req.ImageURLs,
	}
	if _, err := h.commentRepository.Create(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment cascade-deletes a comment with every transitive reply.
// Owners may delete their own; moderators act per policy.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	deleted, err := h.engine.DeleteCascade(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		case errors.Is(err, moderation.ErrNotAuthorized):
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"deletedIds": deleted})
}
