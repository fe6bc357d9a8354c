package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
)

// claimsFromContext pulls the session claims stored by the JWT middleware.
func claimsFromContext(c echo.Context) (*models.JwtCustomClaims, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing session claims")
	}
	return claims, nil
}

// actorFromContext converts session claims into a moderation actor.
func actorFromContext(c echo.Context) (moderation.Actor, error) {
	claims, err := claimsFromContext(c)
	if err != nil {
		return moderation.Actor{}, err
	}
	return moderation.Actor{UID: claims.UID, Role: claims.Role}, nil
}
