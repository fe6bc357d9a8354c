package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
)

// AuthHandler exchanges Firebase ID tokens for local session JWTs, creating
// the profile lazily on first sign-in.
type AuthHandler struct {
	userRepository repositories.UserRepository
	engine         *moderation.Engine
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, engine *moderation.Engine, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		engine:         engine,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/firebase-login", h.FirebaseLogin)
}

// FirebaseLogin verifies a Firebase ID token, ensures a profile exists,
// evaluates the caller's ban status (reaping a stale ban lazily) and issues
// a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	displayName := ""
	if name, ok := token.Claims["name"].(string); ok {
		displayName = name
	}

	profile, err := h.ensureProfile(c, token.UID, displayName)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status, err := h.engine.EvaluateStatus(c.Request().Context(), token.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	signed, err := h.generateJWT(token.UID, profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":     signed,
		"profile":   profile,
		"banStatus": status,
	})
}

// ensureProfile loads the profile at users/{uid}, creating the default one on
// first sign-in.
func (h *AuthHandler) ensureProfile(c echo.Context, uid, displayName string) (*models.UserProfile, error) {
	ctx := c.Request().Context()
	profile, err := h.userRepository.Get(ctx, uid)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	username := displayName
	if username == "" {
		short := uid
		if len(short) > 5 {
			short = short[:5]
		}
		username = "user" + short
	}
	fresh := &models.UserProfile{Role: models.RoleUser, Username: username}
	if err := h.userRepository.Create(ctx, uid, fresh); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return fresh, nil
}

func (h *AuthHandler) generateJWT(uid string, profile *models.UserProfile) (string, error) {
	claims := &models.JwtCustomClaims{
		UID:      uid,
		Username: profile.Username,
		Role:     profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
