package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/pkg/config"
)

// ConfigHandler serves the backend connection parameters the browser SDK
// initializes from. Access control happens in the gate middleware.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// GetFirebaseConfig returns the public web config as JSON.
func (h *ConfigHandler) GetFirebaseConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cfg.WebConfig())
}
