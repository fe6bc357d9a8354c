package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/store"
)

// ThreadHandler serves the rendered comment tree.
type ThreadHandler struct {
	snapshot *store.Snapshot
	now      func() time.Time
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(snapshot *store.Snapshot) *ThreadHandler {
	return &ThreadHandler{snapshot: snapshot, now: time.Now}
}

// RegisterThreadRoutes registers thread routes.
func (h *ThreadHandler) RegisterThreadRoutes(g *echo.Group) {
	g.GET("/thread", h.GetThread)
}

// GetThread refreshes the snapshot caches and returns the render tree. The
// expanded query parameter carries the viewer's opened thread-root ids as a
// comma-separated list; it is reflected into the tree but never persisted.
func (h *ThreadHandler) GetThread(c echo.Context) error {
	expanded := map[string]bool{}
	if raw := c.QueryParam("expanded"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				expanded[id] = true
			}
		}
	}

	if err := h.snapshot.Refresh(c.Request().Context()); err != nil {
		// Stale caches still render; only a never-loaded snapshot is fatal
		// below.
		c.Logger().Warnf("snapshot refresh: %v", err)
	}

	tree, err := h.snapshot.BuildTree(expanded, h.now().UnixMilli())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Comment data is still loading")
	}
	return c.JSON(http.StatusOK, tree)
}
