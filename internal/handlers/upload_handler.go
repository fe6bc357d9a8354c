package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zahin-dev/comment-hub/backend/internal/uploads"
)

// UploadHandler pushes image attachments through the external upload
// service.
type UploadHandler struct {
	uploader *uploads.Client
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploader *uploads.Client) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterUploadRoutes registers upload routes.
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.UploadImage)
}

// UploadImage accepts one multipart file and returns its public URL. A
// failure flags only this attachment; the client retries by re-selecting the
// file.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	if _, err := claimsFromContext(c); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploader.Upload(c.Request().Context(), fileHeader.Filename, contentType, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Upload failed: "+err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
