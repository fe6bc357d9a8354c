// Package uploads implements the two-step image upload protocol: request a
// presigned URL from the signing endpoint, PUT the raw bytes to it, and
// derive the public URL from the normalized file name.
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// Client uploads files through an external presigned-URL service.
type Client struct {
	httpClient   *http.Client
	signEndpoint string
	publicBase   string
	folder       string
	now          func() time.Time
}

// NewClient creates an upload client. publicBase is the URL prefix under
// which uploaded files become retrievable, including the folder segment.
func NewClient(signEndpoint, publicBase, folder string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		signEndpoint: signEndpoint,
		publicBase:   publicBase,
		folder:       folder,
		now:          time.Now,
	}
}

type signRequest struct {
	Folder   string `json:"folder"`
	FileName string `json:"fileName"`
}

type signResponse struct {
	PresignedURL string `json:"presignedUrl"`
}

// UniqueFileName prefixes the name with the current epoch millis and
// collapses whitespace runs to underscores, so the public URL is derivable
// without consulting the upload service.
func (c *Client) UniqueFileName(name string) string {
	return fmt.Sprintf("%d-%s", c.now().UnixMilli(), whitespace.ReplaceAllString(name, "_"))
}

// Upload pushes one file and returns its public URL. Failures affect only
// this attachment; callers retry by re-submitting the file.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	unique := c.UniqueFileName(fileName)

	payload, err := json.Marshal(signRequest{Folder: c.folder, FileName: unique})
	if err != nil {
		return "", fmt.Errorf("encode sign request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request signed url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request signed url: unexpected status %d", resp.StatusCode)
	}
	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decode signed url: %w", err)
	}
	if signed.PresignedURL == "" {
		return "", fmt.Errorf("signing endpoint returned no url")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, signed.PresignedURL, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("upload file: unexpected status %d", putResp.StatusCode)
	}

	return c.publicBase + "/" + unique, nil
}

// WithClock overrides the client's time source. Tests only.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}
