package uploads_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahin-dev/comment-hub/backend/internal/uploads"
)

func fixedClock() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestUploadTwoStepProtocol(t *testing.T) {
	var putBody string
	var putContentType string
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		putBody = string(body)
		putContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer fileServer.Close()

	var signPayload map[string]string
	signServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&signPayload))
		json.NewEncoder(w).Encode(map[string]string{"presignedUrl": fileServer.URL + "/put"})
	}))
	defer signServer.Close()

	client := uploads.NewClient(signServer.URL, "https://files.example.com/uploads", "uploads").
		WithClock(fixedClock)

	url, err := client.Upload(context.Background(), "my photo  1.png", "image/png", strings.NewReader("bytes"))
	require.NoError(t, err)

	// Whitespace collapses to underscores behind a millisecond prefix, and
	// the public URL is derived without asking the service.
	assert.Equal(t, "1700000000000-my_photo_1.png", signPayload["fileName"])
	assert.Equal(t, "uploads", signPayload["folder"])
	assert.Equal(t, "https://files.example.com/uploads/1700000000000-my_photo_1.png", url)
	assert.Equal(t, "bytes", putBody)
	assert.Equal(t, "image/png", putContentType)
}

func TestUploadSignFailure(t *testing.T) {
	signServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer signServer.Close()

	client := uploads.NewClient(signServer.URL, "https://files.example.com/uploads", "uploads")
	_, err := client.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestUploadPutFailure(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer fileServer.Close()

	signServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"presignedUrl": fileServer.URL})
	}))
	defer signServer.Close()

	client := uploads.NewClient(signServer.URL, "https://files.example.com/uploads", "uploads")
	_, err := client.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestUploadEmptyPresignedURL(t *testing.T) {
	signServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer signServer.Close()

	client := uploads.NewClient(signServer.URL, "https://files.example.com/uploads", "uploads")
	_, err := client.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
