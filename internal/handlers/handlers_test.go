package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahin-dev/comment-hub/backend/internal/handlers"
	"github.com/zahin-dev/comment-hub/backend/internal/mocks"
	"github.com/zahin-dev/comment-hub/backend/internal/moderation"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/store"
	"github.com/zahin-dev/comment-hub/backend/internal/validators"
	"github.com/zahin-dev/comment-hub/backend/pkg/config"

	"github.com/labstack/echo/v4"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func newEngine(s *mocks.RecordStore) *moderation.Engine {
	return moderation.NewEngine(s, s.UserRepo(), s.BanRepo(), s.PinRepo(), moderation.Policy{}, zerolog.Nop())
}

func sessionContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, uid string, role models.Role) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UID: uid, Username: uid, Role: role})
	return c
}

func TestCreateCommentAssignsIDAndTimestamp(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	body := `{"message":"hello","parentId":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreateComment(sessionContext(e, req, rec, "u1", models.RoleUser))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.InDelta(t, time.Now().UnixMilli(), created.Timestamp, 5000)
	assert.Contains(t, s.Comments, created.ID)
}

func TestCreateCommentRequiresContent(t *testing.T) {
	s := mocks.NewRecordStore()
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreateComment(sessionContext(e, req, rec, "u1", models.RoleUser))
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCreateCommentRejectsThreeImages(t *testing.T) {
	s := mocks.NewRecordStore()
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	body := `{"imageUrls":["https://a.test/1.png","https://a.test/2.png","https://a.test/3.png"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreateComment(sessionContext(e, req, rec, "u1", models.RoleUser))
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestCreateCommentRefusedWhileBanned(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Bans["u1"] = models.BanRecord{BannedBy: "mod", BannedUntil: models.PermanentBanMillis, Timestamp: 1}
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreateComment(sessionContext(e, req, rec, "u1", models.RoleUser))
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Len(t, s.Comments, 0)
}

func TestCreateCommentReapsStaleBan(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Bans["u1"] = models.BanRecord{BannedBy: "mod", BannedUntil: 1, Timestamp: 1}
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreateComment(sessionContext(e, req, rec, "u1", models.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, s.Bans, "u1", "stale ban reaped on the posting path")
}

func TestDeleteCommentCascades(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	s.Comments["A"] = models.Comment{ID: "A", UserID: "u1", Timestamp: 100}
	s.Comments["B"] = models.Comment{ID: "B", UserID: "u2", ParentID: "A", Timestamp: 200}
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/A", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, "u1", models.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("A")

	require.NoError(t, h.DeleteComment(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DeletedIDs []string `json:"deletedIds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"A", "B"}, resp.DeletedIDs)
	assert.Empty(t, s.Comments)
}

func TestDeleteCommentForbiddenForStranger(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	s.Comments["A"] = models.Comment{ID: "A", UserID: "u1", Timestamp: 100}
	h := handlers.NewCommentHandler(s, newEngine(s))
	e := newEcho()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/A", nil)
	rec := httptest.NewRecorder()
	c := sessionContext(e, req, rec, "u2", models.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("A")

	err := h.DeleteComment(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Contains(t, s.Comments, "A")
}

func TestGetThreadRendersSnapshot(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	s.Comments["A"] = models.Comment{ID: "A", UserID: "u1", Timestamp: 100}
	s.Comments["B"] = models.Comment{ID: "B", UserID: "u1", ParentID: "A", Timestamp: 200}

	snap := store.New(s, s.UserRepo(), s.PinRepo())
	h := handlers.NewThreadHandler(snap)
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/thread?expanded=A", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.GetThread(sessionContext(e, req, rec, "u1", models.RoleUser)))
	require.Equal(t, http.StatusOK, rec.Code)

	var tree struct {
		Empty bool `json:"empty"`
		Roots []struct {
			ID           string `json:"id"`
			TotalReplies int    `json:"totalReplies"`
			Expanded     bool   `json:"expanded"`
		} `json:"roots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.False(t, tree.Empty)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "A", tree.Roots[0].ID)
	assert.Equal(t, 1, tree.Roots[0].TotalReplies)
	assert.True(t, tree.Roots[0].Expanded)
}

func TestGetFirebaseConfigShape(t *testing.T) {
	cfg := &config.Config{
		FirebaseAPIKey:            "key",
		FirebaseAuthDomain:        "app.firebaseapp.com",
		FirebaseDatabaseURL:       "https://app-default-rtdb.firebaseio.com",
		FirebaseProjectID:         "app",
		FirebaseStorageBucket:     "app.appspot.com",
		FirebaseMessagingSenderID: "42",
		FirebaseAppID:             "1:42:web:abc",
		FirebaseMeasurementID:     "G-XYZ",
	}
	h := handlers.NewConfigHandler(cfg)
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/firebase-config", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetFirebaseConfig(e.NewContext(req, rec)))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"apiKey", "authDomain", "databaseURL", "projectId", "storageBucket", "messagingSenderId", "appId", "measurementId"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, "key", body["apiKey"])
}

func TestUpdateProfilePatchesFields(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	h := handlers.NewProfileHandler(s.UserRepo(), newEngine(s), nil)
	e := newEcho()

	body := `{"username":"alice2","profilePictureUrl":"https://files.example.com/uploads/1-p.png"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/me", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.UpdateProfile(sessionContext(e, req, rec, "u1", models.RoleUser)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "alice2", s.Users["u1"].Username)
	assert.Equal(t, "https://files.example.com/uploads/1-p.png", s.Users["u1"].ProfilePictureURL)
	assert.Equal(t, models.RoleUser, s.Users["u1"].Role, "field patch must not touch the role")
}

func TestUpdateProfileNothingToUpdate(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	h := handlers.NewProfileHandler(s.UserRepo(), newEngine(s), nil)
	e := newEcho()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/me", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.UpdateProfile(sessionContext(e, req, rec, "u1", models.RoleUser))
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
