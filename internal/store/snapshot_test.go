package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahin-dev/comment-hub/backend/internal/mocks"
	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/store"
)

var errDown = errors.New("backend unavailable")

// brokenComments fails every read, standing in for a collection whose
// snapshot has not arrived.
type brokenComments struct{}

func (brokenComments) Create(context.Context, *models.Comment) (string, error) {
	return "", errDown
}
func (brokenComments) GetByID(context.Context, string) (*models.Comment, error) {
	return nil, errDown
}
func (brokenComments) List(context.Context) (map[string]models.Comment, error) {
	return nil, errDown
}
func (brokenComments) ListByAuthor(context.Context, string) (map[string]models.Comment, error) {
	return nil, errDown
}
func (brokenComments) RemoveAll(context.Context, []string, bool) error {
	return errDown
}

func TestBuildTreeRefusesUntilLoaded(t *testing.T) {
	s := mocks.NewRecordStore()
	snap := store.New(s, s.UserRepo(), s.PinRepo())

	_, err := snap.BuildTree(nil, 0)
	assert.ErrorIs(t, err, store.ErrNotLoaded)
	assert.False(t, snap.Loaded())

	require.NoError(t, snap.Refresh(context.Background()))
	assert.True(t, snap.Loaded())

	tree, err := snap.BuildTree(nil, 0)
	require.NoError(t, err)
	assert.True(t, tree.Empty)
}

func TestRefreshPartialFailureKeepsOtherCacheAndStaysUnloaded(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}

	snap := store.New(brokenComments{}, s.UserRepo(), s.PinRepo())
	err := snap.Refresh(context.Background())
	assert.ErrorIs(t, err, errDown)

	// Users loaded, comments did not: still not renderable.
	assert.False(t, snap.Loaded())
	_, err = snap.BuildTree(nil, 0)
	assert.ErrorIs(t, err, store.ErrNotLoaded)
}

func TestBuildTreeReflectsSnapshotAndExpansion(t *testing.T) {
	s := mocks.NewRecordStore()
	s.Users["u1"] = models.UserProfile{Role: models.RoleUser, Username: "alice"}
	s.Comments["A"] = models.Comment{ID: "A", UserID: "u1", Timestamp: 100}
	s.Comments["B"] = models.Comment{ID: "B", UserID: "u1", ParentID: "A", Timestamp: 200}
	s.Pinned = "A"

	snap := store.New(s, s.UserRepo(), s.PinRepo())
	require.NoError(t, snap.Refresh(context.Background()))

	tree, err := snap.BuildTree(map[string]bool{"A": true}, 300)
	require.NoError(t, err)
	require.NotNil(t, tree.Pinned)
	assert.Equal(t, "A", tree.Pinned.ID)
	assert.True(t, tree.Pinned.Expanded)
	assert.Empty(t, tree.Roots)

	// Rebuilding with different expansion state is pure presentation; the
	// same snapshot yields the same structure.
	again, err := snap.BuildTree(nil, 300)
	require.NoError(t, err)
	assert.False(t, again.Pinned.Expanded)
	assert.Equal(t, tree.Pinned.TotalReplies, again.Pinned.TotalReplies)
}
