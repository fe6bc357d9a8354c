// Package store holds the read-through caches of the record store snapshots.
// The caches are never the source of truth; they exist so the render step can
// be recomputed from a consistent in-memory snapshot and so rendering can be
// deferred until every required collection has loaded at least once.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
	"github.com/zahin-dev/comment-hub/backend/internal/thread"
)

// ErrNotLoaded is returned while either required collection has not yet
// delivered its first snapshot. Rendering against a half-populated world
// would show comments with missing authors, so the builder refuses instead.
var ErrNotLoaded = errors.New("snapshots not loaded yet")

// Snapshot caches the comments and users collections plus the pinned id,
// with per-collection loaded flags. The browser original was serialized by
// its event loop; here concurrent HTTP handlers share the cache, so access
// goes through a RWMutex.
type Snapshot struct {
	comments repositories.CommentRepository
	users    repositories.UserRepository
	pin      repositories.PinRepository

	mu             sync.RWMutex
	cachedComments map[string]models.Comment
	cachedUsers    map[string]models.UserProfile
	pinnedID       string
	commentsLoaded bool
	usersLoaded    bool
}

// New creates an empty snapshot cache over the given repositories.
func New(comments repositories.CommentRepository, users repositories.UserRepository, pin repositories.PinRepository) *Snapshot {
	return &Snapshot{comments: comments, users: users, pin: pin}
}

// Refresh pulls fresh snapshots of all three inputs. Each collection lands
// independently, mirroring the independent upstream subscriptions: a failed
// read leaves that collection's previous cache (and loaded flag) intact while
// the others still advance. The first error is returned.
func (s *Snapshot) Refresh(ctx context.Context) error {
	var firstErr error

	if comments, err := s.comments.List(ctx); err == nil {
		s.mu.Lock()
		s.cachedComments = comments
		s.commentsLoaded = true
		s.mu.Unlock()
	} else {
		firstErr = err
	}

	if users, err := s.users.List(ctx); err == nil {
		s.mu.Lock()
		s.cachedUsers = users
		s.usersLoaded = true
		s.mu.Unlock()
	} else if firstErr == nil {
		firstErr = err
	}

	if pinnedID, err := s.pin.Get(ctx); err == nil {
		s.mu.Lock()
		s.pinnedID = pinnedID
		s.mu.Unlock()
	} else if firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// Loaded reports whether both required collections have delivered at least
// one snapshot.
func (s *Snapshot) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commentsLoaded && s.usersLoaded
}

// BuildTree runs the thread builder over the cached snapshot. It is safe to
// call repeatedly and from concurrent requests; until both collections have
// loaded it returns ErrNotLoaded.
func (s *Snapshot) BuildTree(expanded map[string]bool, now int64) (thread.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.commentsLoaded || !s.usersLoaded {
		return thread.Tree{}, ErrNotLoaded
	}
	return thread.Build(thread.Input{
		Comments: s.cachedComments,
		Users:    s.cachedUsers,
		PinnedID: s.pinnedID,
		Expanded: expanded,
		Now:      now,
	}), nil
}

// Poll refreshes the cache on the given interval until the context is
// cancelled. The Go admin SDK has no realtime listeners, so polling stands in
// for the widget's onValue subscriptions.
func (s *Snapshot) Poll(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("snapshot refresh failed")
			}
		}
	}
}
