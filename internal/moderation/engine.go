// Package moderation implements the delete and ban cascades over the flat
// comment collection, together with the role policy and the lazy-expiry ban
// lifecycle.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
	"github.com/zahin-dev/comment-hub/backend/internal/thread"
)

var (
	// ErrNotAuthorized is returned when the policy rejects the actor.
	ErrNotAuthorized = errors.New("not authorized for this moderation action")
	// ErrNotTopLevel is returned when pinning anything but a thread root.
	ErrNotTopLevel = errors.New("only top-level comments can be pinned")
)

// Status is the outcome of a ban-status evaluation.
type Status struct {
	Banned      bool  `json:"banned"`
	BannedUntil int64 `json:"bannedUntil,omitempty"`
	Permanent   bool  `json:"permanent,omitempty"`
	// Lifted is set when a stale record was reaped during this evaluation,
	// so the caller can tell the user their suspension has ended.
	Lifted bool `json:"lifted,omitempty"`
}

// Engine cascades moderation operations across the record store.
type Engine struct {
	comments repositories.CommentRepository
	users    repositories.UserRepository
	bans     repositories.BanRepository
	pin      repositories.PinRepository
	policy   Policy
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine creates a moderation engine over the given repositories.
func NewEngine(
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	bans repositories.BanRepository,
	pin repositories.PinRepository,
	policy Policy,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		comments: comments,
		users:    users,
		bans:     bans,
		pin:      pin,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// Closure returns the target comment plus every direct and indirect reply,
// in deterministic order, using an iterative worklist over a children index
// built once per call.
func Closure(comments map[string]models.Comment, rootID string) []string {
	children := map[string][]string{}
	for id, c := range comments {
		if c.IsReply() {
			children[c.ParentID] = append(children[c.ParentID], id)
		}
	}
	for _, siblings := range children {
		sort.Strings(siblings)
	}

	closure := []string{rootID}
	worklist := []string{rootID}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		for _, child := range children[id] {
			closure = append(closure, child)
			worklist = append(worklist, child)
		}
	}
	return closure
}

// DeleteCascade removes a comment and its full descendant closure in one bulk
// operation, clearing the pin when the pinned comment is inside the closure.
// Owners may always delete their own comments; anyone else must pass the
// moderation policy against the comment's author. The deleted ids are
// returned.
func (e *Engine) DeleteCascade(ctx context.Context, actor Actor, commentID string) ([]string, error) {
	all, err := e.comments.List(ctx)
	if err != nil {
		return nil, err
	}
	target, ok := all[commentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if actor.UID != target.UserID {
		if !e.policy.CanModerate(actor, target.UserID, e.roleOf(ctx, target.UserID)) {
			return nil, ErrNotAuthorized
		}
	}

	ids := Closure(all, commentID)
	pinnedID, err := e.pin.Get(ctx)
	if err != nil {
		return nil, err
	}
	clearPin := false
	for _, id := range ids {
		if id == pinnedID && pinnedID != "" {
			clearPin = true
			break
		}
	}
	if err := e.comments.RemoveAll(ctx, ids, clearPin); err != nil {
		return nil, err
	}
	e.logger.Info().
		Str("actor", actor.UID).
		Str("comment", commentID).
		Int("deleted", len(ids)).
		Bool("pinCleared", clearPin).
		Msg("comment cascade deleted")
	return ids, nil
}

// Ban suspends a user for the given number of hours (zero means permanent),
// then purges every comment they authored in one bulk operation. The pin is
// cleared in the same operation if one of the purged comments was pinned.
func (e *Engine) Ban(ctx context.Context, actor Actor, targetUID string, durationHours float64) error {
	if !e.policy.CanModerate(actor, targetUID, e.roleOf(ctx, targetUID)) {
		return ErrNotAuthorized
	}

	nowMillis := e.now().UnixMilli()
	until := models.PermanentBanMillis
	if durationHours > 0 {
		until = nowMillis + int64(durationHours*float64(time.Hour/time.Millisecond))
	}
	record := &models.BanRecord{BannedBy: actor.UID, BannedUntil: until, Timestamp: nowMillis}
	if err := e.bans.Set(ctx, targetUID, record); err != nil {
		return err
	}

	authored, err := e.comments.ListByAuthor(ctx, targetUID)
	if err != nil {
		return err
	}
	if len(authored) > 0 {
		pinnedID, err := e.pin.Get(ctx)
		if err != nil {
			return err
		}
		_, clearPin := authored[pinnedID]
		ids := make([]string, 0, len(authored))
		for id := range authored {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if err := e.comments.RemoveAll(ctx, ids, clearPin && pinnedID != ""); err != nil {
			return err
		}
	}
	e.logger.Info().
		Str("actor", actor.UID).
		Str("target", targetUID).
		Int64("bannedUntil", until).
		Int("commentsPurged", len(authored)).
		Msg("user banned")
	return nil
}

// Unban deletes the user's ban record. Previously purged comments stay gone;
// the user may simply comment again.
func (e *Engine) Unban(ctx context.Context, actor Actor, targetUID string) error {
	if !actor.Role.IsModerator() {
		return ErrNotAuthorized
	}
	if err := e.bans.Delete(ctx, targetUID); err != nil {
		return err
	}
	e.logger.Info().Str("actor", actor.UID).Str("target", targetUID).Msg("user unbanned")
	return nil
}

// EvaluateStatus reads the user's own ban record and applies lazy expiry:
// an elapsed record is deleted on the spot and reported as lifted. There is
// no background sweep; this evaluation is the cleanup.
func (e *Engine) EvaluateStatus(ctx context.Context, uid string) (Status, error) {
	record, err := e.bans.Get(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	if record.ActiveAt(e.now().UnixMilli()) {
		return Status{Banned: true, BannedUntil: record.BannedUntil, Permanent: record.Permanent()}, nil
	}
	if err := e.bans.Delete(ctx, uid); err != nil {
		return Status{}, fmt.Errorf("reap expired ban for %s: %w", uid, err)
	}
	return Status{Lifted: true}, nil
}

// ListBans returns the active bans joined with profiles for the moderator
// view, reaping any record whose expiry has passed along the way.
func (e *Engine) ListBans(ctx context.Context, actor Actor) ([]models.BannedUserView, error) {
	if !actor.Role.IsModerator() {
		return nil, ErrNotAuthorized
	}
	bans, err := e.bans.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := e.users.List(ctx)
	if err != nil {
		return nil, err
	}

	nowMillis := e.now().UnixMilli()
	views := make([]models.BannedUserView, 0, len(bans))
	for uid, record := range bans {
		if !record.ActiveAt(nowMillis) {
			if err := e.bans.Delete(ctx, uid); err != nil {
				return nil, fmt.Errorf("reap expired ban for %s: %w", uid, err)
			}
			continue
		}
		profile := users[uid]
		username := profile.Username
		if username == "" {
			username = "Unknown User"
		}
		views = append(views, models.BannedUserView{
			UserID:      uid,
			Username:    username,
			AvatarURL:   thread.AvatarURL(profile, username),
			BannedBy:    record.BannedBy,
			BannedUntil: record.BannedUntil,
			Permanent:   record.Permanent(),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].UserID < views[j].UserID })
	return views, nil
}

// Pin marks a top-level comment for priority display.
func (e *Engine) Pin(ctx context.Context, actor Actor, commentID string) error {
	if !e.policy.CanPin(actor) {
		return ErrNotAuthorized
	}
	comment, err := e.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.IsReply() {
		return ErrNotTopLevel
	}
	return e.pin.Set(ctx, commentID)
}

// Unpin clears the pinned comment.
func (e *Engine) Unpin(ctx context.Context, actor Actor) error {
	if !e.policy.CanPin(actor) {
		return ErrNotAuthorized
	}
	return e.pin.Clear(ctx)
}

// roleOf resolves a user's role, defaulting to plain user when no profile
// exists yet.
func (e *Engine) roleOf(ctx context.Context, uid string) models.Role {
	profile, err := e.users.Get(ctx, uid)
	if err != nil {
		return models.RoleUser
	}
	return profile.Role
}

// WithClock overrides the engine's time source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}
