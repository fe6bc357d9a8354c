// Package mocks provides an in-memory record store implementing the
// repository interfaces for tests.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
	"github.com/zahin-dev/comment-hub/backend/internal/repositories"
)

// RecordStore is a fake of the realtime database holding all four
// collections behind one mutex, so multi-path removals behave atomically the
// way the real store's bulk update does.
type RecordStore struct {
	mu       sync.Mutex
	Comments map[string]models.Comment
	Users    map[string]models.UserProfile
	Bans     map[string]models.BanRecord
	Pinned   string
	nextID   int
}

// NewRecordStore creates an empty in-memory store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Comments: map[string]models.Comment{},
		Users:    map[string]models.UserProfile{},
		Bans:     map[string]models.BanRecord{},
	}
}

// --- repositories.CommentRepository ---

func (s *RecordStore) Create(_ context.Context, comment *models.Comment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	// zero-padded so lexicographic id order matches creation order, like
	// real push keys
	id := fmt.Sprintf("-C%06d", s.nextID)
	comment.ID = id
	s.Comments[id] = *comment
	return id, nil
}

func (s *RecordStore) GetByID(_ context.Context, id string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.Comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (s *RecordStore) List(_ context.Context) (map[string]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Comment, len(s.Comments))
	for id, c := range s.Comments {
		out[id] = c
	}
	return out, nil
}

func (s *RecordStore) ListByAuthor(_ context.Context, userID string) (map[string]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]models.Comment{}
	for id, c := range s.Comments {
		if c.UserID == userID {
			out[id] = c
		}
	}
	return out, nil
}

func (s *RecordStore) RemoveAll(_ context.Context, ids []string, clearPin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.Comments, id)
	}
	if clearPin {
		s.Pinned = ""
	}
	return nil
}

// --- repositories.UserRepository ---

func (s *RecordStore) Get(_ context.Context, uid string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.Users[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &profile, nil
}

func (s *RecordStore) ListUsers(_ context.Context) (map[string]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.UserProfile, len(s.Users))
	for uid, p := range s.Users {
		out[uid] = p
	}
	return out, nil
}

func (s *RecordStore) CreateUser(_ context.Context, uid string, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[uid] = *profile
	return nil
}

func (s *RecordStore) UpdateFields(_ context.Context, uid string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.Users[uid]
	if v, ok := fields["username"].(string); ok {
		profile.Username = v
	}
	if v, ok := fields["profilePictureUrl"].(string); ok {
		profile.ProfilePictureURL = v
	}
	s.Users[uid] = profile
	return nil
}

// --- repositories.BanRepository ---

func (s *RecordStore) GetBan(_ context.Context, uid string) (*models.BanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.Bans[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

func (s *RecordStore) ListBans(_ context.Context) (map[string]models.BanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.BanRecord, len(s.Bans))
	for uid, b := range s.Bans {
		out[uid] = b
	}
	return out, nil
}

func (s *RecordStore) SetBan(_ context.Context, uid string, record *models.BanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bans[uid] = *record
	return nil
}

func (s *RecordStore) DeleteBan(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Bans, uid)
	return nil
}

// --- repositories.PinRepository ---

func (s *RecordStore) GetPin(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pinned, nil
}

func (s *RecordStore) SetPin(_ context.Context, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pinned = commentID
	return nil
}

func (s *RecordStore) ClearPin(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pinned = ""
	return nil
}

// Adapters exposing the store through the repository interfaces. The comment
// methods sit directly on RecordStore; users, bans and the pin get thin
// wrappers because their method names collide.

// UserRepo returns the store as a repositories.UserRepository.
func (s *RecordStore) UserRepo() repositories.UserRepository { return userRepo{s} }

// BanRepo returns the store as a repositories.BanRepository.
func (s *RecordStore) BanRepo() repositories.BanRepository { return banRepo{s} }

// PinRepo returns the store as a repositories.PinRepository.
func (s *RecordStore) PinRepo() repositories.PinRepository { return pinRepo{s} }

type userRepo struct{ s *RecordStore }

func (r userRepo) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	return r.s.Get(ctx, uid)
}
func (r userRepo) List(ctx context.Context) (map[string]models.UserProfile, error) {
	return r.s.ListUsers(ctx)
}
func (r userRepo) Create(ctx context.Context, uid string, profile *models.UserProfile) error {
	return r.s.CreateUser(ctx, uid, profile)
}
func (r userRepo) UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	return r.s.UpdateFields(ctx, uid, fields)
}

type banRepo struct{ s *RecordStore }

func (r banRepo) Get(ctx context.Context, uid string) (*models.BanRecord, error) {
	return r.s.GetBan(ctx, uid)
}
func (r banRepo) List(ctx context.Context) (map[string]models.BanRecord, error) {
	return r.s.ListBans(ctx)
}
func (r banRepo) Set(ctx context.Context, uid string, record *models.BanRecord) error {
	return r.s.SetBan(ctx, uid, record)
}
func (r banRepo) Delete(ctx context.Context, uid string) error {
	return r.s.DeleteBan(ctx, uid)
}

type pinRepo struct{ s *RecordStore }

func (r pinRepo) Get(ctx context.Context) (string, error) { return r.s.GetPin(ctx) }
func (r pinRepo) Set(ctx context.Context, commentID string) error {
	return r.s.SetPin(ctx, commentID)
}
func (r pinRepo) Clear(ctx context.Context) error { return r.s.ClearPin(ctx) }
