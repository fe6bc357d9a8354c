package repositories

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/zahin-dev/comment-hub/backend/internal/models"
)

// UserRepository defines the interface for profile data operations.
type UserRepository interface {
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	List(ctx context.Context) (map[string]models.UserProfile, error)
	Create(ctx context.Context, uid string, profile *models.UserProfile) error
	UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) error
}

// FirebaseUserRepository implements UserRepository against the realtime
// database.
type FirebaseUserRepository struct {
	client *db.Client
}

// NewFirebaseUserRepository creates a new FirebaseUserRepository.
func NewFirebaseUserRepository(client *db.Client) *FirebaseUserRepository {
	return &FirebaseUserRepository{client: client}
}

// Get retrieves the profile stored at users/{uid}.
func (r *FirebaseUserRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.client.NewRef(usersPath+"/"+uid).Get(ctx, &profile); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", uid, err)
	}
	// An absent node unmarshals to the zero value.
	if profile.Role == "" && profile.Username == "" {
		return nil, ErrNotFound
	}
	return &profile, nil
}

// List retrieves the full profile collection keyed by uid.
func (r *FirebaseUserRepository) List(ctx context.Context) (map[string]models.UserProfile, error) {
	var users map[string]models.UserProfile
	if err := r.client.NewRef(usersPath).Get(ctx, &users); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if users == nil {
		users = map[string]models.UserProfile{}
	}
	return users, nil
}

// Create writes a fresh profile at users/{uid}.
func (r *FirebaseUserRepository) Create(ctx context.Context, uid string, profile *models.UserProfile) error {
	if err := r.client.NewRef(usersPath+"/"+uid).Set(ctx, profile); err != nil {
		return fmt.Errorf("create profile %s: %w", uid, err)
	}
	return nil
}

// UpdateFields patches individual profile fields in one update, leaving the
// rest of the record (notably the role) untouched.
func (r *FirebaseUserRepository) UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.NewRef(usersPath+"/"+uid).Update(ctx, fields); err != nil {
		return fmt.Errorf("update profile %s: %w", uid, err)
	}
	return nil
}
